package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/buildcache/internal/cache"
	"github.com/Norgate-AV/buildcache/internal/codes"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the site build can be skipped",
	Long: `Evaluate the build cache without building or writing anything.
Exits 0 when the build can be skipped and 10 when it must run.`,
	RunE:          runCheck,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, coordinator, err := setup(cmd)
	if err != nil {
		return err
	}

	if cfg.NoCache {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (cache disabled)\n", cache.Proceed)
		return &exitStatus{code: codes.Proceed}
	}

	d, err := coordinator.Evaluate(cfg.Inputs(), cfg.SiteDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", d.Verdict, d.Reason)

	if cfg.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", d.Fingerprint)
		if d.Previous != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded:    %s\n", d.Previous)
		}
	}

	if d.Verdict == cache.Proceed {
		return &exitStatus{code: codes.Proceed}
	}

	return nil
}
