package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record the current inputs after a successful build",
	Long: `Post-build hook for hosts that run the build themselves. Computes the
fingerprint and stores it as the cache record.`,
	RunE:          runCommit,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

func runCommit(cmd *cobra.Command, args []string) error {
	cfg, coordinator, err := setup(cmd)
	if err != nil {
		return err
	}

	if cfg.NoCache {
		log.Info("Build cache disabled.")
		return nil
	}

	return coordinator.AfterBuild(cfg.Inputs())
}
