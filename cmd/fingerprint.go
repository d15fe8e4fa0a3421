package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var fingerprintCmd = &cobra.Command{
	Use:           "fingerprint",
	Short:         "Print the fingerprint of the build inputs",
	RunE:          runFingerprint,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	cfg, coordinator, err := setup(cmd)
	if err != nil {
		return err
	}

	s, err := coordinator.Summarize(cfg.Inputs())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if cfg.Verbose {
		for _, e := range s.Entries {
			fmt.Fprintf(out, "%10s  %s\n", humanize.Bytes(uint64(e.Size)), e.ID)
		}

		fmt.Fprintf(out, "%d files, %s\n", len(s.Entries), humanize.Bytes(uint64(s.Bytes)))
	}

	fmt.Fprintln(out, s.Fingerprint)
	return nil
}
