package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:           "clean",
	Short:         "Remove the cache record",
	RunE:          runClean,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

func runClean(cmd *cobra.Command, args []string) error {
	_, coordinator, err := setup(cmd)
	if err != nil {
		return err
	}

	store := coordinator.Store()
	if err := store.Remove(); err != nil {
		return err
	}

	log.WithField("path", store.Path()).Info("Cache record removed.")
	return nil
}
