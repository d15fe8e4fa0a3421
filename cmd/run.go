package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/buildcache/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- build command...]",
	Short: "Run the site build unless it is up to date",
	Long: `Evaluate the build cache and run the build only when the inputs changed
or the site directory is missing or empty. The build command defaults to
"mkdocs build". The cache record is updated after a successful build.`,
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, coordinator, err := setup(cmd)
	if err != nil {
		return err
	}

	builder := runner.NewCommandBuilder()

	name, cmdArgs, err := builder.BuildCommandArgs(cfg, args)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		builder.PrintBuildInfo(cfg, name, cmdArgs)
	}

	in := cfg.Inputs()

	if cfg.NoCache {
		log.Info("Build cache disabled.")
		return builder.ExecuteCommand(cfg.Root, name, cmdArgs)
	}

	if _, err := coordinator.BeforeBuild(in, cfg.SiteDir); err != nil {
		return err
	}

	if err := builder.ExecuteCommand(cfg.Root, name, cmdArgs); err != nil {
		return err
	}

	return coordinator.AfterBuild(in)
}
