package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/buildcache/internal/cache"
	"github.com/Norgate-AV/buildcache/internal/config"
	mylog "github.com/Norgate-AV/buildcache/internal/log"
	"github.com/Norgate-AV/buildcache/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "buildcache",
	Short: "Skip unchanged MkDocs builds",
	Long: `Fingerprint the inputs of a static site build and skip the build
when nothing changed since the last successful one.

Without a subcommand the default build runs. Use "buildcache run -- <command>"
to wrap another build command.`,
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		mylog.InitLogger(verbose)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCode(err, os.Stdout, os.Stderr))
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().String("root", "", "Project root, the base for include patterns")
	rootCmd.PersistentFlags().StringP("config-file", "f", "", "Site configuration file (default mkdocs.yml)")
	rootCmd.PersistentFlags().String("docs-dir", "", "Source document directory (default from site config, else docs)")
	rootCmd.PersistentFlags().StringP("site-dir", "d", "", "Site output directory (default from site config, else site)")
	rootCmd.PersistentFlags().StringSliceP("include", "i", []string{}, "Extra glob patterns covered by the fingerprint")
	rootCmd.PersistentFlags().String("cache-file", "", "Cache record location (default build_cache.json)")
	rootCmd.PersistentFlags().String("record-backend", "", "Cache record format: json or bolt")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable build cache")
	rootCmd.AddCommand(runCmd, checkCmd, commitCmd, fingerprintCmd, cleanCmd)
}

// setup loads the configuration and the coordinator for a command
func setup(cmd *cobra.Command) (*config.Config, *cache.Coordinator, error) {
	cfg, err := config.NewLoader().LoadForBuild(cmd)
	if err != nil {
		return nil, nil, err
	}

	mylog.InitLogger(cfg.Verbose)

	fs := afero.NewOsFs()
	coordinator := cache.NewCoordinator(fs, newRecordStore(fs, cfg))

	log.WithFields(log.Fields{
		"root":    cfg.Root,
		"docs":    cfg.DocsDir,
		"site":    cfg.SiteDir,
		"record":  cfg.CacheFile,
		"backend": cfg.RecordBackend,
	}).Debug("loaded configuration")

	return cfg, coordinator, nil
}

func newRecordStore(fs afero.Fs, cfg *config.Config) cache.RecordStore {
	if cfg.RecordBackend == config.BackendBolt {
		return cache.NewBoltStore(cfg.CacheFile)
	}

	return cache.NewFileStore(fs, cfg.CacheFile)
}
