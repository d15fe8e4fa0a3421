package config

import (
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForBuild loads configuration for a build lifecycle command.
// Precedence, lowest first: defaults, global config, local config,
// environment, command flags.
func (l *Loader) LoadForBuild(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.bindCommandFlags(cmd)
	l.loadLocalConfig(viper.GetString("root"))

	return Load()
}

// setupViperDefaults sets up default values and environment lookup
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("root", DefaultRoot)
	viper.SetDefault("cache_file", DefaultCacheFile)
	viper.SetDefault("record_backend", DefaultRecordBackend)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("no_cache", DefaultNoCache)

	viper.SetEnvPrefix("buildcache")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadGlobalConfig loads the user level configuration
func (l *Loader) loadGlobalConfig() {
	path := FindGlobalConfig()
	if path == "" {
		return
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		log.WithError(err).WithField("path", path).Warn("Ignoring unreadable global config")
	}
}

// loadLocalConfig merges the project configuration found from root upwards
func (l *Loader) loadLocalConfig(root string) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return // config.Load() reports an unusable root
	}

	path := FindLocalConfig(abs)
	if path == "" {
		return
	}

	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		log.WithError(err).WithField("path", path).Warn("Ignoring unreadable local config")
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	for _, key := range []string{
		"root",
		"config_file",
		"docs_dir",
		"site_dir",
		"include",
		"cache_file",
		"record_backend",
		"verbose",
		"no_cache",
	} {
		flag := cmd.Flags().Lookup(strings.ReplaceAll(key, "_", "-"))
		if flag == nil {
			continue
		}

		_ = viper.BindPFlag(key, flag)
	}
}
