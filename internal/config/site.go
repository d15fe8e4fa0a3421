package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// PluginName is the plugin entry read from the site configuration
const PluginName = "build-cache"

// SiteConfig holds the settings buildcache reads from an MkDocs style
// site configuration
type SiteConfig struct {
	DocsDir string
	SiteDir string
	Include []string
}

// ReadSiteConfig parses the site configuration at path.
//
// Both plugin list forms are understood:
//
//	plugins:
//	  - search
//	  - build-cache:
//	      include: ["overrides/**"]
//
//	plugins:
//	  build-cache:
//	    include: ["overrides/**"]
func ReadSiteConfig(path string) (*SiteConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse site configuration: %w", err)
	}

	site := &SiteConfig{
		DocsDir: v.GetString("docs_dir"),
		SiteDir: v.GetString("site_dir"),
	}

	options := pluginOptions(v.Get("plugins"))
	if options != nil {
		include, err := parseInclude(options["include"])
		if err != nil {
			return nil, err
		}

		site.Include = include
	}

	return site, nil
}

// pluginOptions finds the options map of the build-cache plugin
func pluginOptions(plugins any) map[string]any {
	switch p := plugins.(type) {
	case map[string]any:
		return asOptions(p[PluginName])
	case []any:
		for _, item := range p {
			if entry, ok := item.(map[string]any); ok {
				if options, found := entry[PluginName]; found {
					return asOptions(options)
				}
			}
		}
	}

	return nil
}

func asOptions(value any) map[string]any {
	if options, ok := value.(map[string]any); ok {
		return options
	}

	return nil
}
