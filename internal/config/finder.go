package config

import (
	"os"
	"path/filepath"
)

// configExtensions lists the formats viper reads for buildcache config files
var configExtensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig finds local config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range configExtensions {
			path := filepath.Join(dir, ".buildcache."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// FindGlobalConfig returns the user level config file, if any
func FindGlobalConfig() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}

	for _, ext := range configExtensions {
		path := filepath.Join(dir, "buildcache", "config."+ext)

		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
