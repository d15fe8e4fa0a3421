package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/spf13/viper"

	"github.com/Norgate-AV/buildcache/internal/fingerprint"
	"github.com/Norgate-AV/buildcache/internal/utils"
)

// Default configuration values
const (
	DefaultRoot          = "."
	DefaultConfigFile    = "mkdocs.yml"
	DefaultDocsDir       = "docs"
	DefaultSiteDir       = "site"
	DefaultCacheFile     = "build_cache.json"
	DefaultRecordBackend = BackendJSON
	DefaultVerbose       = false
	DefaultNoCache       = false
)

// Record backends
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// Holds the configuration options for buildcache
type Config struct {
	// Project root. Include patterns and fingerprint identifiers are
	// relative to it.
	Root string

	// Site configuration file, hashed when present
	ConfigFile string

	// Source-document directory
	DocsDir string

	// Output directory of the site build
	SiteDir string

	// Extra glob patterns covered by the fingerprint
	Include []string

	// Location of the cache record
	CacheFile string

	// Record format, json or bolt
	RecordBackend string

	// Enable verbose output
	Verbose bool

	// Always build and never record
	NoCache bool

	// configRequired is set when the site config path was given explicitly
	configRequired bool
}

// Error is a configuration problem. The build must not proceed.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Load() (*Config, error) {
	include, err := parseInclude(viper.Get("include"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Root:          viper.GetString("root"),
		ConfigFile:    viper.GetString("config_file"),
		DocsDir:       viper.GetString("docs_dir"),
		SiteDir:       viper.GetString("site_dir"),
		Include:       include,
		CacheFile:     viper.GetString("cache_file"),
		RecordBackend: strings.ToLower(viper.GetString("record_backend")),
		Verbose:       viper.GetBool("verbose"),
		NoCache:       viper.GetBool("no_cache"),
	}

	// Apply defaults if not set
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = DefaultConfigFile
	} else {
		cfg.configRequired = true
	}

	if cfg.CacheFile == "" {
		cfg.CacheFile = DefaultCacheFile
	}

	if cfg.RecordBackend == "" {
		cfg.RecordBackend = DefaultRecordBackend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate resolves paths against Root, fills docs and site directories
// from the site configuration and checks every include pattern
func (c *Config) Validate() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return &Error{Key: "root", Err: err}
	}

	c.Root = root
	c.ConfigFile = utils.ResolvePath(root, c.ConfigFile)
	c.CacheFile = utils.ResolvePath(root, c.CacheFile)

	if c.configRequired {
		if _, err := os.Stat(c.ConfigFile); err != nil {
			return &Error{Key: "config_file", Err: err}
		}
	}

	site, err := ReadSiteConfig(c.ConfigFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		// The file is still hashed; only the settings it carries are lost
		log.WithError(err).WithField("path", c.ConfigFile).Warn("Cannot read site configuration, using defaults")
		site = nil
	}

	siteDir := filepath.Dir(c.ConfigFile)

	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
		if site != nil && site.DocsDir != "" {
			c.DocsDir = utils.ResolvePath(siteDir, site.DocsDir)
		}
	}

	if c.SiteDir == "" {
		c.SiteDir = DefaultSiteDir
		if site != nil && site.SiteDir != "" {
			c.SiteDir = utils.ResolvePath(siteDir, site.SiteDir)
		}
	}

	c.DocsDir = utils.ResolvePath(root, c.DocsDir)
	c.SiteDir = utils.ResolvePath(root, c.SiteDir)

	// The site directory is never hashed, so it must not hold any input
	if utils.IsWithin(c.SiteDir, c.DocsDir) {
		return &Error{Key: "site_dir", Err: fmt.Errorf("%s contains docs_dir %s", c.SiteDir, c.DocsDir)}
	}

	if utils.IsWithin(c.SiteDir, c.ConfigFile) {
		return &Error{Key: "site_dir", Err: fmt.Errorf("%s contains config_file %s", c.SiteDir, c.ConfigFile)}
	}

	if len(c.Include) == 0 && site != nil {
		c.Include = site.Include
	}

	if _, err := fingerprint.Compile(c.Include); err != nil {
		return &Error{Key: "include", Err: err}
	}

	switch c.RecordBackend {
	case BackendJSON, BackendBolt:
	default:
		return &Error{Key: "record_backend", Err: fmt.Errorf("unknown backend %q", c.RecordBackend)}
	}

	return nil
}

// Inputs returns what the fingerprint covers. The site directory is
// excluded: it is the build's output, never its input.
func (c *Config) Inputs() fingerprint.Inputs {
	return fingerprint.Inputs{
		ConfigFile: c.ConfigFile,
		SourceDir:  c.DocsDir,
		Include:    c.Include,
		BaseDir:    c.Root,
		Exclude:    []string{c.SiteDir},
	}
}

// parseInclude accepts a list of strings only
func parseInclude(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case string:
		// Environment variables carry a comma separated list
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}

		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		return parts, nil
	case []any:
		include := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &Error{
					Key: fmt.Sprintf("include[%d]", i),
					Err: fmt.Errorf("expected a string, got %T", item),
				}
			}

			include = append(include, s)
		}

		return include, nil
	default:
		return nil, &Error{Key: "include", Err: fmt.Errorf("expected a list of strings, got %T", value)}
	}
}
