package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/buildcache/internal/fingerprint"
)

func TestLoad(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name        string
		setupViper  func()
		wantConfig  *Config
		wantErr     bool
		errContains string
	}{
		{
			name: "load with all defaults",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
			},
			wantConfig: &Config{
				Root:          root,
				ConfigFile:    filepath.Join(root, DefaultConfigFile),
				DocsDir:       filepath.Join(root, DefaultDocsDir),
				SiteDir:       filepath.Join(root, DefaultSiteDir),
				CacheFile:     filepath.Join(root, DefaultCacheFile),
				RecordBackend: BackendJSON,
			},
		},
		{
			name: "load with custom values",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
				viper.Set("docs_dir", "content")
				viper.Set("site_dir", "public")
				viper.Set("cache_file", ".cache/record.db")
				viper.Set("record_backend", "BOLT")
				viper.Set("include", []any{"overrides/**", "extras/*.txt"})
				viper.Set("verbose", true)
				viper.Set("no_cache", true)
			},
			wantConfig: &Config{
				Root:          root,
				ConfigFile:    filepath.Join(root, DefaultConfigFile),
				DocsDir:       filepath.Join(root, "content"),
				SiteDir:       filepath.Join(root, "public"),
				CacheFile:     filepath.Join(root, ".cache", "record.db"),
				RecordBackend: BackendBolt,
				Include:       []string{"overrides/**", "extras/*.txt"},
				Verbose:       true,
				NoCache:       true,
			},
		},
		{
			name: "include from environment style string",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
				viper.Set("include", "a/*.txt, b/**")
			},
			wantConfig: &Config{
				Root:          root,
				ConfigFile:    filepath.Join(root, DefaultConfigFile),
				DocsDir:       filepath.Join(root, DefaultDocsDir),
				SiteDir:       filepath.Join(root, DefaultSiteDir),
				CacheFile:     filepath.Join(root, DefaultCacheFile),
				RecordBackend: BackendJSON,
				Include:       []string{"a/*.txt", "b/**"},
			},
		},
		{
			name: "malformed include pattern",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
				viper.Set("include", []string{"ok/*.md", "broken/[x"})
			},
			wantErr:     true,
			errContains: `"broken/[x"`,
		},
		{
			name: "non string include entry",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
				viper.Set("include", []any{"ok", 7})
			},
			wantErr:     true,
			errContains: "include[1]",
		},
		{
			name: "unknown record backend",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
				viper.Set("record_backend", "redis")
			},
			wantErr:     true,
			errContains: "unknown backend",
		},
		{
			name: "explicit config file must exist",
			setupViper: func() {
				viper.Reset()
				viper.Set("root", root)
				viper.Set("config_file", "missing.yml")
			},
			wantErr:     true,
			errContains: "config_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupViper()

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}

				var cerr *Error
				assert.ErrorAs(t, err, &cerr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig.Root, cfg.Root)
			assert.Equal(t, tt.wantConfig.ConfigFile, cfg.ConfigFile)
			assert.Equal(t, tt.wantConfig.DocsDir, cfg.DocsDir)
			assert.Equal(t, tt.wantConfig.SiteDir, cfg.SiteDir)
			assert.Equal(t, tt.wantConfig.CacheFile, cfg.CacheFile)
			assert.Equal(t, tt.wantConfig.RecordBackend, cfg.RecordBackend)
			assert.Equal(t, tt.wantConfig.Include, cfg.Include)
			assert.Equal(t, tt.wantConfig.Verbose, cfg.Verbose)
			assert.Equal(t, tt.wantConfig.NoCache, cfg.NoCache)
		})
	}
}

func TestConfig_Validate_SiteConfig(t *testing.T) {
	root := t.TempDir()
	siteDir := filepath.Join(root, "website")
	require.NoError(t, os.MkdirAll(siteDir, 0o755))

	content := "docs_dir: pages\nsite_dir: ../public\nplugins:\n  - build-cache:\n      include: [\"overrides/**\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(siteDir, "mkdocs.yml"), []byte(content), 0o644))

	t.Run("settings come from the site config", func(t *testing.T) {
		cfg := &Config{Root: root, ConfigFile: "website/mkdocs.yml", configRequired: true, RecordBackend: BackendJSON}
		require.NoError(t, cfg.Validate())

		assert.Equal(t, filepath.Join(siteDir, "pages"), cfg.DocsDir, "relative to the site config")
		assert.Equal(t, filepath.Join(root, "public"), cfg.SiteDir)
		assert.Equal(t, []string{"overrides/**"}, cfg.Include)
	})

	t.Run("explicit settings win", func(t *testing.T) {
		cfg := &Config{
			Root:          root,
			ConfigFile:    "website/mkdocs.yml",
			DocsDir:       "docs",
			SiteDir:       "out",
			Include:       []string{"extra/*.txt"},
			RecordBackend: BackendJSON,
		}
		require.NoError(t, cfg.Validate())

		assert.Equal(t, filepath.Join(root, "docs"), cfg.DocsDir)
		assert.Equal(t, filepath.Join(root, "out"), cfg.SiteDir)
		assert.Equal(t, []string{"extra/*.txt"}, cfg.Include)
	})
}

func TestConfig_Validate_UnparsableSiteConfigIsNotFatal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "mkdocs.yml"), []byte("nav: [broken\n"), 0o644))

	cfg := &Config{Root: root, ConfigFile: "mkdocs.yml", RecordBackend: BackendJSON}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(root, DefaultDocsDir), cfg.DocsDir)
	assert.Equal(t, filepath.Join(root, DefaultSiteDir), cfg.SiteDir)
}

func TestConfig_Inputs(t *testing.T) {
	cfg := &Config{
		Root:       "/project",
		ConfigFile: "/project/mkdocs.yml",
		DocsDir:    "/project/docs",
		SiteDir:    "/project/site",
		Include:    []string{"extras/*.txt"},
	}

	assert.Equal(t, fingerprint.Inputs{
		ConfigFile: "/project/mkdocs.yml",
		SourceDir:  "/project/docs",
		Include:    []string{"extras/*.txt"},
		BaseDir:    "/project",
		Exclude:    []string{"/project/site"},
	}, cfg.Inputs())
}

func TestParseInclude(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    []string
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"string slice", []string{"a", "b"}, []string{"a", "b"}, false},
		{"any slice", []any{"a", "b"}, []string{"a", "b"}, false},
		{"blank string", "  ", nil, false},
		{"comma string", "a,b", []string{"a", "b"}, false},
		{"number", 3, nil, true},
		{"mixed slice", []any{"a", true}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInclude(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate_SiteDirMustNotHoldInputs(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name        string
		config      *Config
		errContains string
	}{
		{
			name:        "docs inside site",
			config:      &Config{Root: root, ConfigFile: DefaultConfigFile, DocsDir: "out/src", SiteDir: "out"},
			errContains: "contains docs_dir",
		},
		{
			name:        "site is the project root",
			config:      &Config{Root: root, ConfigFile: DefaultConfigFile, DocsDir: "docs", SiteDir: "."},
			errContains: "contains docs_dir",
		},
		{
			name:        "config file inside site",
			config:      &Config{Root: root, ConfigFile: "out/mkdocs.yml", DocsDir: "docs", SiteDir: "out"},
			errContains: "contains config_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.RecordBackend = BackendJSON

			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "site_dir", cerr.Key)
		})
	}

	t.Run("site beside docs is fine", func(t *testing.T) {
		cfg := &Config{Root: root, ConfigFile: DefaultConfigFile, DocsDir: "out-src", SiteDir: "out", RecordBackend: BackendJSON}
		assert.NoError(t, cfg.Validate())
	})
}
