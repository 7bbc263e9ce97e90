/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package config resolves gig settings from defaults, config files, GIG_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fulmenhq/gig/pkg/catalog"
)

const (
	// HomeEnv overrides the gig home directory.
	HomeEnv = "GIG_HOME"
	// FileName is the config file searched for in the gig home.
	FileName = "gig.yaml"
	// ProjectFileName is the config file searched for in the repository root.
	ProjectFileName = ".gig.yaml"

	DefaultCatalogURL = "https://github.com/github/gitignore"
	DefaultRemote     = "origin"
	DefaultBranch     = "main"
	DefaultSuffix     = ".gitignore"
	DefaultPattern    = "*" + DefaultSuffix
	DefaultTarget     = ".gitignore"
)

// Config holds all configuration for gig
type Config struct {
	Home    string          `mapstructure:"-" json:"home" yaml:"home"`
	Catalog CatalogSettings `mapstructure:"catalog" json:"catalog" yaml:"catalog"`
	Target  TargetSettings  `mapstructure:"target" json:"target" yaml:"target"`
	// Sources lists the config files that contributed, lowest priority first.
	Sources []string `mapstructure:"-" json:"sources,omitempty" yaml:"sources,omitempty"`
}

// CatalogSettings locates the snippet catalog mirror
type CatalogSettings struct {
	URL     string `mapstructure:"url" json:"url" yaml:"url"`
	Remote  string `mapstructure:"remote" json:"remote" yaml:"remote"`
	Branch  string `mapstructure:"branch" json:"branch" yaml:"branch"`
	Dir     string `mapstructure:"dir" json:"dir" yaml:"dir"`
	Pattern string `mapstructure:"pattern" json:"pattern" yaml:"pattern"`
	Suffix  string `mapstructure:"suffix" json:"suffix" yaml:"suffix"`
}

// TargetSettings names the managed file, relative to the repository root
type TargetSettings struct {
	File string `mapstructure:"file" json:"file" yaml:"file"`
}

// Options controls where Load looks.
type Options struct {
	// Home overrides GIG_HOME resolution.
	Home string
	// RepoRoot, when set, adds <RepoRoot>/.gig.yaml as the highest file layer.
	RepoRoot string
	// Flags are bound by name; see FlagKeys.
	Flags *pflag.FlagSet
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"catalog-url":    "catalog.url",
	"catalog-branch": "catalog.branch",
}

// GetGigHome returns the gig home directory
func GetGigHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".config", "gig"), nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("catalog.url", DefaultCatalogURL)
	v.SetDefault("catalog.remote", DefaultRemote)
	v.SetDefault("catalog.branch", DefaultBranch)
	v.SetDefault("catalog.dir", filepath.Join(home, "schemas"))
	v.SetDefault("catalog.pattern", DefaultPattern)
	v.SetDefault("catalog.suffix", DefaultSuffix)
	v.SetDefault("target.file", DefaultTarget)
}

// Load resolves the configuration and validates it.
func Load(opts Options) (*Config, error) {
	home := opts.Home
	if home == "" {
		var err error
		if home, err = GetGigHome(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, home)

	sources := []Source{NewFileSource(filepath.Join(home, FileName), 10)}
	if opts.RepoRoot != "" {
		sources = append(sources, NewFileSource(filepath.Join(opts.RepoRoot, ProjectFileName), 20))
	}
	used, err := mergeSources(v, sources)
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix("GIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}
	cfg.Home = home
	cfg.Sources = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

// Validate validates the catalog settings.
func (c *CatalogSettings) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Remote, validation.Required),
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Suffix, validation.Required),
		validation.Field(&c.Pattern, validation.Required, validation.By(globPattern)),
	)
}

// Validate validates the target settings.
func (c *TargetSettings) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.File, validation.Required, validation.By(relativeFile)),
	)
}

func globPattern(value interface{}) error {
	s, _ := value.(string)
	if !doublestar.ValidatePattern(s) {
		return errors.New("must be a valid glob pattern")
	}
	return nil
}

func relativeFile(value interface{}) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) {
		return errors.New("must be relative to the repository root")
	}
	clean := filepath.ToSlash(filepath.Clean(s))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.New("must name a file inside the repository")
	}
	return nil
}

// CatalogConfig converts the settings into the catalog's own config.
func (c *Config) CatalogConfig() catalog.Config {
	return catalog.Config{
		Dir:     c.Catalog.Dir,
		URL:     c.Catalog.URL,
		Remote:  c.Catalog.Remote,
		Branch:  c.Catalog.Branch,
		Pattern: c.Catalog.Pattern,
		Suffix:  c.Catalog.Suffix,
	}
}
