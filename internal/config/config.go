// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/paths"
	"costcenter-linker/internal/registry"
)

// Accepted similarity range for the name pass
const (
	MinSimilarity = 0.5
	MaxSimilarity = 1.0
)

// Report modes
const (
	ReportMerged     = "merged"
	ReportStandalone = "standalone"
	ReportNone       = "none"
)

// Defaults are the settings used when no flag or profile overrides them
type Defaults struct {
	Format      string  `yaml:"format"`
	Similarity  float64 `yaml:"similarity"`
	Suggestions int     `yaml:"suggestions"`
	OutputDir   string  `yaml:"output_dir"`
	Report      string  `yaml:"report"`
	Statistics  bool    `yaml:"report_statistics"`
	Verbose     bool    `yaml:"verbose"`
	Debug       bool    `yaml:"debug"`
	NoColor     bool    `yaml:"no_color"`
}

// RegistryConfig selects the worksheet and pins column headers
type RegistryConfig struct {
	Sheet   string                 `yaml:"sheet"`
	Columns registry.ColumnMapping `yaml:"columns"`
}

// InvoiceConfig tunes invoice parsing
type InvoiceConfig struct {
	// ExcludedWords are added to the built-in list unless ReplaceExcluded is set
	ExcludedWords   []string `yaml:"excluded_words"`
	ReplaceExcluded bool     `yaml:"replace_excluded"`
	MaxPages        int      `yaml:"max_pages"`
}

// NamesConfig extends or replaces the name reconstruction dictionaries
type NamesConfig struct {
	Surnames       []string          `yaml:"surnames"`
	GivenNames     []string          `yaml:"given_names"`
	Overrides      map[string]string `yaml:"overrides"`
	ReplaceBuiltin bool              `yaml:"replace_builtin"`
}

// AliasesConfig points at the confirmed manual matches file
type AliasesConfig struct {
	File string `yaml:"file"`
}

// Config represents the application configuration
type Config struct {
	Defaults Defaults           `yaml:"defaults"`
	Registry RegistryConfig     `yaml:"registry"`
	Invoice  InvoiceConfig      `yaml:"invoice"`
	Names    NamesConfig        `yaml:"names"`
	Aliases  AliasesConfig      `yaml:"aliases"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile is a named set of overrides. Zero values leave the defaults alone.
type Profile struct {
	Description string  `yaml:"description"`
	Format      string  `yaml:"format"`
	Similarity  float64 `yaml:"similarity"`
	Suggestions int     `yaml:"suggestions"`
	OutputDir   string  `yaml:"output_dir"`
	Report      string  `yaml:"report"`
	Statistics  bool    `yaml:"report_statistics"`
	Verbose     bool    `yaml:"verbose"`
	Debug       bool    `yaml:"debug"`
	NoColor     bool    `yaml:"no_color"`
	Sheet       string  `yaml:"sheet"`
}

func defaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Format:      "text",
			Similarity:  linker.DefaultMinSimilarity,
			Suggestions: linker.DefaultSuggestions,
			OutputDir:   "./output",
			Report:      ReportMerged,
		},
		Profiles: map[string]Profile{
			"strict": {
				Description: "Only near-exact name matches; review everything else by hand",
				Similarity:  0.85,
				Suggestions: 5,
			},
			"lenient": {
				Description: "Accept looser name matches for noisy scanned invoices",
				Similarity:  0.6,
			},
			"audit": {
				Description: "Standalone report with statistics and a spreadsheet of every record",
				Format:      "xlsx",
				Report:      ReportStandalone,
				Statistics:  true,
				Verbose:     true,
			},
		},
	}
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadConfigOrDefault loads configFile (or the first file FindConfigFile
// finds). On any error it returns the defaults together with the error so
// the caller can warn.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return defaultConfig(), err
	}
	return cfg, nil
}

// FindConfigFile looks for a configuration file in the working directory,
// then the user config directory, then the home directory
func FindConfigFile() string {
	candidates := []string{
		"costcenter.yaml",
		"costcenter.yml",
		".costcenter-linker.yaml",
		".costcenter-linker.yml",
		paths.GetConfigFile(),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".costcenter-linker.yaml"))
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Effective returns the defaults with profile applied on top. A nil profile
// returns the defaults unchanged.
func (c *Config) Effective(profile *Profile) Defaults {
	d := c.Defaults
	if profile == nil {
		return d
	}
	if profile.Format != "" {
		d.Format = profile.Format
	}
	if profile.Similarity != 0 {
		d.Similarity = profile.Similarity
	}
	if profile.Suggestions != 0 {
		d.Suggestions = profile.Suggestions
	}
	if profile.OutputDir != "" {
		d.OutputDir = profile.OutputDir
	}
	if profile.Report != "" {
		d.Report = profile.Report
	}
	d.Statistics = d.Statistics || profile.Statistics
	d.Verbose = d.Verbose || profile.Verbose
	d.Debug = d.Debug || profile.Debug
	d.NoColor = d.NoColor || profile.NoColor
	return d
}

// SheetFor returns the worksheet to read: the profile's when set, else the
// registry section's
func (c *Config) SheetFor(profile *Profile) string {
	if profile != nil && profile.Sheet != "" {
		return profile.Sheet
	}
	return c.Registry.Sheet
}

// NameTables builds the reconstruction dictionaries
func (c *Config) NameTables() linker.NameTables {
	extra := linker.NameTables{
		Surnames:   c.Names.Surnames,
		GivenNames: c.Names.GivenNames,
		Overrides:  c.Names.Overrides,
	}
	if c.Names.ReplaceBuiltin {
		return linker.NameTables{}.Merge(extra)
	}
	return linker.DefaultNameTables().Merge(extra)
}

// ExcludedWords returns the invoice parser's rejection list
func (c *Config) ExcludedWords(builtin []string) []string {
	if c.Invoice.ReplaceExcluded {
		return append([]string{}, c.Invoice.ExcludedWords...)
	}
	return append(append([]string{}, builtin...), c.Invoice.ExcludedWords...)
}

// ValidateConfig checks ranges, modes and paths, including every profile
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := ValidateSimilarity(config.Defaults.Similarity); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if config.Defaults.Suggestions < 0 {
		return fmt.Errorf("defaults: suggestions must not be negative")
	}
	if err := ValidateReportMode(config.Defaults.Report); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if config.Invoice.MaxPages < 0 {
		return fmt.Errorf("invoice: max_pages must not be negative")
	}

	for _, p := range []struct{ name, path string }{
		{"defaults.output_dir", config.Defaults.OutputDir},
		{"aliases.file", config.Aliases.File},
	} {
		if err := paths.ValidatePath(p.path); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}

	for name, profile := range config.Profiles {
		if profile.Similarity != 0 {
			if err := ValidateSimilarity(profile.Similarity); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
		if profile.Suggestions < 0 {
			return fmt.Errorf("profile '%s': suggestions must not be negative", name)
		}
		if profile.Report != "" {
			if err := ValidateReportMode(profile.Report); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
		if err := paths.ValidatePath(profile.OutputDir); err != nil {
			return fmt.Errorf("profile '%s': %w", name, err)
		}
	}
	return nil
}

// ValidateSimilarity rejects thresholds outside [MinSimilarity, MaxSimilarity]
func ValidateSimilarity(v float64) error {
	if v < MinSimilarity || v > MaxSimilarity {
		return fmt.Errorf("similarity %.2f outside [%.1f, %.1f]", v, MinSimilarity, MaxSimilarity)
	}
	return nil
}

// ValidateReportMode accepts merged, standalone and none
func ValidateReportMode(mode string) error {
	switch mode {
	case ReportMerged, ReportStandalone, ReportNone:
		return nil
	}
	return fmt.Errorf("unknown report mode %q (use %s, %s or %s)", mode, ReportMerged, ReportStandalone, ReportNone)
}
