// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"costcenter-linker/internal/linker"
)

// Inputs records what a run read
type Inputs struct {
	Invoice       string            `json:"invoice" yaml:"invoice"`
	Registry      string            `json:"registry" yaml:"registry"`
	Sheet         string            `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Columns       map[string]string `json:"columns,omitempty" yaml:"columns,omitempty"`
	MinSimilarity float64           `json:"min_similarity" yaml:"min_similarity"`
}

// RunReport is everything one linking run produced, in the shape every
// formatter consumes
type RunReport struct {
	RunID          string                      `json:"run_id" yaml:"run_id"`
	GeneratedAt    time.Time                   `json:"generated_at" yaml:"generated_at"`
	Inputs         Inputs                      `json:"inputs" yaml:"inputs"`
	Statistics     linker.Statistics           `json:"statistics" yaml:"statistics"`
	Consolidated   []linker.ConsolidatedRecord `json:"consolidated_data" yaml:"consolidated_data"`
	Matched        []linker.MatchResult        `json:"matched_employees" yaml:"matched_employees"`
	Unmatched      []linker.SourceRecord       `json:"unmatched_employees" yaml:"unmatched_employees"`
	Suggestions    []linker.ManualSuggestions  `json:"manual_suggestions" yaml:"manual_suggestions"`
	AliasesApplied int                         `json:"aliases_applied" yaml:"aliases_applied"`
	Warnings       []string                    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ReportFile     string                      `json:"report_file,omitempty" yaml:"report_file,omitempty"`
}

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Verbose bool // include matched detail and unmatched rows
	NoColor bool
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the run report
	Format(report *RunReport, options FormatterOptions) ([]byte, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatInfo describes a formatter for help output and file naming
type FormatInfo struct {
	Name        string
	Description string
	Extension   string
	MimeType    string
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders report with the named formatter
func Export(format string, report *RunReport, options FormatterOptions) ([]byte, error) {
	formatter, exists := Get(format)
	if !exists {
		return nil, fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	if report == nil {
		report = &RunReport{}
	}
	return formatter.Format(report, options)
}

// GetFormatInfo returns metadata about a specific formatter
func GetFormatInfo(name string) FormatInfo {
	formatter, exists := Get(name)
	if !exists {
		return FormatInfo{}
	}

	info := FormatInfo{
		Name:        formatter.Name(),
		Description: formatter.Description(),
		Extension:   formatter.FileExtension(),
	}

	switch name {
	case "json":
		info.MimeType = "application/json"
	case "csv":
		info.MimeType = "text/csv"
	case "yaml":
		info.MimeType = "application/x-yaml"
	case "text":
		info.MimeType = "text/plain"
	case "xlsx":
		info.MimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		info.MimeType = "application/octet-stream"
	}

	return info
}

// GetSupportedFormats returns information about all available formatters
func GetSupportedFormats() []FormatInfo {
	var formats []FormatInfo
	for _, name := range List() {
		formats = append(formats, GetFormatInfo(name))
	}
	return formats
}
