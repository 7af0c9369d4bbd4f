// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

// SourceRecord is one employee reference pulled out of an invoice PDF.
// Either field may be empty.
type SourceRecord struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// RegistryRecord is one row of the employee registry workbook
type RegistryRecord struct {
	Name       string `json:"name" yaml:"name"`
	ID         string `json:"id" yaml:"id"`
	CostCenter string `json:"cost_center" yaml:"cost_center"`
}

// Method identifies which pass produced a match
type Method string

const (
	MethodID   Method = "cedula"
	MethodName Method = "nombre"
)

// MatchResult links a source record to a registry record
type MatchResult struct {
	SourceName   string  `json:"source_name" yaml:"source_name"`
	RegistryName string  `json:"registry_name" yaml:"registry_name"`
	ID           string  `json:"id" yaml:"id"`
	CostCenter   string  `json:"cost_center" yaml:"cost_center"`
	Method       Method  `json:"method" yaml:"method"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
}

// ConsolidatedRecord is the presentation row handed to report renderers.
// Name always comes from the registry, never from the invoice text.
type ConsolidatedRecord struct {
	Name            string               `json:"name" yaml:"name"`
	ID              string               `json:"id" yaml:"id"`
	CostCenter      string               `json:"cost_center" yaml:"cost_center"`
	StatusLabel     string               `json:"status" yaml:"status"`
	ConfidenceLabel string               `json:"confidence" yaml:"confidence"`
	Method          Method               `json:"method" yaml:"method"`
	Reconstruction  ReconstructionMethod `json:"name_source,omitempty" yaml:"name_source,omitempty"`
}

// Statistics summarises one full matching run
type Statistics struct {
	TotalSource    int     `json:"total_pdf_employees" yaml:"total_pdf_employees"`
	MatchedByID    int     `json:"matched_by_cedula" yaml:"matched_by_cedula"`
	MatchedByName  int     `json:"matched_by_name" yaml:"matched_by_name"`
	TotalMatched   int     `json:"total_matched" yaml:"total_matched"`
	TotalUnmatched int     `json:"total_unmatched" yaml:"total_unmatched"`
	MatchRate      float64 `json:"match_rate" yaml:"match_rate"`
}

// Suggestion is a candidate registry record for an unmatched source name
type Suggestion struct {
	RegistryName string  `json:"registry_name" yaml:"registry_name"`
	ID           string  `json:"id" yaml:"id"`
	CostCenter   string  `json:"cost_center" yaml:"cost_center"`
	Score        float64 `json:"score" yaml:"score"`
}

// ManualSuggestions groups the candidates proposed for one unmatched source name
type ManualSuggestions struct {
	SourceName string       `json:"source_name" yaml:"source_name"`
	Candidates []Suggestion `json:"candidates" yaml:"candidates"`
}

// Outcome is the result of PerformFullMatching
type Outcome struct {
	Matched    []MatchResult  `json:"matched" yaml:"matched"`
	Unmatched  []SourceRecord `json:"unmatched" yaml:"unmatched"`
	Statistics Statistics     `json:"statistics" yaml:"statistics"`
}

// Export bundles everything a run produced in one serialisable value
type Export struct {
	Consolidated []ConsolidatedRecord `json:"consolidated_data" yaml:"consolidated_data"`
	Matched      []MatchResult        `json:"matched_employees" yaml:"matched_employees"`
	Unmatched    []SourceRecord       `json:"unmatched_employees" yaml:"unmatched_employees"`
	Suggestions  []ManualSuggestions  `json:"manual_suggestions" yaml:"manual_suggestions"`
	Statistics   Statistics           `json:"statistics" yaml:"statistics"`
}

// SourceExtractor supplies the invoice-side records for a run
type SourceExtractor interface {
	Extract() ([]SourceRecord, error)
}

// Registry supplies the registry-side records.
// FindByID may return more than one record; callers take the first.
type Registry interface {
	GetAll() []RegistryRecord
	FindByID(id string) []RegistryRecord
}

// ColumnReporter is implemented by registries that know whether their
// identifier and name fields were resolved.
type ColumnReporter interface {
	HasIDColumn() bool
	HasNameColumn() bool
}

// StaticSource serves an already extracted record set
type StaticSource []SourceRecord

// Extract returns a copy of the records
func (s StaticSource) Extract() ([]SourceRecord, error) {
	out := make([]SourceRecord, len(s))
	copy(out, s)
	return out, nil
}

// MemoryRegistry is a Registry over an in-memory slice, scanned in order
type MemoryRegistry []RegistryRecord

// GetAll returns the records in stored order
func (m MemoryRegistry) GetAll() []RegistryRecord {
	out := make([]RegistryRecord, len(m))
	copy(out, m)
	return out
}

// FindByID returns every record whose digits equal the digits of id
func (m MemoryRegistry) FindByID(id string) []RegistryRecord {
	want := CleanID(id)
	if want == "" {
		return nil
	}
	var hits []RegistryRecord
	for _, r := range m {
		if CleanID(r.ID) == want {
			hits = append(hits, r)
		}
	}
	return hits
}
