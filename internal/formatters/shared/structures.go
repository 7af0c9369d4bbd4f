// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"fmt"
	"time"

	"costcenter-linker/internal/formatters"
	"costcenter-linker/internal/linker"
)

// StatusNotFound labels source records that no pass could link
const StatusNotFound = "No encontrado"

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	RunID        string                      `json:"run_id" yaml:"run_id"`
	GeneratedAt  string                      `json:"generated_at" yaml:"generated_at"`
	Inputs       formatters.Inputs           `json:"inputs" yaml:"inputs"`
	Statistics   linker.Statistics           `json:"statistics" yaml:"statistics"`
	Consolidated []linker.ConsolidatedRecord `json:"consolidated_data" yaml:"consolidated_data"`
	Unmatched    []linker.SourceRecord       `json:"unmatched_employees" yaml:"unmatched_employees"`
	Suggestions  []linker.ManualSuggestions  `json:"manual_suggestions" yaml:"manual_suggestions"`
	Matched      []linker.MatchResult        `json:"matched_employees,omitempty" yaml:"matched_employees,omitempty"`
	Aliases      int                         `json:"aliases_applied,omitempty" yaml:"aliases_applied,omitempty"`
	Warnings     []string                    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ReportFile   string                      `json:"report_file,omitempty" yaml:"report_file,omitempty"`
}

// ConvertToJSONFormat builds the JSON/YAML document. Lists are never nil so
// empty runs serialise as [] rather than null. Matched detail is verbose only.
func ConvertToJSONFormat(report *formatters.RunReport, options formatters.FormatterOptions) JSONResponse {
	resp := JSONResponse{
		RunID:        report.RunID,
		Inputs:       report.Inputs,
		Statistics:   report.Statistics,
		Consolidated: nonNil(report.Consolidated),
		Unmatched:    nonNil(report.Unmatched),
		Suggestions:  nonNil(report.Suggestions),
		Aliases:      report.AliasesApplied,
		Warnings:     report.Warnings,
		ReportFile:   report.ReportFile,
	}
	if !report.GeneratedAt.IsZero() {
		resp.GeneratedAt = report.GeneratedAt.Format(time.RFC3339)
	}
	if options.Verbose {
		resp.Matched = nonNil(report.Matched)
	}
	return resp
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// MatchRatePercent formats the statistics match rate with one decimal
func MatchRatePercent(s linker.Statistics) string {
	return fmt.Sprintf("%.1f%%", s.MatchRate*100)
}

// Row is one flat output line, either a linked record or an unmatched one
type Row struct {
	Name       string
	ID         string
	CostCenter string
	Status     string
	Confidence string
	Method     string
}

// Rows flattens consolidated records, followed by unmatched source records
// when verbose is set
func Rows(report *formatters.RunReport, verbose bool) []Row {
	rows := make([]Row, 0, len(report.Consolidated)+len(report.Unmatched))
	for _, c := range report.Consolidated {
		rows = append(rows, Row{
			Name:       c.Name,
			ID:         c.ID,
			CostCenter: c.CostCenter,
			Status:     c.StatusLabel,
			Confidence: c.ConfidenceLabel,
			Method:     string(c.Method),
		})
	}
	if verbose {
		for _, u := range report.Unmatched {
			rows = append(rows, Row{Name: u.Name, ID: u.ID, Status: StatusNotFound})
		}
	}
	return rows
}

// Headers are the column titles matching Row
var Headers = []string{"Nombre Empleado", "Cédula", "Centro de Costo", "Estado", "Confianza", "Método"}

// Values returns the row cells in Headers order
func (r Row) Values() []string {
	return []string{r.Name, r.ID, r.CostCenter, r.Status, r.Confidence, r.Method}
}
