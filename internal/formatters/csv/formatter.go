// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"strings"

	"costcenter-linker/internal/formatters"
	"costcenter-linker/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// Format writes one row per linked employee; verbose adds the unmatched
// invoice records with status "No encontrado"
func (f *Formatter) Format(report *formatters.RunReport, options formatters.FormatterOptions) ([]byte, error) {
	lines := []string{f.joinRow(shared.Headers)}
	for _, row := range shared.Rows(report, options.Verbose) {
		lines = append(lines, f.joinRow(row.Values()))
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

func (f *Formatter) joinRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = f.escapeCSVField(field)
	}
	return strings.Join(escaped, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	if strings.ContainsAny(field, ",\"\n\r") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

// sanitizeFormulaInjection prefixes fields a spreadsheet would evaluate
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}
	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
