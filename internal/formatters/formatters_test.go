// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"costcenter-linker/internal/formatters"
	_ "costcenter-linker/internal/formatters/csv"
	_ "costcenter-linker/internal/formatters/json"
	"costcenter-linker/internal/formatters/shared"
	_ "costcenter-linker/internal/formatters/text"
	"costcenter-linker/internal/formatters/xlsx"
	_ "costcenter-linker/internal/formatters/yaml"
	"costcenter-linker/internal/linker"
)

func sampleReport() *formatters.RunReport {
	return &formatters.RunReport{
		RunID:       "7f1c2a4e-0000-4000-8000-000000000001",
		GeneratedAt: time.Date(2026, 10, 15, 10, 15, 0, 0, time.UTC),
		Inputs:      formatters.Inputs{Invoice: "factura.pdf", Registry: "empleados.xlsx", MinSimilarity: 0.7},
		Statistics: linker.Statistics{
			TotalSource: 3, MatchedByID: 1, MatchedByName: 1,
			TotalMatched: 2, TotalUnmatched: 1, MatchRate: 2.0 / 3,
		},
		Consolidated: []linker.ConsolidatedRecord{
			{Name: "Maria Clara Trujillo Perez", ID: "52345678", CostCenter: "VENTAS", StatusLabel: "Encontrado (cedula)", ConfidenceLabel: "1.00", Method: linker.MethodID},
			{Name: "Carlos Ruiz", ID: "80123456", CostCenter: "=SUM(A1)", StatusLabel: "Encontrado (nombre)", ConfidenceLabel: "0.91", Method: linker.MethodName},
		},
		Matched: []linker.MatchResult{
			{SourceName: "TRUJILLOPEREZMARIACLARA", RegistryName: "TRUJILLOPEREZMARIACLARA", ID: "52345678", CostCenter: "VENTAS", Method: linker.MethodID, Confidence: 1},
		},
		Unmatched: []linker.SourceRecord{{Name: "Sandra Jimenez"}},
		Suggestions: []linker.ManualSuggestions{
			{SourceName: "Sandra Jimenez", Candidates: []linker.Suggestion{{RegistryName: "Sandra Patricia Jimenez Rojas", ID: "39444555", CostCenter: "CONTABILIDAD", Score: 0.62}}},
		},
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "xlsx", "yaml"}, formatters.List())

	info := formatters.GetFormatInfo("xlsx")
	assert.Equal(t, ".xlsx", info.Extension)
	assert.Contains(t, info.MimeType, "spreadsheetml")
	assert.Empty(t, formatters.GetFormatInfo("sarif").Name)
	assert.Len(t, formatters.GetSupportedFormats(), 5)

	_, err := formatters.Export("sarif", sampleReport(), formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, text, xlsx, yaml")
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantMatched bool
	}{
		{"default omits matched detail", false, false},
		{"verbose includes matched detail", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := formatters.Export("json", sampleReport(), formatters.FormatterOptions{Verbose: tt.verbose})
			require.NoError(t, err)

			var doc map[string]interface{}
			require.NoError(t, json.Unmarshal(out, &doc))
			assert.Equal(t, "2026-10-15T10:15:00Z", doc["generated_at"])
			assert.Len(t, doc["consolidated_data"], 2)
			assert.Len(t, doc["manual_suggestions"], 1)
			_, has := doc["matched_employees"]
			assert.Equal(t, tt.wantMatched, has)
		})
	}
}

func TestJSON_EmptyRunUsesEmptyLists(t *testing.T) {
	out, err := formatters.Export("json", nil, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"consolidated_data": []`)
	assert.Contains(t, string(out), `"unmatched_employees": []`)
}

func TestYAML(t *testing.T) {
	out, err := formatters.Export("yaml", sampleReport(), formatters.FormatterOptions{})
	require.NoError(t, err)

	var doc shared.JSONResponse
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "7f1c2a4e-0000-4000-8000-000000000001", doc.RunID)
	assert.Equal(t, 2, doc.Statistics.TotalMatched)
	require.Len(t, doc.Consolidated, 2)
	assert.Equal(t, "VENTAS", doc.Consolidated[0].CostCenter)
}

func TestCSV(t *testing.T) {
	out, err := formatters.Export("csv", sampleReport(), formatters.FormatterOptions{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Nombre Empleado,Cédula,Centro de Costo,Estado,Confianza,Método", lines[0])
	assert.Equal(t, "Maria Clara Trujillo Perez,52345678,VENTAS,Encontrado (cedula),1.00,cedula", lines[1])
	assert.Contains(t, lines[2], "'=SUM(A1)", "formulas are neutralised")

	out, err = formatters.Export("csv", sampleReport(), formatters.FormatterOptions{Verbose: true})
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Sandra Jimenez,,,No encontrado,,", lines[3])
}

func TestText(t *testing.T) {
	out, err := formatters.Export("text", sampleReport(), formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "=== Resumen ===")
	assert.Contains(t, text, "66.7%")
	assert.Contains(t, text, "Maria Clara Trujillo Perez")
	assert.Contains(t, text, "Empleados sin coincidencia (1):")
	assert.Contains(t, text, "sugerencia: Sandra Patricia Jimenez Rojas [39444555] CONTABILIDAD (0.62)")
	assert.NotContains(t, text, "\x1b[", "no escape codes with NoColor")
}

func TestText_NoMatches(t *testing.T) {
	out, err := formatters.Export("text", &formatters.RunReport{}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No se encontraron coincidencias automáticas.")
}

func TestXLSX(t *testing.T) {
	out, err := formatters.Export("xlsx", sampleReport(), formatters.FormatterOptions{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{xlsx.SheetConsolidated, xlsx.SheetUnmatched, xlsx.SheetSuggestions, xlsx.SheetStatistics}, book.GetSheetList())

	rows, err := book.GetRows(xlsx.SheetConsolidated)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, shared.Headers, rows[0])
	assert.Equal(t, "52345678", rows[1][1])

	rows, err = book.GetRows(xlsx.SheetSuggestions)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sandra Patricia Jimenez Rojas", rows[1][1])

	rate, err := book.GetCellValue(xlsx.SheetStatistics, "B7")
	require.NoError(t, err)
	assert.Equal(t, "66.7%", rate)
}
