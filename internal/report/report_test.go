// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costcenter-linker/internal/linker"
	textextractpdftextlib "costcenter-linker/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 15, 10, 15, 0, 0, time.UTC) }

func sampleRecords() []linker.ConsolidatedRecord {
	return []linker.ConsolidatedRecord{
		{
			Name:            "Maria Clara Trujillo Perez",
			ID:              "52345678",
			CostCenter:      "VENTAS",
			StatusLabel:     "Encontrado (cedula)",
			ConfidenceLabel: "1.00",
			Method:          linker.MethodID,
		},
		{
			Name:            "Juan Carlos Gomez Diaz",
			ID:              "80123456",
			CostCenter:      "LOGISTICA",
			StatusLabel:     "Encontrado (nombre)",
			ConfidenceLabel: "0.91",
			Method:          linker.MethodName,
		},
	}
}

func originalInvoice(t *testing.T, pages int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factura.pdf")
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Text(20, 30, "FACTURA ELECTRONICA")
	}
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func TestRender(t *testing.T) {
	stats := linker.Statistics{TotalSource: 3, TotalMatched: 2, TotalUnmatched: 1, MatchRate: 2.0 / 3}

	tests := []struct {
		name    string
		records []linker.ConsolidatedRecord
		opts    Options
		want    []string
	}{
		{
			name:    "matched table",
			records: sampleRecords(),
			opts:    Options{IncludeConfidence: true, Now: fixedNow},
			want:    []string{"Empleados Encontrados", "Maria Clara Trujillo Perez", "52345678", "LOGISTICA", "15/10/2026 10:15"},
		},
		{
			name: "no matches message",
			opts: Options{Now: fixedNow},
			want: []string{"Resultados del Procesamiento", "Total de empleados procesados: 0"},
		},
		{
			name:    "statistics table",
			records: sampleRecords(),
			opts:    Options{IncludeStatistics: true, Now: fixedNow},
			want:    []string{"Valor", "66.7%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report.pdf")
			require.NoError(t, WriteStandalone(path, tt.records, stats, tt.opts))

			content, err := textextractpdftextlib.ExtractText(path)
			require.NoError(t, err)
			assert.Contains(t, content.Text, "Reporte de Centros de Costo")
			for _, w := range tt.want {
				assert.Contains(t, content.Text, w)
			}
		})
	}
}

func TestRender_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleRecords(), linker.Statistics{}, DefaultOptions()))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestRender_PaginatesLongTables(t *testing.T) {
	var records []linker.ConsolidatedRecord
	for i := 0; i < 80; i++ {
		records = append(records, sampleRecords()[i%2])
	}
	path := filepath.Join(t.TempDir(), "long.pdf")
	require.NoError(t, WriteStandalone(path, records, linker.Statistics{}, Options{Now: fixedNow}))

	pages, err := api.PageCountFile(path)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestRowColor(t *testing.T) {
	assert.Equal(t, lightGreen, rowColor(0, "Encontrado (cedula)"))
	assert.Equal(t, lightCoral, rowColor(0, "No encontrado"))
	assert.Equal(t, beige, rowColor(0, ""))
	assert.Equal(t, lightGrey, rowColor(1, ""))
}

func TestFit(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 9)

	assert.Equal(t, "Ana", fit(doc, "Ana", 50))

	long := strings.Repeat("Bartolome ", 10)
	got := fit(doc, long, 30)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, doc.GetStringWidth(got), 30.0)
}

func TestWriter_WriteMerged(t *testing.T) {
	original := originalInvoice(t, 2)
	dir := filepath.Join(t.TempDir(), "out")

	w := NewWriter(dir, WithOptions(Options{IncludeConfidence: true, Now: fixedNow}))
	out, err := w.WriteMerged(original, sampleRecords(), linker.Statistics{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "facturacion_completa_20261015_101500.pdf"), out)

	pages, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary report must be removed")

	content, err := textextractpdftextlib.ExtractText(out)
	require.NoError(t, err)
	assert.Less(t, strings.Index(content.Text, "FACTURA"), strings.Index(content.Text, "Centros de Costo"))
}

func TestWriter_WriteMergedFailures(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, WithPrefix("salida"), WithOptions(Options{Now: fixedNow}))

	_, err := w.WriteMerged(filepath.Join(dir, "missing.pdf"), nil, linker.Statistics{})
	require.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("not a pdf"), 0o600))
	_, err = w.WriteMerged(broken, sampleRecords(), linker.Statistics{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriter_WriteStandalone(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, WithOptions(Options{Now: fixedNow}))
	assert.Equal(t, "report", w.GetComponentName())

	out, err := w.WriteStandalone(sampleRecords(), linker.Statistics{})
	require.NoError(t, err)
	assert.Equal(t, "reporte_centros_costo_20261015_101500.pdf", filepath.Base(out))
	assert.FileExists(t, out)
}
