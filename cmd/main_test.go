// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"costcenter-linker/internal/config"
)

// isolate keeps the run away from real config and alias files
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("COSTCENTER_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeFixtures(t *testing.T, dir string) (string, string) {
	t.Helper()
	pdfPath := filepath.Join(dir, "factura.pdf")
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 11)
	doc.AddPage()
	for i, line := range []string{"FACTURA ELECTRONICA", "JUAN CARLOS GOMEZ", "Cedula 12345678", "ROSA ELENA MARIN", "Cedula 99999999"} {
		doc.Text(20, float64(30+12*i), line)
	}
	require.NoError(t, doc.OutputFileAndClose(pdfPath))

	f := excelize.NewFile()
	defer f.Close()
	for r, row := range [][]interface{}{
		{"Cédula", "Nombre", "Centro de Costo"},
		{12345678, "GOMEZJUANCARLOS", "VENTAS"},
		{44444444, "Rosa Elena Marin", "BODEGA"},
	} {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	xlsxPath := filepath.Join(dir, "empleados.xlsx")
	require.NoError(t, f.SaveAs(xlsxPath))
	return pdfPath, xlsxPath
}

func TestParseInterleaved(t *testing.T) {
	fs, f := newFlagSet(io.Discard)
	positional, err := parseInterleaved(fs, []string{"a.pdf", "--verbose", "b.xlsx", "--similarity", "0.8"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.xlsx"}, positional)
	assert.True(t, f.verbose)
	assert.Equal(t, 0.8, f.similarity)

	fs, _ = newFlagSet(io.Discard)
	_, err = parseInterleaved(fs, []string{"--bogus"})
	assert.Error(t, err)
}

func TestResolveConfiguration(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Defaults.Format = "json"
	cfg.Registry.Sheet = "Nomina"

	tests := []struct {
		name    string
		profile string
		args    []string
		check   func(t *testing.T, final *finalConfiguration)
	}{
		{"defaults section", "", nil, func(t *testing.T, final *finalConfiguration) {
			assert.Equal(t, "json", final.Format)
			assert.Equal(t, 0.7, final.Similarity)
			assert.Equal(t, "Nomina", final.sheet)
		}},
		{"profile over defaults", "strict", nil, func(t *testing.T, final *finalConfiguration) {
			assert.Equal(t, 0.85, final.Similarity)
			assert.Equal(t, 5, final.Suggestions)
		}},
		{"flag over profile", "strict", []string{"--similarity", "0.9", "--format", "csv", "--sheet", "Otra"}, func(t *testing.T, final *finalConfiguration) {
			assert.Equal(t, 0.9, final.Similarity)
			assert.Equal(t, "csv", final.Format)
			assert.Equal(t, "Otra", final.sheet)
		}},
		{"explicit false flag wins", "audit", []string{"--verbose=false"}, func(t *testing.T, final *finalConfiguration) {
			assert.False(t, final.Verbose)
			assert.True(t, final.Statistics)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, f := newFlagSet(io.Discard)
			_, err := parseInterleaved(fs, tt.args)
			require.NoError(t, err)
			tt.check(t, resolveConfiguration(cfg, cfg.GetProfile(tt.profile), fs, f))
		})
	}
}

func TestRun_Informational(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"version", []string{"--version"}, 0, "costcenter-linker"},
		{"help", []string{"--help"}, 0, "USAGE:"},
		{"help topic", []string{"--help", "aliases"}, 0, "ALIASES"},
		{"unknown topic", []string{"--help", "nada"}, 1, "not found"},
		{"list profiles", []string{"--list-profiles"}, 0, "strict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, &stdout, &stderr))
			assert.Contains(t, stdout.String(), tt.want)
		})
	}
}

func TestRun_Rejects(t *testing.T) {
	dir := isolate(t)
	pdfPath, xlsxPath := writeFixtures(t, dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing inputs", []string{"--pdf", pdfPath}, "Usage:"},
		{"similarity too low", []string{pdfPath, xlsxPath, "--similarity", "0.4"}, "Error: invalid --similarity"},
		{"similarity too high", []string{pdfPath, xlsxPath, "--similarity", "1.2"}, "Error: invalid --similarity"},
		{"unknown format", []string{pdfPath, xlsxPath, "--format", "sarif"}, "Error: unsupported format 'sarif'"},
		{"xlsx needs a file", []string{pdfPath, xlsxPath, "--format", "xlsx"}, "use --out-file"},
		{"unknown profile", []string{pdfPath, xlsxPath, "--profile", "nightly"}, "profile 'nightly' not found"},
		{"extra arguments", []string{pdfPath, xlsxPath, "otro.pdf"}, "unexpected arguments"},
		{"missing registry", []string{pdfPath, filepath.Join(dir, "missing.xlsx"), "--report", "none"}, "Error:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, run(tt.args, &stdout, &stderr))
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := isolate(t)
	pdfPath, xlsxPath := writeFixtures(t, dir)
	outFile := filepath.Join(dir, "run.json")
	reports := filepath.Join(dir, "reportes")

	var stdout, stderr bytes.Buffer
	code := run([]string{pdfPath, xlsxPath, "--format", "json", "--out-file", outFile, "--output", reports, "--report", "standalone", "--quiet"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["consolidated_data"], 2)

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "reporte_centros_costo_")
}

func TestRun_TextToStdout(t *testing.T) {
	dir := isolate(t)
	pdfPath, xlsxPath := writeFixtures(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--pdf", pdfPath, "--registry", xlsxPath, "--report", "none", "--no-color"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "=== Resumen ===")
	assert.Contains(t, stdout.String(), "VENTAS")
	assert.Contains(t, stdout.String(), "BODEGA")
}
