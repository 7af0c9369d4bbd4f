// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/version"
)

const (
	// TitleMerged heads the page appended to the original invoice
	TitleMerged = "Centros de Costo - Facturación Electrónica"
	// TitleStandalone heads a report written on its own
	TitleStandalone = "Reporte de Centros de Costo"

	subtitleMatched   = "Empleados Encontrados - Centros de Costo Asignados"
	subtitleNoMatches = "Resultados del Procesamiento"
	subtitleStats     = "Estadísticas del Procesamiento"

	noMatchesHeadline = "No se encontraron coincidencias automáticas."
	noMatchesBody     = "Ningún empleado del PDF pudo ser identificado automáticamente en la base de datos Excel. " +
		"Revise los datos de entrada y considere ajustar el umbral de similitud."

	dateLayout = "02/01/2006 15:04"
	margin     = 20.0
	rowHeight  = 7.0
)

type column struct {
	title string
	width float64
	align string
	value func(linker.ConsolidatedRecord) string
}

var columns = []column{
	{"Nombre Empleado", 55, "L", func(r linker.ConsolidatedRecord) string { return r.Name }},
	{"Cédula", 28, "C", func(r linker.ConsolidatedRecord) string { return r.ID }},
	{"Centro de Costo", 37, "C", func(r linker.ConsolidatedRecord) string { return r.CostCenter }},
	{"Estado", 32, "C", func(r linker.ConsolidatedRecord) string { return r.StatusLabel }},
	{"Confianza", 18, "C", func(r linker.ConsolidatedRecord) string { return r.ConfidenceLabel }},
}

type rgb struct{ r, g, b int }

var (
	darkBlue   = rgb{0, 0, 139}
	whiteSmoke = rgb{245, 245, 245}
	beige      = rgb{245, 245, 220}
	lightGrey  = rgb{211, 211, 211}
	lightGreen = rgb{144, 238, 144}
	lightCoral = rgb{240, 128, 128}
	grey       = rgb{128, 128, 128}
)

// Options control the rendered page
type Options struct {
	Title string
	// IncludeConfidence adds the Confianza column
	IncludeConfidence bool
	// IncludeStatistics adds the Estadística/Valor table after the records
	IncludeStatistics bool
	// Now stamps the generation date; time.Now when nil
	Now func() time.Time
}

// DefaultOptions renders the merged-invoice page
func DefaultOptions() Options {
	return Options{Title: TitleMerged, IncludeConfidence: true}
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Render draws the consolidation report as a PDF into w
func Render(w io.Writer, records []linker.ConsolidatedRecord, stats linker.Statistics, opts Options) error {
	if opts.Title == "" {
		opts.Title = TitleMerged
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(opts.Title, true)
	doc.SetCreator(version.Short(), true)
	doc.AddPage()

	width, _ := doc.GetPageSize()
	usable := width - 2*margin

	doc.SetFont("Helvetica", "B", 16)
	setText(doc, darkBlue)
	doc.CellFormat(usable, 10, tr(opts.Title), "", 1, "C", false, 0, "")
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	setText(doc, rgb{})
	doc.CellFormat(usable, 6, tr("Fecha de generación: "+opts.now().Format(dateLayout)), "", 1, "L", false, 0, "")
	doc.CellFormat(usable, 6, tr(fmt.Sprintf("Total de empleados procesados: %d", len(records))), "", 1, "L", false, 0, "")
	doc.Ln(8)

	if len(records) == 0 {
		subtitle(doc, tr, usable, subtitleNoMatches)
		doc.SetFont("Helvetica", "B", 10)
		doc.MultiCell(usable, 5, tr(noMatchesHeadline), "", "L", false)
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(usable, 5, tr(noMatchesBody), "", "L", false)
	} else {
		subtitle(doc, tr, usable, subtitleMatched)
		recordTable(doc, tr, records, opts.IncludeConfidence)
	}

	if opts.IncludeStatistics {
		doc.Ln(10)
		subtitle(doc, tr, usable, subtitleStats)
		statisticsTable(doc, tr, stats)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func setText(doc *fpdf.Fpdf, c rgb) { doc.SetTextColor(c.r, c.g, c.b) }
func setFill(doc *fpdf.Fpdf, c rgb) { doc.SetFillColor(c.r, c.g, c.b) }

func subtitle(doc *fpdf.Fpdf, tr func(string) string, width float64, text string) {
	doc.SetFont("Helvetica", "B", 12)
	setText(doc, darkBlue)
	doc.CellFormat(width, 8, tr(text), "", 1, "L", false, 0, "")
	doc.Ln(4)
	setText(doc, rgb{})
}

func recordTable(doc *fpdf.Fpdf, tr func(string) string, records []linker.ConsolidatedRecord, confidence bool) {
	cols := columns
	if !confidence {
		cols = columns[:len(columns)-1]
	}

	header := func() {
		doc.SetFont("Helvetica", "B", 10)
		setFill(doc, darkBlue)
		setText(doc, whiteSmoke)
		for _, c := range cols {
			doc.CellFormat(c.width, rowHeight+1, tr(c.title), "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", 9)
		setText(doc, rgb{})
	}

	_, pageHeight := doc.GetPageSize()
	header()
	for i, rec := range records {
		if doc.GetY()+rowHeight > pageHeight-margin {
			doc.AddPage()
			header()
		}
		setFill(doc, rowColor(i, rec.StatusLabel))
		for _, c := range cols {
			doc.CellFormat(c.width, rowHeight, fit(doc, tr(c.value(rec)), c.width-2), "1", 0, c.align, true, 0, "")
		}
		doc.Ln(-1)
	}
}

// rowColor follows the status: found rows green, missing rows coral,
// anything else alternates beige and grey
func rowColor(i int, status string) rgb {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "no encontrado"):
		return lightCoral
	case strings.Contains(s, "encontrado"):
		return lightGreen
	case i%2 == 1:
		return lightGrey
	default:
		return beige
	}
}

// fit shortens s with a trailing "..." until it fits in width
func fit(doc *fpdf.Fpdf, s string, width float64) string {
	if doc.GetStringWidth(s) <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && doc.GetStringWidth(string(b)+"...") > width {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

func statisticsTable(doc *fpdf.Fpdf, tr func(string) string, stats linker.Statistics) {
	rows := [][2]string{
		{"Total de empleados en PDF", fmt.Sprint(stats.TotalMatched + stats.TotalUnmatched)},
		{"Empleados encontrados", fmt.Sprint(stats.TotalMatched)},
		{"Empleados no encontrados", fmt.Sprint(stats.TotalUnmatched)},
		{"Tasa de éxito", fmt.Sprintf("%.1f%%", stats.MatchRate*100)},
	}

	doc.SetFont("Helvetica", "B", 10)
	setFill(doc, grey)
	setText(doc, whiteSmoke)
	doc.CellFormat(70, rowHeight, tr("Estadística"), "1", 0, "C", true, 0, "")
	doc.CellFormat(40, rowHeight, "Valor", "1", 1, "C", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	setFill(doc, lightGrey)
	setText(doc, rgb{})
	for _, r := range rows {
		doc.CellFormat(70, rowHeight, tr(r[0]), "1", 0, "C", true, 0, "")
		doc.CellFormat(40, rowHeight, r[1], "1", 1, "C", true, 0, "")
	}
}
