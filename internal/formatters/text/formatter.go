// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"costcenter-linker/internal/formatters"
	"costcenter-linker/internal/formatters/shared"
	"costcenter-linker/internal/linker"
)

const (
	nameWidth   = 32
	idWidth     = 12
	centerWidth = 20
	statusWidth = 22
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// paint formats like fmt.Sprintf, in colour unless NoColor is set
func (f *Formatter) paint(options formatters.FormatterOptions, name, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) Format(report *formatters.RunReport, options formatters.FormatterOptions) ([]byte, error) {
	var b strings.Builder

	f.appendSummary(&b, report, options)
	b.WriteString("\n")

	if len(report.Consolidated) == 0 {
		b.WriteString(f.paint(options, "yellow", "No se encontraron coincidencias automáticas.\n"))
	} else {
		f.appendTable(&b, report.Consolidated, options)
	}

	if len(report.Unmatched) > 0 {
		b.WriteString("\n")
		f.appendUnmatched(&b, report, options)
	}

	if len(report.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(f.paint(options, "yellow", "Advertencias:\n"))
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return []byte(b.String()), nil
}

func (f *Formatter) appendSummary(b *strings.Builder, report *formatters.RunReport, options formatters.FormatterOptions) {
	s := report.Statistics
	b.WriteString(f.paint(options, "white", "=== Resumen ===\n"))

	line := func(label string, value interface{}) {
		fmt.Fprintf(b, "%s %v\n", f.paint(options, "cyan", "%-26s", label+":"), value)
	}
	line("Empleados en PDF", s.TotalSource)
	line("Encontrados por cédula", s.MatchedByID)
	line("Encontrados por nombre", s.MatchedByName)
	line("Sin coincidencia", s.TotalUnmatched)

	rate := shared.MatchRatePercent(s)
	switch {
	case s.TotalSource == 0:
	case s.TotalUnmatched == 0:
		rate = f.paint(options, "green", "%s", rate)
	case s.TotalMatched == 0:
		rate = f.paint(options, "red", "%s", rate)
	default:
		rate = f.paint(options, "yellow", "%s", rate)
	}
	line("Tasa de éxito", rate)

	if report.AliasesApplied > 0 {
		line("Alias aplicados", report.AliasesApplied)
	}
	if report.ReportFile != "" {
		line("Reporte", report.ReportFile)
	}
	if options.Verbose && report.RunID != "" {
		line("Ejecución", report.RunID)
	}
}

func (f *Formatter) appendTable(b *strings.Builder, records []linker.ConsolidatedRecord, options formatters.FormatterOptions) {
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		nameWidth, "NOMBRE", idWidth, "CÉDULA", centerWidth, "CENTRO DE COSTO", statusWidth, "ESTADO", "CONF")
	b.WriteString(f.paint(options, "white", "%s\n", header))
	b.WriteString(f.paint(options, "white", "%s\n", strings.Repeat("-", len([]rune(header)))))

	for _, r := range records {
		method := "green"
		if r.Method == linker.MethodName {
			method = "yellow"
		}
		fmt.Fprintf(b, "%s %s %s %s %s\n",
			fmt.Sprintf("%-*s", nameWidth, truncate(r.Name, nameWidth)),
			f.paint(options, "magenta", "%-*s", idWidth, r.ID),
			f.paint(options, "cyan", "%-*s", centerWidth, truncate(r.CostCenter, centerWidth)),
			f.paint(options, method, "%-*s", statusWidth, r.StatusLabel),
			f.paint(options, "blue", "%s", r.ConfidenceLabel),
		)
	}
}

// appendUnmatched lists unlinked invoice records with their best suggestion
func (f *Formatter) appendUnmatched(b *strings.Builder, report *formatters.RunReport, options formatters.FormatterOptions) {
	b.WriteString(f.paint(options, "red", "Empleados sin coincidencia (%d):\n", len(report.Unmatched)))

	best := make(map[string]linker.Suggestion, len(report.Suggestions))
	for _, s := range report.Suggestions {
		if len(s.Candidates) > 0 {
			best[s.SourceName] = s.Candidates[0]
		}
	}

	for _, u := range report.Unmatched {
		name := u.Name
		if name == "" {
			name = "(sin nombre)"
		}
		if u.ID != "" {
			fmt.Fprintf(b, "  - %s (cédula %s)\n", name, u.ID)
		} else {
			fmt.Fprintf(b, "  - %s\n", name)
		}
		if s, ok := best[u.Name]; ok {
			fmt.Fprintf(b, "      %s %s [%s] %s (%.2f)\n",
				f.paint(options, "cyan", "sugerencia:"), s.RegistryName, s.ID, s.CostCenter, s.Score)
		}
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
