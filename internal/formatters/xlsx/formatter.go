// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"costcenter-linker/internal/formatters"
	"costcenter-linker/internal/formatters/shared"
)

const (
	SheetConsolidated = "Consolidado"
	SheetUnmatched    = "No encontrados"
	SheetSuggestions  = "Sugerencias"
	SheetStatistics   = "Estadisticas"
)

// Formatter writes the run as an Excel workbook
type Formatter struct{}

// NewFormatter creates a new xlsx formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "xlsx"
}

func (f *Formatter) Description() string {
	return "Excel workbook with consolidated, unmatched, suggestion and statistics sheets"
}

func (f *Formatter) FileExtension() string {
	return ".xlsx"
}

type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
	widths  []float64
}

func (f *Formatter) Format(report *formatters.RunReport, options formatters.FormatterOptions) ([]byte, error) {
	sheets := []sheet{
		consolidatedSheet(report, options),
		unmatchedSheet(report),
		suggestionsSheet(report),
		statisticsSheet(report),
	}

	book := excelize.NewFile()
	defer book.Close()

	headerStyle, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00008B"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := book.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("xlsx sheet %s: %w", s.name, err)
			}
		} else if _, err := book.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("xlsx sheet %s: %w", s.name, err)
		}
		if err := writeSheet(book, s, headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(book *excelize.File, s sheet, headerStyle int) error {
	if err := book.SetSheetRow(s.name, "A1", &s.headers); err != nil {
		return fmt.Errorf("xlsx %s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return err
	}
	if err := book.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("xlsx %s style: %w", s.name, err)
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("xlsx %s row %d: %w", s.name, i+2, err)
		}
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := book.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func consolidatedSheet(report *formatters.RunReport, options formatters.FormatterOptions) sheet {
	s := sheet{name: SheetConsolidated, headers: shared.Headers, widths: []float64{36, 14, 22, 22, 11, 10}}
	for _, r := range shared.Rows(report, options.Verbose) {
		values := r.Values()
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		s.rows = append(s.rows, row)
	}
	return s
}

func unmatchedSheet(report *formatters.RunReport) sheet {
	s := sheet{name: SheetUnmatched, headers: []string{"Nombre en PDF", "Cédula en PDF"}, widths: []float64{36, 14}}
	for _, u := range report.Unmatched {
		s.rows = append(s.rows, []interface{}{u.Name, u.ID})
	}
	return s
}

func suggestionsSheet(report *formatters.RunReport) sheet {
	s := sheet{
		name:    SheetSuggestions,
		headers: []string{"Nombre en PDF", "Candidato", "Cédula", "Centro de Costo", "Similitud"},
		widths:  []float64{36, 36, 14, 22, 10},
	}
	for _, group := range report.Suggestions {
		for _, c := range group.Candidates {
			s.rows = append(s.rows, []interface{}{group.SourceName, c.RegistryName, c.ID, c.CostCenter, c.Score})
		}
	}
	return s
}

func statisticsSheet(report *formatters.RunReport) sheet {
	st := report.Statistics
	return sheet{
		name:    SheetStatistics,
		headers: []string{"Estadística", "Valor"},
		widths:  []float64{32, 14},
		rows: [][]interface{}{
			{"Total de empleados en PDF", st.TotalSource},
			{"Encontrados por cédula", st.MatchedByID},
			{"Encontrados por nombre", st.MatchedByName},
			{"Empleados encontrados", st.TotalMatched},
			{"Empleados no encontrados", st.TotalUnmatched},
			{"Tasa de éxito", shared.MatchRatePercent(st)},
		},
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
