// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/observability"
)

var (
	// ErrEmptyWorkbook means the chosen sheet has no header row
	ErrEmptyWorkbook = errors.New("registry sheet is empty")
	// ErrSheetNotFound means the configured sheet does not exist
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrUnsupportedFormat is returned for legacy .xls and other non-OOXML files
	ErrUnsupportedFormat = errors.New("unsupported registry format")
	// ErrUnknownColumn means an explicit column override names no header
	ErrUnknownColumn = errors.New("unknown column")
)

// Options control how a workbook is read
type Options struct {
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string
	// Columns overrides detected headers field by field
	Columns  ColumnMapping
	Observer *observability.StandardObserver
}

// Workbook is the employee registry loaded from one worksheet. Rows keep
// their sheet order, which is the order every lookup scans in.
type Workbook struct {
	path    string
	sheet   string
	sheets  []string
	headers []string
	rows    [][]string
	mapping ColumnMapping
	index   map[Field]int
}

// Load opens an .xlsx/.xlsm registry
func Load(path string, opts Options) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	finish := opts.Observer.StartTiming("registry", "load", path)
	f, err := excelize.OpenFile(path)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("error opening registry: %w", err)
	}
	defer f.Close()

	wb, err := fromFile(f, path, opts)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	finish(true, map[string]interface{}{
		"sheet":   wb.sheet,
		"rows":    len(wb.rows),
		"columns": wb.mapping,
	})
	return wb, nil
}

// LoadReader reads a registry workbook from r
func LoadReader(r io.Reader, opts Options) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error reading registry: %w", err)
	}
	defer f.Close()
	return fromFile(f, "", opts)
}

func fromFile(f *excelize.File, path string, opts Options) (*Workbook, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	sheet := sheets[0]
	if opts.Sheet != "" {
		found := false
		for _, s := range sheets {
			if s == opts.Sheet {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%q: %w (available: %s)", opts.Sheet, ErrSheetNotFound, strings.Join(sheets, ", "))
		}
		sheet = opts.Sheet
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%q: %w", sheet, ErrEmptyWorkbook)
	}

	wb := &Workbook{path: path, sheet: sheet, sheets: sheets}
	wb.headers = make([]string, len(raw[0]))
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		wb.headers[i] = h
	}
	if len(wb.headers) == 0 {
		return nil, fmt.Errorf("%q: %w", sheet, ErrEmptyWorkbook)
	}

	for _, r := range raw[1:] {
		if isBlank(r) {
			continue
		}
		row := make([]string, len(wb.headers))
		for i := 0; i < len(row) && i < len(r); i++ {
			row[i] = strings.TrimSpace(r[i])
		}
		wb.rows = append(wb.rows, row)
	}

	if err := wb.SetColumns(DetectColumns(wb.headers).overlay(opts.Columns)); err != nil {
		return nil, err
	}
	return wb, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// New builds a workbook from headers and rows already in memory
func New(headers []string, rows [][]string) (*Workbook, error) {
	wb := &Workbook{headers: append([]string(nil), headers...)}
	for _, r := range rows {
		row := make([]string, len(headers))
		copy(row, r)
		wb.rows = append(wb.rows, row)
	}
	if err := wb.SetColumns(DetectColumns(wb.headers)); err != nil {
		return nil, err
	}
	return wb, nil
}

// SetColumns replaces the column mapping. Every non-empty header it names
// must exist.
func (w *Workbook) SetColumns(m ColumnMapping) error {
	index := make(map[Field]int, len(detectionOrder))
	for _, field := range detectionOrder {
		header := m.get(field)
		if header == "" {
			continue
		}
		pos := w.headerIndex(header)
		if pos < 0 {
			return fmt.Errorf("%s column %q: %w", field, header, ErrUnknownColumn)
		}
		index[field] = pos
	}
	w.mapping = m
	w.index = index
	return nil
}

func (w *Workbook) headerIndex(header string) int {
	for i, h := range w.headers {
		if h == header {
			return i
		}
	}
	for i, h := range w.headers {
		if strings.EqualFold(h, strings.TrimSpace(header)) {
			return i
		}
	}
	return -1
}

// GetComponentName implements observability.Observable
func (w *Workbook) GetComponentName() string { return "registry" }

// Path returns the file the registry was read from
func (w *Workbook) Path() string { return w.path }

// Sheet returns the worksheet in use
func (w *Workbook) Sheet() string { return w.sheet }

// SheetNames lists every worksheet of the file
func (w *Workbook) SheetNames() []string { return append([]string(nil), w.sheets...) }

// Headers returns the trimmed header row
func (w *Workbook) Headers() []string { return append([]string(nil), w.headers...) }

// Columns returns the resolved column mapping
func (w *Workbook) Columns() ColumnMapping { return w.mapping }

// Len is the number of data rows
func (w *Workbook) Len() int { return len(w.rows) }

// HasIDColumn implements linker.ColumnReporter
func (w *Workbook) HasIDColumn() bool {
	_, ok := w.index[FieldID]
	return ok
}

// HasNameColumn implements linker.ColumnReporter
func (w *Workbook) HasNameColumn() bool {
	_, ok := w.index[FieldName]
	return ok
}

func (w *Workbook) cell(row []string, f Field) string {
	i, ok := w.index[f]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (w *Workbook) record(row []string) linker.RegistryRecord {
	return linker.RegistryRecord{
		Name:       w.cell(row, FieldName),
		ID:         w.cell(row, FieldID),
		CostCenter: w.cell(row, FieldCostCenter),
	}
}

// GetAll implements linker.Registry
func (w *Workbook) GetAll() []linker.RegistryRecord {
	out := make([]linker.RegistryRecord, len(w.rows))
	for i, row := range w.rows {
		out[i] = w.record(row)
	}
	return out
}

// FindByID implements linker.Registry. Both sides are reduced to digits,
// so "12.345.678" finds 12345678.
func (w *Workbook) FindByID(id string) []linker.RegistryRecord {
	want := linker.CleanID(id)
	if want == "" || !w.HasIDColumn() {
		return nil
	}
	var out []linker.RegistryRecord
	for _, row := range w.rows {
		if linker.CleanID(w.cell(row, FieldID)) == want {
			out = append(out, w.record(row))
		}
	}
	return out
}

// FindByName returns the rows whose name contains name, ignoring case
func (w *Workbook) FindByName(name string) []linker.RegistryRecord {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" || !w.HasNameColumn() {
		return nil
	}
	var out []linker.RegistryRecord
	for _, row := range w.rows {
		if strings.Contains(strings.ToLower(w.cell(row, FieldName)), needle) {
			out = append(out, w.record(row))
		}
	}
	return out
}

// FindEmployee looks up by id first and falls back to the name only when the
// id finds nothing. Duplicate name/id pairs are returned once.
func (w *Workbook) FindEmployee(name, id string) []linker.RegistryRecord {
	var hits []linker.RegistryRecord
	if id != "" {
		hits = w.FindByID(id)
	}
	if name != "" && len(hits) == 0 {
		hits = w.FindByName(name)
	}

	seen := make(map[string]bool)
	out := hits[:0]
	for _, r := range hits {
		key := r.Name + "-" + r.ID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// Preview returns the first maxRows values of every column
func (w *Workbook) Preview(maxRows int) map[string][]string {
	out := make(map[string][]string, len(w.headers))
	n := max(0, min(maxRows, len(w.rows)))
	for i, h := range w.headers {
		values := make([]string, 0, n)
		for _, row := range w.rows[:n] {
			values = append(values, row[i])
		}
		out[h] = values
	}
	return out
}
