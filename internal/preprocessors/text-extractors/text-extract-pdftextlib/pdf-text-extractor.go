// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageBreak separates the text of consecutive pages
const PageBreak = "\n--- PAGE BREAK ---\n"

// DefaultMaxPages bounds how much of a very long invoice bundle is read
const DefaultMaxPages = 200

// TextContent is the text of one invoice PDF, one visual row per line
type TextContent struct {
	Filename    string
	Text        string
	PageCount   int
	PagesRead   int
	FailedPages []int
	LineCount   int
}

// Options tune ExtractText
type Options struct {
	MaxPages int
	// IncludeFormFields appends AcroForm "name: value" lines after the page text
	IncludeFormFields bool
}

// ExtractText reads every page of filePath top-down and returns its text.
// A page that cannot be decoded is recorded in FailedPages and skipped.
func ExtractText(filePath string) (*TextContent, error) {
	return ExtractTextWithOptions(filePath, Options{MaxPages: DefaultMaxPages, IncludeFormFields: true})
}

// ExtractTextWithOptions is ExtractText with explicit limits
func ExtractTextWithOptions(filePath string, opts Options) (*TextContent, error) {
	content := &TextContent{Filename: filepath.Base(filePath)}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return content, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content.PageCount = r.NumPage()
	pages := content.PageCount
	if opts.MaxPages > 0 && pages > opts.MaxPages {
		pages = opts.MaxPages
	}

	var buf bytes.Buffer
	for i := 1; i <= pages; i++ {
		text, err := pageText(r.Page(i))
		if err != nil {
			content.FailedPages = append(content.FailedPages, i)
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(PageBreak)
		}
		buf.WriteString(text)
		content.PagesRead++
	}

	if opts.IncludeFormFields {
		if fields := formFields(r); fields != "" {
			buf.WriteString("\n")
			buf.WriteString(fields)
		}
	}

	content.Text = CleanText(buf.String())
	if content.Text != "" {
		content.LineCount = strings.Count(content.Text, "\n") + 1
	}

	if pages > 0 && content.PagesRead == 0 {
		return content, fmt.Errorf("no readable pages in %s", content.Filename)
	}
	return content, nil
}

func pageText(p pdf.Page) (text string, err error) {
	if p.V.IsNull() {
		return "", fmt.Errorf("null page")
	}
	// the pdf package panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decode page: %v", rec)
		}
	}()

	// GetTextByRow loses glyph positions for fonts without a Widths array
	// (the standard 14), so rows are rebuilt from the positioned content.
	var buf bytes.Buffer
	for _, row := range groupRows(p.Content().Text) {
		line := joinRow(row)
		if strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// groupRows buckets glyphs into visual rows, top row first. A glyph joins
// the current row when its baseline is within half a font size of the
// row's first baseline.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" && t.S != "\n" {
			glyphs = append(glyphs, t)
		}
	}
	// PDF user space grows upwards, so the top row has the largest Y
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var rows [][]pdf.Text
	var baseline float64
	for _, g := range glyphs {
		if len(rows) == 0 || baseline-g.Y > fontSize(g)*0.5 {
			rows = append(rows, nil)
			baseline = g.Y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}
	return rows
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 12
	}
	return t.FontSize
}

// joinRow orders the glyph runs of a row left to right and inserts a space
// wherever the gap to the next run exceeds a fifth of the font size.
func joinRow(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var buf bytes.Buffer
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		if gap := sorted[i+1].X - (t.X + t.W); gap > fontSize(t)*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// formFields renders filled AcroForm fields as "name: value" lines
func formFields(r *pdf.Reader) string {
	acro := r.Trailer().Key("Root").Key("AcroForm")
	if acro.IsNull() {
		return ""
	}
	fields := acro.Key("Fields")
	if fields.Kind() != pdf.Array {
		return ""
	}

	var lines []string
	for i := 0; i < fields.Len(); i++ {
		field := fields.Index(i)
		if field.Kind() != pdf.Dict {
			continue
		}
		name := field.Key("T").Text()
		value := fieldValue(field.Key("V"))
		if value == "" {
			value = fieldValue(field.Key("DV"))
		}
		if name != "" && value != "" {
			lines = append(lines, name+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

func fieldValue(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	}
	return ""
}

// CleanText trims every line, drops blank lines, turns tabs into spaces
// and squeezes repeated spaces, keeping the line structure intact.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", " ")
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
