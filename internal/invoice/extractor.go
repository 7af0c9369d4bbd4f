// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/observability"
	textextractpdftextlib "costcenter-linker/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

var (
	// ErrNotPDF is returned for inputs without a .pdf extension
	ErrNotPDF = errors.New("input is not a PDF file")
	// ErrInvalidPDF wraps structural validation failures reported by pdfcpu
	ErrInvalidPDF = errors.New("invalid PDF")
	// ErrNoText means the PDF has no extractable text layer (e.g. a scan)
	ErrNoText = errors.New("no text found in PDF")
)

// Extractor reads one invoice PDF and turns it into source records.
// It implements linker.SourceExtractor. The extracted text is cached, so
// Extract, Text, Preview and Search read the file once.
type Extractor struct {
	path     string
	parser   *Parser
	validate bool
	maxPages int
	conf     *model.Configuration
	observer *observability.StandardObserver
	debug    *observability.DebugObserver

	content *textextractpdftextlib.TextContent
}

// Option configures an Extractor
type Option func(*Extractor)

// WithParser replaces the default parser
func WithParser(p *Parser) Option {
	return func(e *Extractor) { e.parser = p }
}

// WithObserver reports extraction timing and, in debug mode, the found records
func WithObserver(o *observability.StandardObserver) Option {
	return func(e *Extractor) {
		e.observer = o
		if o != nil {
			e.debug = o.DebugObserver
		}
	}
}

// WithMaxPages limits how many pages are read; 0 keeps the default
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithoutValidation skips the pdfcpu structural check
func WithoutValidation() Option {
	return func(e *Extractor) { e.validate = false }
}

// NewExtractor creates an extractor for path
func NewExtractor(path string, opts ...Option) *Extractor {
	e := &Extractor{
		path:     path,
		parser:   NewParser(nil),
		validate: true,
		maxPages: textextractpdftextlib.DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetComponentName implements observability.Observable
func (e *Extractor) GetComponentName() string { return "invoice" }

// Path returns the PDF being read
func (e *Extractor) Path() string { return e.path }

// Validate checks the file exists, is named *.pdf and passes pdfcpu
// validation. It returns the page count.
func (e *Extractor) Validate() (int, error) {
	if !strings.EqualFold(filepath.Ext(e.path), ".pdf") {
		return 0, fmt.Errorf("%s: %w", e.path, ErrNotPDF)
	}
	if _, err := os.Stat(e.path); err != nil {
		return 0, fmt.Errorf("invoice: %w", err)
	}
	if e.conf == nil {
		e.conf = model.NewDefaultConfiguration()
	}
	if err := api.ValidateFile(e.path, e.conf); err != nil {
		return 0, fmt.Errorf("%s: %w: %v", e.path, ErrInvalidPDF, err)
	}
	pages, err := api.PageCountFile(e.path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", e.path, ErrInvalidPDF, err)
	}
	return pages, nil
}

// Text returns the invoice text, one visual row per line
func (e *Extractor) Text() (string, error) {
	if e.content != nil {
		return e.content.Text, nil
	}

	finish := e.observer.StartTiming(e.GetComponentName(), "extract_text", e.path)
	step := e.debug.StartStep(e.GetComponentName(), "extract text", filepath.Base(e.path))

	if e.validate {
		pages, err := e.Validate()
		if err != nil {
			finish(false, map[string]interface{}{"error": err.Error()})
			step(false, err.Error())
			return "", err
		}
		e.debug.LogMetric(e.GetComponentName(), "pages", pages)
	}

	content, err := textextractpdftextlib.ExtractTextWithOptions(e.path, textextractpdftextlib.Options{
		MaxPages:          e.maxPages,
		IncludeFormFields: true,
	})
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		step(false, err.Error())
		return "", fmt.Errorf("invoice: %w", err)
	}
	if strings.TrimSpace(content.Text) == "" {
		finish(false, nil)
		step(false, "empty text layer")
		return "", fmt.Errorf("%s: %w", e.path, ErrNoText)
	}
	if len(content.FailedPages) > 0 {
		e.debug.LogDetail(e.GetComponentName(), fmt.Sprintf("unreadable pages: %v", content.FailedPages))
	}

	e.content = content
	finish(true, map[string]interface{}{
		"pages":        content.PageCount,
		"pages_read":   content.PagesRead,
		"failed_pages": len(content.FailedPages),
		"lines":        content.LineCount,
	})
	step(true, fmt.Sprintf("%d lines", content.LineCount))
	return content.Text, nil
}

// Extract implements linker.SourceExtractor
func (e *Extractor) Extract() ([]linker.SourceRecord, error) {
	text, err := e.Text()
	if err != nil {
		return nil, err
	}

	names := e.parser.Names(text)
	ids := IDs(text)
	records := Pair(text, names, ids)

	e.debug.LogMetric(e.GetComponentName(), "names", len(names))
	e.debug.LogMetric(e.GetComponentName(), "ids", len(ids))
	if len(names) == len(ids) {
		e.debug.LogDetail(e.GetComponentName(), "paired by position")
	} else {
		e.debug.LogDetail(e.GetComponentName(), "paired by shared line")
	}
	for _, r := range records {
		if r.Name == "" {
			e.debug.LogDetail(e.GetComponentName(), "id without name: "+r.ID)
		}
	}

	e.observer.LogOperation(observability.StandardObservabilityData{
		Component:   e.GetComponentName(),
		Operation:   "parse",
		FilePath:    e.path,
		Success:     true,
		RecordCount: len(records),
	})
	return records, nil
}

// Preview returns at most maxChars runes of the invoice text, with an
// ellipsis when truncated.
func (e *Extractor) Preview(maxChars int) (string, error) {
	text, err := e.Text()
	if err != nil {
		return "", err
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, nil
	}
	return string(runes[:maxChars]) + "...", nil
}

// Search returns every match of pattern in the invoice text
func (e *Extractor) Search(pattern string, caseSensitive bool) ([]string, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("search pattern: %w", err)
	}
	text, err := e.Text()
	if err != nil {
		return nil, err
	}
	return re.FindAllString(text, -1), nil
}
