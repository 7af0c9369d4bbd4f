// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/observability"
)

const (
	// DefaultPrefix names merged output files
	DefaultPrefix = "facturacion_completa"

	tempPrefix      = "temp_consolidation"
	timestampLayout = "20060102_150405"
)

// Writer places rendered reports in an output directory
type Writer struct {
	dir      string
	prefix   string
	opts     Options
	conf     *model.Configuration
	observer *observability.StandardObserver
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithPrefix changes the merged file name prefix
func WithPrefix(prefix string) WriterOption {
	return func(w *Writer) {
		if prefix != "" {
			w.prefix = prefix
		}
	}
}

// WithOptions sets the rendering options
func WithOptions(o Options) WriterOption {
	return func(w *Writer) { w.opts = o }
}

// WithObserver times rendering and merging
func WithObserver(o *observability.StandardObserver) WriterOption {
	return func(w *Writer) { w.observer = o }
}

// NewWriter creates a writer targeting dir
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:    dir,
		prefix: DefaultPrefix,
		opts:   DefaultOptions(),
		conf:   model.NewDefaultConfiguration(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// GetComponentName implements observability.Observable
func (w *Writer) GetComponentName() string { return "report" }

func (w *Writer) stamp() string {
	return w.opts.now().Format(timestampLayout)
}

// WriteStandalone renders the report alone into path
func WriteStandalone(path string, records []linker.ConsolidatedRecord, stats linker.Statistics, opts Options) error {
	if opts.Title == "" {
		opts.Title = TitleStandalone
	}
	var buf bytes.Buffer
	if err := Render(&buf, records, stats, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteStandalone renders the report into the writer's directory and
// returns the file written
func (w *Writer) WriteStandalone(records []linker.ConsolidatedRecord, stats linker.Statistics) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("output directory: %w", err)
	}
	opts := w.opts
	opts.Title = TitleStandalone
	out := filepath.Join(w.dir, fmt.Sprintf("reporte_centros_costo_%s.pdf", w.stamp()))

	finish := w.observer.StartTiming(w.GetComponentName(), "write_standalone", out)
	if err := WriteStandalone(out, records, stats, opts); err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return "", err
	}
	finish(true, map[string]interface{}{"records": len(records)})
	return out, nil
}

// WriteMerged renders the report to a temporary file, appends it to the
// pages of original and returns the merged file. The temporary file is
// removed whether or not the merge succeeds.
func (w *Writer) WriteMerged(original string, records []linker.ConsolidatedRecord, stats linker.Statistics) (string, error) {
	if _, err := os.Stat(original); err != nil {
		return "", fmt.Errorf("original invoice: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("output directory: %w", err)
	}

	ts := w.stamp()
	temp := filepath.Join(w.dir, fmt.Sprintf("%s_%s.pdf", tempPrefix, ts))
	out := filepath.Join(w.dir, fmt.Sprintf("%s_%s.pdf", w.prefix, ts))
	defer os.Remove(temp)

	finish := w.observer.StartTiming(w.GetComponentName(), "write_merged", out)

	opts := w.opts
	if opts.Title == "" {
		opts.Title = TitleMerged
	}
	var buf bytes.Buffer
	if err := Render(&buf, records, stats, opts); err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return "", err
	}
	if err := os.WriteFile(temp, buf.Bytes(), 0o644); err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("write report: %w", err)
	}

	if err := Merge(out, w.conf, original, temp); err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return "", err
	}

	finish(true, map[string]interface{}{"records": len(records)})
	return out, nil
}

// Merge concatenates the pages of inputs into out
func Merge(out string, conf *model.Configuration, inputs ...string) error {
	if conf == nil {
		conf = model.NewDefaultConfiguration()
	}
	if err := api.MergeCreateFile(inputs, out, false, conf); err != nil {
		os.Remove(out)
		return fmt.Errorf("merge PDFs: %w", err)
	}
	return nil
}
