// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver prints an indented, human readable trace of the run.
// Like StandardObserver, a nil *DebugObserver is a no-op.
type DebugObserver struct {
	*StandardObserver
	indent int
}

// NewDebugObserver creates a debug observer that also emits JSON records
func NewDebugObserver(writer io.Writer) *DebugObserver {
	d := &DebugObserver{StandardObserver: NewStandardObserver(ObservabilityDebug, writer)}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step with indentation
func (d *DebugObserver) StartStep(component, step, target string) func(success bool, details string) {
	if d == nil {
		return func(bool, string) {}
	}
	start := time.Now()
	fmt.Fprintf(d.writer, "%s🔄 %s: %s (%s)\n", d.pad(), component, step, target)
	d.indent++

	return func(success bool, details string) {
		d.indent--
		ms := time.Since(start).Milliseconds()
		if success {
			fmt.Fprintf(d.writer, "%s✅ %s: %s completed (%dms) %s\n", d.pad(), component, step, ms, details)
		} else {
			fmt.Fprintf(d.writer, "%s❌ %s: %s failed (%dms) %s\n", d.pad(), component, step, ms, details)
		}
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	if d == nil {
		return
	}
	fmt.Fprintf(d.writer, "%s   → %s: %s\n", d.pad(), component, detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	if d == nil {
		return
	}
	fmt.Fprintf(d.writer, "%s   📊 %s: %s = %v\n", d.pad(), component, metric, value)
}

func (d *DebugObserver) pad() string {
	return strings.Repeat("  ", d.indent)
}
