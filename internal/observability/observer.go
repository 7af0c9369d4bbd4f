// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StandardObserver records timed operations of one linking run.
// A nil *StandardObserver is valid and records nothing.
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	runID         string
	mu            sync.Mutex
	DebugObserver *DebugObserver // set when running with --debug
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer with a fresh run id
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
		runID:  uuid.New().String(),
	}
}

// RunID identifies every record written by this observer
func (o *StandardObserver) RunID() string {
	if o == nil {
		return ""
	}
	return o.runID
}

// Level returns the configured verbosity
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// DebugLog returns the step tracer, or nil when not running with --debug
func (o *StandardObserver) DebugLog() *DebugObserver {
	if o == nil {
		return nil
	}
	return o.DebugObserver
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	if o == nil || o.level == ObservabilityOff {
		return func(bool, map[string]interface{}) {}
	}
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation writes one record: a JSON line in debug mode, a short
// summary line in metrics mode.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff || o.writer == nil {
		return
	}
	data.RunID = o.runID

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.level {
	case ObservabilityDebug:
		_ = json.NewEncoder(o.writer).Encode(data)
	case ObservabilityMetrics:
		status := "ok"
		if !data.Success {
			status = "failed"
		}
		fmt.Fprintf(o.writer, "[%s] %s.%s %s %dms\n", o.runID[:8], data.Component, data.Operation, status, data.DurationMs)
	}
}

// StandardObservabilityData is one timed operation
type StandardObservabilityData struct {
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation"`
	RunID       string                 `json:"run_id"`
	FilePath    string                 `json:"file_path,omitempty"`
	DurationMs  int64                  `json:"duration_ms,omitempty"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	RecordCount int                    `json:"record_count,omitempty"`
	MatchCount  int                    `json:"match_count,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
