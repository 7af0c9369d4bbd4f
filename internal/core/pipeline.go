// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"costcenter-linker/internal/aliases"
	"costcenter-linker/internal/config"
	"costcenter-linker/internal/formatters"
	"costcenter-linker/internal/invoice"
	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/observability"
	"costcenter-linker/internal/registry"
	"costcenter-linker/internal/report"
)

// ErrRegistryUnusable means the registry has neither a name nor a cédula column
var ErrRegistryUnusable = errors.New("registry cannot be linked against")

// RunConfig holds everything one linking run needs. A zero MinSimilarity
// selects linker.DefaultMinSimilarity and a nil ReportOptions selects
// report.DefaultOptions. Suggestions is taken as given, so 0 asks for none.
type RunConfig struct {
	InvoicePath  string
	RegistryPath string
	Sheet        string
	Columns      registry.ColumnMapping

	MinSimilarity float64
	Suggestions   int
	NameTables    *linker.NameTables
	ExcludedWords []string
	MaxPages      int

	// Aliases, when non-nil, resolves invoice names to cédulas before matching
	Aliases *aliases.Manager
	// GenerateAliases writes disabled aliases for every suggestion
	GenerateAliases bool

	// ReportMode is config.ReportMerged, config.ReportStandalone or
	// config.ReportNone; empty means none
	ReportMode string
	OutputDir  string
	// ReportOptions defaults to report.DefaultOptions
	ReportOptions *report.Options

	Observer *observability.StandardObserver
	Now      func() time.Time
}

func (c RunConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Run links the invoice against the registry: load registry, extract and
// alias invoice records, match by cédula then by name, consolidate, suggest
// and optionally write the PDF report. ctx is checked between stages.
func Run(ctx context.Context, cfg RunConfig) (*formatters.RunReport, error) {
	if cfg.MinSimilarity == 0 {
		cfg.MinSimilarity = linker.DefaultMinSimilarity
	}
	if err := config.ValidateSimilarity(cfg.MinSimilarity); err != nil {
		return nil, err
	}
	if cfg.ReportMode != "" {
		if err := config.ValidateReportMode(cfg.ReportMode); err != nil {
			return nil, err
		}
	}

	obs := cfg.Observer
	debug := obs.DebugLog()
	finish := obs.StartTiming("pipeline", "run", cfg.InvoicePath)
	fail := func(err error) (*formatters.RunReport, error) {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	step := debug.StartStep("pipeline", "load registry", cfg.RegistryPath)
	wb, err := registry.Load(cfg.RegistryPath, registry.Options{Sheet: cfg.Sheet, Columns: cfg.Columns, Observer: obs})
	if err != nil {
		step(false, err.Error())
		return fail(err)
	}
	validation := wb.Validate()
	if validation.Status == registry.StatusError {
		step(false, strings.Join(validation.Issues, "; "))
		return fail(fmt.Errorf("%s: %w: %s", cfg.RegistryPath, ErrRegistryUnusable, strings.Join(validation.Issues, "; ")))
	}
	step(true, fmt.Sprintf("%d rows, sheet %s", wb.Len(), wb.Sheet()))

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	extractor := invoice.NewExtractor(cfg.InvoicePath,
		invoice.WithParser(invoice.NewParser(cfg.ExcludedWords)),
		invoice.WithMaxPages(cfg.MaxPages),
		invoice.WithObserver(obs),
	)
	source := aliases.Wrap(extractor, cfg.Aliases, wb)

	reconstructor := linker.DefaultReconstructor()
	if cfg.NameTables != nil {
		reconstructor = linker.NewReconstructor(*cfg.NameTables)
	}
	l := linker.NewLinker(
		linker.WithSource(source),
		linker.WithRegistry(wb),
		linker.WithReconstructor(reconstructor),
	)

	step = debug.StartStep("pipeline", "match", cfg.InvoicePath)
	outcome, err := l.PerformFullMatching(cfg.MinSimilarity)
	if err != nil {
		step(false, err.Error())
		return fail(err)
	}
	step(true, fmt.Sprintf("%d/%d linked", outcome.Statistics.TotalMatched, outcome.Statistics.TotalSource))

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	suggestions, err := l.SuggestManualMatches(cfg.Suggestions)
	if err != nil {
		return fail(err)
	}

	run := &formatters.RunReport{
		RunID:       obs.RunID(),
		GeneratedAt: cfg.now(),
		Inputs: formatters.Inputs{
			Invoice:       cfg.InvoicePath,
			Registry:      cfg.RegistryPath,
			Sheet:         wb.Sheet(),
			Columns:       columnsMap(wb.Columns()),
			MinSimilarity: cfg.MinSimilarity,
		},
		Statistics:   outcome.Statistics,
		Consolidated: l.Consolidate(),
		Matched:      outcome.Matched,
		Unmatched:    outcome.Unmatched,
		Suggestions:  suggestions,
		Warnings:     validation.Issues,
	}
	if s, ok := source.(*aliases.Source); ok {
		run.AliasesApplied = s.Applied()
	}

	if cfg.GenerateAliases && cfg.Aliases != nil && len(suggestions) > 0 {
		added, err := cfg.Aliases.GenerateFromSuggestions(suggestions, "generated from run "+run.RunID)
		if err != nil {
			return fail(fmt.Errorf("generate aliases: %w", err))
		}
		debug.LogMetric("pipeline", "aliases_generated", added)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if run.ReportFile, err = writeReport(cfg, run); err != nil {
		return fail(err)
	}

	finish(true, map[string]interface{}{
		"records":   outcome.Statistics.TotalSource,
		"matched":   outcome.Statistics.TotalMatched,
		"unmatched": outcome.Statistics.TotalUnmatched,
	})
	return run, nil
}

func writeReport(cfg RunConfig, run *formatters.RunReport) (string, error) {
	opts := report.DefaultOptions()
	if cfg.ReportOptions != nil {
		opts = *cfg.ReportOptions
	}
	if opts.Now == nil {
		opts.Now = cfg.Now
	}
	w := report.NewWriter(cfg.OutputDir, report.WithOptions(opts), report.WithObserver(cfg.Observer))

	switch cfg.ReportMode {
	case config.ReportMerged:
		return w.WriteMerged(cfg.InvoicePath, run.Consolidated, run.Statistics)
	case config.ReportStandalone:
		return w.WriteStandalone(run.Consolidated, run.Statistics)
	default:
		return "", nil
	}
}

func columnsMap(m registry.ColumnMapping) map[string]string {
	out := make(map[string]string, 3)
	for field, header := range map[registry.Field]string{
		registry.FieldName:       m.Name,
		registry.FieldID:         m.ID,
		registry.FieldCostCenter: m.CostCenter,
	} {
		if header != "" {
			out[string(field)] = header
		}
	}
	return out
}
