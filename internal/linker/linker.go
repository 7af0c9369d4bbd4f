// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import (
	"fmt"
	"sort"
)

// State is the position of a Linker in its run
type State int

const (
	StateIdle State = iota
	StateIDMatching
	StateNameMatching
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIDMatching:
		return "id-matching"
	case StateNameMatching:
		return "name-matching"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	// DefaultMinSimilarity is the name-match threshold used when none is configured
	DefaultMinSimilarity = 0.7
	// DefaultSuggestions is the number of manual-match candidates kept per name
	DefaultSuggestions = 3
	// suggestionFloor is the score a candidate must exceed to be suggested
	suggestionFloor = 0.3
)

// Linker matches invoice records against the registry in two passes: exact
// cédula first, then fuzzy name similarity over what is left.
//
// A Linker owns its matched and unmatched partitions for one run and is not
// safe for concurrent use. Registry scan order is the tie-break: the first
// record reaching the best score wins, and the first FindByID hit is used.
type Linker struct {
	source        SourceExtractor
	registry      Registry
	reconstructor *Reconstructor

	state     State
	matched   []MatchResult
	unmatched []SourceRecord
	stats     Statistics
}

// Option configures a Linker
type Option func(*Linker)

// WithSource sets the invoice-side collaborator
func WithSource(src SourceExtractor) Option {
	return func(l *Linker) { l.source = src }
}

// WithRegistry sets the registry collaborator
func WithRegistry(reg Registry) Option {
	return func(l *Linker) { l.registry = reg }
}

// WithReconstructor sets the name reconstructor used for consolidation
func WithReconstructor(r *Reconstructor) Option {
	return func(l *Linker) { l.reconstructor = r }
}

// NewLinker creates a linker. Collaborators are optional until an operation
// needs them.
func NewLinker(opts ...Option) *Linker {
	l := &Linker{}
	for _, opt := range opts {
		opt(l)
	}
	if l.reconstructor == nil {
		l.reconstructor = DefaultReconstructor()
	}
	return l
}

// State returns where the linker is in its run
func (l *Linker) State() State { return l.state }

// Matched returns the matched partition of the last run
func (l *Linker) Matched() []MatchResult {
	return append([]MatchResult(nil), l.matched...)
}

// Unmatched returns the unmatched partition of the last run
func (l *Linker) Unmatched() []SourceRecord {
	return append([]SourceRecord(nil), l.unmatched...)
}

// Statistics returns the counts of the last run
func (l *Linker) Statistics() Statistics { return l.stats }

// Reset drops the partitions and returns the linker to StateIdle
func (l *Linker) Reset() {
	l.state = StateIdle
	l.matched = nil
	l.unmatched = nil
	l.stats = Statistics{}
}

// MatchByID links every record whose cédula, reduced to digits, equals a
// registry cédula. Records with no ID or no hit are returned as remaining.
// The registry is only consulted when some record carries an ID.
func (l *Linker) MatchByID(records []SourceRecord) ([]MatchResult, []SourceRecord, error) {
	if hasID(records) {
		if l.registry == nil {
			return nil, nil, fmt.Errorf("match by id: registry: %w", ErrMissingCollaborator)
		}
		if cr, ok := l.registry.(ColumnReporter); ok && !cr.HasIDColumn() {
			return nil, nil, fmt.Errorf("match by id: %w", ErrNoIdentifierColumn)
		}
	}
	l.state = StateIDMatching

	var matched []MatchResult
	var remaining []SourceRecord
	for _, rec := range records {
		if rec.ID == "" {
			remaining = append(remaining, rec)
			continue
		}
		hits := l.registry.FindByID(rec.ID)
		if len(hits) == 0 {
			remaining = append(remaining, rec)
			continue
		}
		first := hits[0]
		matched = append(matched, MatchResult{
			SourceName:   rec.Name,
			RegistryName: first.Name,
			ID:           rec.ID,
			CostCenter:   first.CostCenter,
			Method:       MethodID,
			Confidence:   1.0,
		})
	}
	return matched, remaining, nil
}

// MatchByName links each named record to the registry record with the
// strictly highest similarity, provided it reaches minSimilarity.
func (l *Linker) MatchByName(records []SourceRecord, minSimilarity float64) ([]MatchResult, []SourceRecord, error) {
	var registry []RegistryRecord
	if hasNamed(records) {
		if l.registry == nil {
			return nil, nil, fmt.Errorf("match by name: registry: %w", ErrMissingCollaborator)
		}
		if cr, ok := l.registry.(ColumnReporter); ok && !cr.HasNameColumn() {
			return nil, nil, fmt.Errorf("match by name: %w", ErrNoNameColumn)
		}
		registry = l.registry.GetAll()
	}
	l.state = StateNameMatching

	var matched []MatchResult
	var unmatched []SourceRecord
	for _, rec := range records {
		if rec.Name == "" {
			unmatched = append(unmatched, rec)
			continue
		}

		best, score := bestCandidate(rec.Name, registry)
		if best == nil || score < minSimilarity {
			unmatched = append(unmatched, rec)
			continue
		}
		matched = append(matched, MatchResult{
			SourceName:   rec.Name,
			RegistryName: best.Name,
			ID:           best.ID,
			CostCenter:   best.CostCenter,
			Method:       MethodName,
			Confidence:   score,
		})
	}
	return matched, unmatched, nil
}

func hasID(records []SourceRecord) bool {
	for _, r := range records {
		if r.ID != "" {
			return true
		}
	}
	return false
}

func hasNamed(records []SourceRecord) bool {
	for _, r := range records {
		if r.Name != "" {
			return true
		}
	}
	return false
}

// bestCandidate scans in registry order and only replaces the leader on a
// strictly greater score, so the earliest record wins a tie.
func bestCandidate(name string, registry []RegistryRecord) (*RegistryRecord, float64) {
	var best *RegistryRecord
	bestScore := 0.0
	for i := range registry {
		if registry[i].Name == "" {
			continue
		}
		if s := Similarity(name, registry[i].Name); s > bestScore {
			best, bestScore = &registry[i], s
		}
	}
	return best, bestScore
}

// PerformFullMatching extracts the invoice records and runs both passes
func (l *Linker) PerformFullMatching(minSimilarity float64) (*Outcome, error) {
	if l.source == nil {
		return nil, fmt.Errorf("full matching: source: %w", ErrMissingCollaborator)
	}
	l.Reset()

	records, err := l.source.Extract()
	if err != nil {
		l.state = StateIdle
		return nil, fmt.Errorf("full matching: extract: %w", err)
	}

	byID, remaining, err := l.MatchByID(records)
	if err != nil {
		l.state = StateIdle
		return nil, err
	}
	byName, unmatched, err := l.MatchByName(remaining, minSimilarity)
	if err != nil {
		l.state = StateIdle
		return nil, err
	}

	l.matched = append(append([]MatchResult(nil), byID...), byName...)
	l.unmatched = unmatched
	l.stats = Statistics{
		TotalSource:    len(records),
		MatchedByID:    len(byID),
		MatchedByName:  len(byName),
		TotalMatched:   len(l.matched),
		TotalUnmatched: len(unmatched),
	}
	if len(records) > 0 {
		l.stats.MatchRate = float64(len(l.matched)) / float64(len(records))
	}
	l.state = StateDone

	return &Outcome{
		Matched:    l.Matched(),
		Unmatched:  l.Unmatched(),
		Statistics: l.stats,
	}, nil
}

// SuggestManualMatches proposes up to topN registry candidates scoring above
// 0.3 for every unmatched record that has a name. Groups follow the unmatched
// order; a repeated source name is reported once. State is not modified.
func (l *Linker) SuggestManualMatches(topN int) ([]ManualSuggestions, error) {
	if topN <= 0 || !hasNamed(l.unmatched) {
		return nil, nil
	}
	if l.registry == nil {
		return nil, fmt.Errorf("suggest matches: registry: %w", ErrMissingCollaborator)
	}
	registry := l.registry.GetAll()

	var out []ManualSuggestions
	seen := make(map[string]bool)
	for _, rec := range l.unmatched {
		if rec.Name == "" || seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true

		var candidates []Suggestion
		for _, r := range registry {
			if r.Name == "" {
				continue
			}
			if s := Similarity(rec.Name, r.Name); s > suggestionFloor {
				candidates = append(candidates, Suggestion{
					RegistryName: r.Name,
					ID:           r.ID,
					CostCenter:   r.CostCenter,
					Score:        s,
				})
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
		if len(candidates) > topN {
			candidates = candidates[:topN]
		}
		out = append(out, ManualSuggestions{SourceName: rec.Name, Candidates: candidates})
	}
	return out, nil
}

// Consolidate projects the matched partition of the last run
func (l *Linker) Consolidate() []ConsolidatedRecord {
	return ConsolidateWith(l.reconstructor, l.matched)
}

// ExportResults bundles the last run, including DefaultSuggestions
// candidates per unmatched name
func (l *Linker) ExportResults() (*Export, error) {
	suggestions, err := l.SuggestManualMatches(DefaultSuggestions)
	if err != nil {
		return nil, err
	}
	return &Export{
		Consolidated: l.Consolidate(),
		Matched:      l.Matched(),
		Unmatched:    l.Unmatched(),
		Suggestions:  suggestions,
		Statistics:   l.stats,
	}, nil
}
