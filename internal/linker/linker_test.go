// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{ err error }

func (f failingSource) Extract() ([]SourceRecord, error) { return nil, f.err }

type columnlessRegistry struct {
	MemoryRegistry
	hasID, hasName bool
}

func (c columnlessRegistry) HasIDColumn() bool   { return c.hasID }
func (c columnlessRegistry) HasNameColumn() bool { return c.hasName }

func TestLinker_MatchedByIDScenario(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "12345678", Name: "TRUJILLOPEREZMARIACLARA", CostCenter: "VENTAS"},
	}
	l := NewLinker(
		WithSource(StaticSource{{ID: "12345678"}}),
		WithRegistry(registry),
	)

	outcome, err := l.PerformFullMatching(DefaultMinSimilarity)
	require.NoError(t, err)
	require.Len(t, outcome.Matched, 1)
	assert.Equal(t, MethodID, outcome.Matched[0].Method)
	assert.Equal(t, 1.0, outcome.Matched[0].Confidence)

	rows := l.Consolidate()
	require.Len(t, rows, 1)
	assert.Equal(t, "Maria Clara Trujillo Perez", rows[0].Name)
	assert.Equal(t, "12345678", rows[0].ID)
	assert.Equal(t, "VENTAS", rows[0].CostCenter)
	assert.Equal(t, "Encontrado (cedula)", rows[0].StatusLabel)
	assert.Equal(t, "1.00", rows[0].ConfidenceLabel)
	assert.Equal(t, ReconstructLiteral, rows[0].Reconstruction)
}

func TestLinker_MatchedByNameScenario(t *testing.T) {
	l := NewLinker(
		WithSource(StaticSource{{Name: "Juan Perez"}}),
		WithRegistry(MemoryRegistry{{ID: "80111222", Name: "Juan Pérez", CostCenter: "ADMIN"}}),
	)

	outcome, err := l.PerformFullMatching(0.7)
	require.NoError(t, err)
	require.Len(t, outcome.Matched, 1)

	m := outcome.Matched[0]
	assert.Equal(t, MethodName, m.Method)
	assert.GreaterOrEqual(t, m.Confidence, 0.8)
	assert.Equal(t, Similarity("Juan Perez", "Juan Pérez"), m.Confidence)
	assert.Equal(t, "80111222", m.ID)
	assert.Equal(t, "Juan Perez", m.SourceName)

	rows := l.Consolidate()
	require.Len(t, rows, 1)
	assert.Equal(t, "Juan Pérez", rows[0].Name)
	assert.Equal(t, "Encontrado (nombre)", rows[0].StatusLabel)
}

func TestLinker_EmptyRecordIsUnmatched(t *testing.T) {
	l := NewLinker(
		WithSource(StaticSource{{}}),
		WithRegistry(MemoryRegistry{{ID: "1", Name: "Ana", CostCenter: "X"}}),
	)

	outcome, err := l.PerformFullMatching(DefaultMinSimilarity)
	require.NoError(t, err)
	assert.Empty(t, outcome.Matched)
	assert.Equal(t, []SourceRecord{{}}, outcome.Unmatched)
	assert.Equal(t, 1, outcome.Statistics.TotalUnmatched)
	assert.Empty(t, l.Consolidate())
}

func TestLinker_MatchByID(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "12345678", Name: "FIRST", CostCenter: "A"},
		{ID: "12.345.678", Name: "SECOND", CostCenter: "B"},
		{ID: "99999999", Name: "OTHER", CostCenter: "C"},
	}
	l := NewLinker(WithRegistry(registry))

	records := []SourceRecord{
		{Name: "Dotted", ID: "12.345.678"},
		{Name: "No id"},
		{Name: "Unknown", ID: "55555555"},
		{ID: "C.C. 99999999"},
	}
	matched, remaining, err := l.MatchByID(records)
	require.NoError(t, err)

	require.Len(t, matched, 2)
	assert.Equal(t, "FIRST", matched[0].RegistryName, "first registry hit wins")
	assert.Equal(t, "12.345.678", matched[0].ID, "id is reported as it appeared in the invoice")
	assert.Equal(t, "A", matched[0].CostCenter)
	assert.Equal(t, "OTHER", matched[1].RegistryName)
	for _, m := range matched {
		assert.Equal(t, 1.0, m.Confidence)
		assert.Equal(t, MethodID, m.Method)
	}
	assert.Equal(t, []SourceRecord{{Name: "No id"}, {Name: "Unknown", ID: "55555555"}}, remaining)
	assert.Equal(t, StateIDMatching, l.State())
}

func TestLinker_MatchByID_ExactlyOnePerRecord(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "1020304050", Name: "A"},
		{ID: "1020304050", Name: "B"},
		{ID: "30405060", Name: "C"},
	}
	l := NewLinker(WithRegistry(registry))

	for _, r := range registry {
		matched, remaining, err := l.MatchByID([]SourceRecord{{ID: r.ID}})
		require.NoError(t, err)
		assert.Len(t, matched, 1)
		assert.Empty(t, remaining)
		assert.Equal(t, 1.0, matched[0].Confidence)
	}
}

func TestLinker_MatchByName(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "1", Name: "Maria Garcia Lopez", CostCenter: "VENTAS"},
		{ID: "2", Name: "", CostCenter: "VACIO"},
		{ID: "3", Name: "Pedro Gomez", CostCenter: "BODEGA"},
	}

	cases := []struct {
		name      string
		threshold float64
		matched   bool
	}{
		{"accepted at exactly the threshold", 0.8, true},
		{"rejected above the score", 0.85, false},
		{"accepted below the score", 0.5, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLinker(WithRegistry(registry))
			matched, unmatched, err := l.MatchByName([]SourceRecord{{Name: "Maria Garcia", ID: "777"}}, tc.threshold)
			require.NoError(t, err)
			if !tc.matched {
				assert.Empty(t, matched)
				assert.Len(t, unmatched, 1)
				return
			}
			require.Len(t, matched, 1)
			assert.Empty(t, unmatched)
			assert.Equal(t, "1", matched[0].ID, "id comes from the registry")
			assert.InDelta(t, 0.8, matched[0].Confidence, 1e-9)
			assert.Equal(t, "VENTAS", matched[0].CostCenter)
		})
	}
}

func TestLinker_MatchByName_FirstSeenWinsTies(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "10", Name: "Carlos Ruiz", CostCenter: "FIRST"},
		{ID: "20", Name: "CARLOS RUIZ", CostCenter: "SECOND"},
	}
	l := NewLinker(WithRegistry(registry))

	matched, _, err := l.MatchByName([]SourceRecord{{Name: "carlos ruiz"}}, 0.7)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "10", matched[0].ID)
	assert.Equal(t, "FIRST", matched[0].CostCenter)
}

func TestLinker_MatchByName_NoNamesNeedsNoRegistry(t *testing.T) {
	l := NewLinker()
	matched, unmatched, err := l.MatchByName([]SourceRecord{{ID: "123"}, {}}, 0.7)
	require.NoError(t, err)
	assert.Empty(t, matched)
	assert.Len(t, unmatched, 2)
	assert.Equal(t, StateNameMatching, l.State())
}

func TestLinker_MatchByID_NoIDsNeedsNoRegistry(t *testing.T) {
	l := NewLinker()
	matched, remaining, err := l.MatchByID([]SourceRecord{{Name: "Ana Lucia"}, {}})
	require.NoError(t, err)
	assert.Empty(t, matched)
	assert.Len(t, remaining, 2)
	assert.Equal(t, StateIDMatching, l.State())

	// a registry without an identifier column is tolerated too
	l = NewLinker(WithRegistry(columnlessRegistry{hasName: true}))
	_, remaining, err = l.MatchByID([]SourceRecord{{Name: "Ana Lucia"}})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestLinker_Statistics(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "11111111", Name: "Ana Lucia Hernandez Gomez", CostCenter: "A"},
		{ID: "22222222", Name: "Luis Miguel Torres Vargas", CostCenter: "B"},
		{ID: "33333333", Name: "Sandra Patricia Jimenez Rojas", CostCenter: "C"},
	}
	source := StaticSource{
		{Name: "Ana Hernandez", ID: "11111111"},
		{Name: "Luis Miguel Torres Vargas"},
		{Name: "Nadie Conocido", ID: "00000000"},
		{},
	}
	l := NewLinker(WithSource(source), WithRegistry(registry))

	outcome, err := l.PerformFullMatching(0.7)
	require.NoError(t, err)

	st := outcome.Statistics
	assert.Equal(t, 4, st.TotalSource)
	assert.Equal(t, 1, st.MatchedByID)
	assert.Equal(t, 1, st.MatchedByName)
	assert.Equal(t, st.MatchedByID+st.MatchedByName, st.TotalMatched)
	assert.Equal(t, st.TotalSource, st.TotalMatched+st.TotalUnmatched)
	assert.InDelta(t, 0.5, st.MatchRate, 1e-9)
	assert.Equal(t, StateDone, l.State())
	assert.Equal(t, st, l.Statistics())

	// id matches come first, then name matches
	assert.Equal(t, MethodID, outcome.Matched[0].Method)
	assert.Equal(t, MethodName, outcome.Matched[1].Method)
}

func TestLinker_EmptySource(t *testing.T) {
	l := NewLinker(WithSource(StaticSource{}), WithRegistry(MemoryRegistry{}))
	outcome, err := l.PerformFullMatching(0.7)
	require.NoError(t, err)
	assert.Equal(t, Statistics{}, outcome.Statistics)
	assert.Empty(t, l.Consolidate())
}

func TestLinker_Errors(t *testing.T) {
	extractErr := errors.New("broken pdf")

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "full matching without source",
			run: func() error {
				_, err := NewLinker(WithRegistry(MemoryRegistry{})).PerformFullMatching(0.7)
				return err
			},
			want: ErrMissingCollaborator,
		},
		{
			name: "full matching without registry",
			run: func() error {
				_, err := NewLinker(WithSource(StaticSource{{ID: "1"}})).PerformFullMatching(0.7)
				return err
			},
			want: ErrMissingCollaborator,
		},
		{
			name: "extract failure is wrapped",
			run: func() error {
				_, err := NewLinker(WithSource(failingSource{extractErr}), WithRegistry(MemoryRegistry{})).PerformFullMatching(0.7)
				return err
			},
			want: extractErr,
		},
		{
			name: "match by id without registry",
			run: func() error {
				_, _, err := NewLinker().MatchByID([]SourceRecord{{ID: "1"}})
				return err
			},
			want: ErrMissingCollaborator,
		},
		{
			name: "match by name without registry",
			run: func() error {
				_, _, err := NewLinker().MatchByName([]SourceRecord{{Name: "Ana"}}, 0.7)
				return err
			},
			want: ErrMissingCollaborator,
		},
		{
			name: "registry without identifier column",
			run: func() error {
				_, _, err := NewLinker(WithRegistry(columnlessRegistry{hasName: true})).MatchByID([]SourceRecord{{ID: "1"}})
				return err
			},
			want: ErrNoIdentifierColumn,
		},
		{
			name: "registry without name column",
			run: func() error {
				l := NewLinker(WithRegistry(columnlessRegistry{hasID: true}))
				_, _, err := l.MatchByName([]SourceRecord{{Name: "Ana"}}, 0.7)
				return err
			},
			want: ErrNoNameColumn,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestLinker_FailedRunLeavesIdle(t *testing.T) {
	l := NewLinker(WithSource(failingSource{errors.New("boom")}), WithRegistry(MemoryRegistry{}))
	_, err := l.PerformFullMatching(0.7)
	require.Error(t, err)
	assert.Equal(t, StateIdle, l.State())
	assert.Empty(t, l.Matched())
}

func TestLinker_SuggestManualMatches(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "1", Name: "Carla Ruiz", CostCenter: "A"},
		{ID: "2", Name: "Carlos Ruiz", CostCenter: "B"},
		{ID: "3", Name: "Carlos Ruiz Mendoza", CostCenter: "C"},
		{ID: "4", Name: "", CostCenter: "D"},
	}
	source := StaticSource{
		{Name: "Carlos Ruis"},
		{Name: "Carlos Ruis", ID: "404"},
		{ID: "505"},
	}
	l := NewLinker(WithSource(source), WithRegistry(registry))

	_, err := l.PerformFullMatching(0.99)
	require.NoError(t, err)
	before := l.Unmatched()

	groups, err := l.SuggestManualMatches(2)
	require.NoError(t, err)
	require.Len(t, groups, 1, "a repeated source name is suggested once")
	assert.Equal(t, "Carlos Ruis", groups[0].SourceName)

	candidates := groups[0].Candidates
	require.Len(t, candidates, 2)
	assert.Equal(t, "Carlos Ruiz", candidates[0].RegistryName)
	assert.Equal(t, "B", candidates[0].CostCenter)
	for i, c := range candidates {
		assert.Greater(t, c.Score, 0.3)
		if i > 0 {
			assert.GreaterOrEqual(t, candidates[i-1].Score, c.Score)
		}
	}

	assert.Equal(t, before, l.Unmatched())
	assert.Equal(t, StateDone, l.State())
}

func TestLinker_SuggestManualMatches_Nothing(t *testing.T) {
	l := NewLinker(WithSource(StaticSource{{Name: "Xy"}}), WithRegistry(MemoryRegistry{{ID: "1", Name: "Bob"}}))
	_, err := l.PerformFullMatching(0.7)
	require.NoError(t, err)

	groups, err := l.SuggestManualMatches(3)
	require.NoError(t, err)
	assert.Empty(t, groups)

	groups, err = l.SuggestManualMatches(0)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestLinker_ResetAndExport(t *testing.T) {
	registry := MemoryRegistry{
		{ID: "12345678", Name: "TRUJILLOPEREZMARIACLARA", CostCenter: "VENTAS"},
		{ID: "87654321", Name: "Carlos Ruiz", CostCenter: "B"},
	}
	l := NewLinker(
		WithSource(StaticSource{{ID: "12345678"}, {Name: "Carlos Ruis"}}),
		WithRegistry(registry),
	)
	_, err := l.PerformFullMatching(0.95)
	require.NoError(t, err)

	export, err := l.ExportResults()
	require.NoError(t, err)
	assert.Len(t, export.Consolidated, export.Statistics.TotalMatched)
	assert.Equal(t, l.Matched(), export.Matched)
	assert.Equal(t, []SourceRecord{{Name: "Carlos Ruis"}}, export.Unmatched)
	require.Len(t, export.Suggestions, 1)
	assert.Equal(t, "87654321", export.Suggestions[0].Candidates[0].ID)

	l.Reset()
	assert.Equal(t, StateIdle, l.State())
	assert.Empty(t, l.Matched())
	assert.Empty(t, l.Unmatched())
	assert.Equal(t, Statistics{}, l.Statistics())
}

func TestConsolidate(t *testing.T) {
	results := []MatchResult{
		{RegistryName: "GOMEZDIAZJUANCARLOS", ID: "1", CostCenter: "A", Method: MethodID, Confidence: 1},
		{RegistryName: "", ID: "2", CostCenter: "B", Method: MethodName, Confidence: 0.876},
	}
	rows := Consolidate(results)
	require.Len(t, rows, 2)

	assert.Equal(t, "Juan Carlos Gomez Diaz", rows[0].Name)
	assert.Equal(t, "Encontrado (cedula)", rows[0].StatusLabel)

	assert.Equal(t, "", rows[1].Name)
	assert.Equal(t, "2", rows[1].ID)
	assert.Equal(t, "0.88", rows[1].ConfidenceLabel)
	assert.Equal(t, "Encontrado (nombre)", rows[1].StatusLabel)
}
