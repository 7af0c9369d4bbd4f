// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"costcenter-linker/internal/linker"
)

// searchFloor is the similarity a fallback hit must exceed
const searchFloor = 0.3

// Hit is one registry row returned by Search
type Hit struct {
	Record linker.RegistryRecord `json:"record"`
	Score  float64               `json:"score"`
}

// Search finds registry names for an operator query. Names containing the
// query letters in order (ignoring case and accents) come first, closest
// first; when none do, rows are ranked by name similarity instead.
func (w *Workbook) Search(query string, limit int) []Hit {
	if query == "" || !w.HasNameColumn() || limit == 0 {
		return nil
	}
	all := w.GetAll()

	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}

	var hits []Hit
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		for _, rk := range ranks {
			rec := all[rk.OriginalIndex]
			hits = append(hits, Hit{Record: rec, Score: linker.Similarity(query, rec.Name)})
		}
	} else {
		for _, rec := range all {
			if s := linker.Similarity(query, rec.Name); s > searchFloor {
				hits = append(hits, Hit{Record: rec, Score: s})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	}

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
