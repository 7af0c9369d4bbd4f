// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import "strings"

// containmentScore is awarded when one normalized name contains the other
const containmentScore = 0.8

// Similarity scores two names in [0,1]. It normalizes both sides and takes
// the best of a sequence ratio, a token-set Jaccard index and a flat
// containment score, so typos, reordered tokens and truncated names each
// have a signal that can carry the pair.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	best := SequenceRatio(na, nb)
	if j := TokenJaccard(na, nb); j > best {
		best = j
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		if containmentScore > best {
			best = containmentScore
		}
	}
	return best
}

// SequenceRatio is the Ratcliff/Obershelp ratio 2*M/T, where M is the number
// of runes in matching blocks and T the combined length. The longest-block
// search prefers the earliest block, which makes the raw measure order
// dependent; both orientations are evaluated and the larger one returned.
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := matchingRunes(ra, rb)
	if r := matchingRunes(rb, ra); r > m {
		m = r
	}
	return 2 * float64(m) / float64(total)
}

type span struct{ alo, ahi, blo, bhi int }

func matchingRunes(a, b []rune) int {
	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest common block of a[alo:ahi] and b[blo:bhi].
// Among equal lengths the block starting earliest in a, then in b, wins.
func longestMatch(a, b []rune, s span) (besti, bestj, bestk int) {
	besti, bestj = s.alo, s.blo
	width := s.bhi - s.blo
	prev := make([]int, width+1)
	cur := make([]int, width+1)
	for i := s.alo; i < s.ahi; i++ {
		for j := s.blo; j < s.bhi; j++ {
			if a[i] != b[j] {
				cur[j-s.blo+1] = 0
				continue
			}
			k := prev[j-s.blo] + 1
			cur[j-s.blo+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}

// TokenJaccard is |A∩B| / |A∪B| over whitespace-separated tokens
func TokenJaccard(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		set[f] = struct{}{}
	}
	return set
}
