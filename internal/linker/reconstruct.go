// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReconstructionMethod records which rule produced a reconstructed name
type ReconstructionMethod string

const (
	ReconstructSpaced      ReconstructionMethod = "spaced"
	ReconstructLiteral     ReconstructionMethod = "literal"
	ReconstructDictionary  ReconstructionMethod = "dictionary"
	ReconstructMidpoint    ReconstructionMethod = "midpoint"
	ReconstructCapitalized ReconstructionMethod = "capitalized"
)

// Reconstruction is a presentable name plus how much to trust it.
// Confidence is 1 for spaced and literal names, the share of characters
// covered by dictionary hits for dictionary splits, and a fixed low value
// for the fallbacks.
type Reconstruction struct {
	Name       string               `json:"name"`
	Method     ReconstructionMethod `json:"method"`
	Confidence float64              `json:"confidence"`
}

const (
	midpointConfidence    = 0.3
	capitalizedConfidence = 0.1
	midpointMinLength     = 8
	midpointWindow        = 3
)

// Reconstructor turns registry names such as "TRUJILLOPEREZMARIACLARA" into
// "Maria Clara Trujillo Perez". It is immutable and safe for concurrent use.
type Reconstructor struct {
	surnames   []string
	givenNames []string
	overrides  map[string]string
}

// NewReconstructor builds a reconstructor over tables. Dictionaries are
// scanned longest-first; equal lengths keep their table order.
func NewReconstructor(tables NameTables) *Reconstructor {
	tables = NameTables{}.Merge(tables)
	return &Reconstructor{
		surnames:   longestFirst(tables.Surnames),
		givenNames: longestFirst(tables.GivenNames),
		overrides:  tables.Overrides,
	}
}

// DefaultReconstructor uses the built-in Colombian name dictionaries
func DefaultReconstructor() *Reconstructor {
	return NewReconstructor(DefaultNameTables())
}

func longestFirst(words []string) []string {
	out := append([]string(nil), words...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

// Format returns only the reconstructed name
func (r *Reconstructor) Format(name string) string {
	return r.Reconstruct(name).Name
}

// Reconstruct produces a "Given Names Surnames" string. It never fails; for
// names it cannot segment it falls back to progressively cruder guesses.
func (r *Reconstructor) Reconstruct(name string) Reconstruction {
	if name == "" {
		return Reconstruction{}
	}

	if strings.Contains(name, " ") {
		return Reconstruction{Name: titleWords(name), Method: ReconstructSpaced, Confidence: 1}
	}

	name = strings.TrimSpace(strings.ToUpper(name))
	if name == "" {
		return Reconstruction{}
	}

	if literal, ok := r.overrides[name]; ok {
		return Reconstruction{Name: literal, Method: ReconstructLiteral, Confidence: 1}
	}

	if rec, ok := r.splitByDictionary(name); ok {
		return rec
	}

	if rec, ok := splitAtMidpoint(name); ok {
		return rec
	}

	return Reconstruction{Name: capitalize(name), Method: ReconstructCapitalized, Confidence: capitalizedConfidence}
}

type hit struct {
	pos  int
	word string
}

func (r *Reconstructor) splitByDictionary(name string) (Reconstruction, bool) {
	remaining := name
	covered := make([]bool, len(name))

	var surnames []hit
	for _, s := range r.surnames {
		pos := strings.Index(remaining, s)
		if pos < 0 {
			continue
		}
		surnames = append(surnames, hit{pos, s})
		markCovered(covered, pos, len(s))
		// blank with bytes so later positions still line up with name
		remaining = remaining[:pos] + strings.Repeat(" ", len(s)) + remaining[pos+len(s):]
	}

	var given []hit
	for _, g := range r.givenNames {
		if !strings.Contains(remaining, g) {
			continue
		}
		pos := strings.Index(name, g)
		given = append(given, hit{pos, g})
		markCovered(covered, pos, len(g))
	}

	if len(surnames) == 0 || len(given) == 0 {
		return Reconstruction{}, false
	}

	byPos := func(h []hit) {
		sort.SliceStable(h, func(i, j int) bool {
			if h[i].pos != h[j].pos {
				return h[i].pos < h[j].pos
			}
			return h[i].word < h[j].word
		})
	}
	byPos(given)
	byPos(surnames)

	words := make([]string, 0, len(given)+len(surnames))
	for _, h := range given {
		words = append(words, h.word)
	}
	for _, h := range surnames {
		words = append(words, h.word)
	}

	n := 0
	for _, c := range covered {
		if c {
			n++
		}
	}
	return Reconstruction{
		Name:       titleWords(strings.Join(words, " ")),
		Method:     ReconstructDictionary,
		Confidence: float64(n) / float64(len(name)),
	}, true
}

func markCovered(covered []bool, pos, n int) {
	for i := pos; i < pos+n && i < len(covered); i++ {
		covered[i] = true
	}
}

// splitAtMidpoint cuts near the middle, after the first vowel that is
// followed by a consonant, and treats the second half as the given names.
func splitAtMidpoint(name string) (Reconstruction, bool) {
	runes := []rune(name)
	if len(runes) <= midpointMinLength {
		return Reconstruction{}, false
	}

	mid := len(runes) / 2
	cut := mid
	lo := max(0, mid-midpointWindow)
	hi := min(len(runes), mid+midpointWindow+1)
	for i := lo; i < hi; i++ {
		if i < len(runes)-1 && isVowel(runes[i]) && !isVowel(runes[i+1]) {
			cut = i + 1
			break
		}
	}

	part1, part2 := string(runes[:cut]), string(runes[cut:])
	if part1 == "" || part2 == "" {
		return Reconstruction{}, false
	}
	return Reconstruction{
		Name:       titleWords(part2 + " " + part1),
		Method:     ReconstructMidpoint,
		Confidence: midpointConfidence,
	}, true
}

func isVowel(r rune) bool {
	return strings.ContainsRune("AEIOU", r)
}

// titleWords capitalizes every whitespace-separated word
func titleWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, " ")
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
