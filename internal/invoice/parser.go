// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"

	"costcenter-linker/internal/linker"
)

// Name character classes stop at line breaks so a label on one line is
// never glued to the name on the next.
const (
	nameStart = `[A-ZÁÉÍÓÚÑ]`
	nameBody  = `[A-Za-záéíóúñ \t]`
)

var (
	afiliadoPattern   = regexp.MustCompile(`(?i)Nombre\s+del\s+afiliado[:\s]*(` + nameStart + nameBody + `+?)(?:\n|Cédula|C\.C|Documento|$)`)
	beforeCedula      = regexp.MustCompile(`(?i)(` + nameStart + nameBody + `+?)\s+Cédula\s+(\d+)`)
	idLine            = regexp.MustCompile(`(?i)cédula|cedula|c\.c|documento`)
	wholeLineName     = regexp.MustCompile(`^(` + nameStart + nameBody + `+?)$`)
	nameBeforeIDLabel = regexp.MustCompile(`(?i)^(` + nameStart + nameBody + `+?)\s+(?:cédula|cedula|c\.c)`)

	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{7,10}\b`),
		regexp.MustCompile(`\b\d{1,3}\.?\d{3}\.?\d{3}\b`),
		regexp.MustCompile(`(?i)\bC\.?C\.?\s*:?\s*(\d{7,10})\b`),
		regexp.MustCompile(`(?i)\bCédula\s*:?\s*(\d{7,10})\b`),
		regexp.MustCompile(`(?i)\bIdentificación\s*:?\s*(\d{7,10})\b`),
	}
)

// DefaultExcludedWords are invoice labels that disqualify a candidate name
// when they occur anywhere inside it, ignoring case.
var DefaultExcludedWords = []string{
	"Factura", "Empresa", "Cliente", "Total", "Fecha", "Número",
	"Descripción", "Cantidad", "Precio", "Valor", "Descuento",
	"Impuesto", "Base", "Tarifa", "Código", "Producto", "Servicio",
	"Nombre", "Afiliado", "Del", "Cédula", "Documento",
}

const (
	minIDDigits    = 7
	maxIDDigits    = 10
	minNameRunes   = 4
	longNameRunes  = 10
	minNameWordCnt = 2
)

// Parser pulls employee names and cédulas out of invoice text
type Parser struct {
	excluded *ahocorasick.Matcher
}

// NewParser builds a parser that rejects names containing any of excluded.
// A nil list uses DefaultExcludedWords.
func NewParser(excluded []string) *Parser {
	if excluded == nil {
		excluded = DefaultExcludedWords
	}
	upper := make([]string, 0, len(excluded))
	for _, w := range excluded {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			upper = append(upper, w)
		}
	}
	p := &Parser{}
	if len(upper) > 0 {
		p.excluded = ahocorasick.NewStringMatcher(upper)
	}
	return p
}

// ParseText runs the default parser over text
func ParseText(text string) []linker.SourceRecord {
	return NewParser(nil).Parse(text)
}

// Parse extracts names and cédulas and pairs them into records
func (p *Parser) Parse(text string) []linker.SourceRecord {
	return Pair(text, p.Names(text), IDs(text))
}

// Names returns the distinct candidate names in discovery order: names
// labelled "Nombre del afiliado", names followed by "Cédula <n>", then names
// on or just above a line that carries an identity label.
func (p *Parser) Names(text string) []string {
	var candidates []string
	add := func(s string) {
		if s = strings.TrimSpace(s); utf8.RuneCountInString(s) >= minNameRunes {
			candidates = append(candidates, s)
		}
	}

	for _, m := range afiliadoPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range beforeCedula.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !idLine.MatchString(line) {
			continue
		}
		if i > 0 {
			if m := wholeLineName.FindStringSubmatch(strings.TrimSpace(lines[i-1])); m != nil {
				add(m[1])
			}
		}
		if m := nameBeforeIDLabel.FindStringSubmatch(line); m != nil {
			add(m[1])
		}
	}

	seen := make(map[string]bool)
	var names []string
	for _, c := range candidates {
		if seen[c] || p.isExcluded(c) || !looksLikeFullName(c) {
			continue
		}
		seen[c] = true
		names = append(names, c)
	}
	return names
}

func (p *Parser) isExcluded(name string) bool {
	if p.excluded == nil {
		return false
	}
	return len(p.excluded.Match([]byte(strings.ToUpper(name)))) > 0
}

func looksLikeFullName(name string) bool {
	return len(strings.Fields(name)) >= minNameWordCnt || utf8.RuneCountInString(name) > longNameRunes
}

// IDs returns the distinct 7 to 10 digit identifiers in text. Every
// pattern is applied in turn, so plain numbers come before dotted ones.
func IDs(text string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, re := range idPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if len(m) > 1 {
				raw = m[1]
			}
			id := linker.CleanID(raw)
			if len(id) < minIDDigits || len(id) > maxIDDigits || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Pair associates names with ids. Equal counts pair by position. Otherwise
// a name and an id that share a line are paired, each at most once, and the
// ids left over become records without a name; names left over are dropped.
func Pair(text string, names, ids []string) []linker.SourceRecord {
	if len(names) == len(ids) {
		out := make([]linker.SourceRecord, len(names))
		for i := range names {
			out[i] = linker.SourceRecord{Name: names[i], ID: ids[i]}
		}
		return out
	}

	var out []linker.SourceRecord
	usedName := make(map[string]bool)
	usedID := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		for _, name := range names {
			if usedName[name] || !strings.Contains(line, name) {
				continue
			}
			for _, id := range ids {
				if usedID[id] || !strings.Contains(line, id) {
					continue
				}
				out = append(out, linker.SourceRecord{Name: name, ID: id})
				usedName[name] = true
				usedID[id] = true
				break
			}
		}
	}

	for _, id := range ids {
		if !usedID[id] {
			out = append(out, linker.SourceRecord{ID: id})
		}
	}
	return out
}
