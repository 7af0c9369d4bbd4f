// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"regexp"
	"strings"
)

// Field is one of the three registry fields the linker needs
type Field string

const (
	FieldName       Field = "nombre"
	FieldID         Field = "cedula"
	FieldCostCenter Field = "centro_costo"
)

// detectionOrder is also the precedence between fields for one header
var detectionOrder = []Field{FieldName, FieldID, FieldCostCenter}

var headerPatterns = map[Field][]*regexp.Regexp{
	FieldName: compileAll(
		`^nombre$`, `^name$`, `nombre.*completo`, `full.*name`,
		`apellido`, `surname`,
	),
	FieldID: compileAll(
		`cedula`, `cédula`, `\bcc\b`, `c\.c`, `identificacion`,
		`identificación`, `documento`, `\bid\b`, `dni`,
	),
	FieldCostCenter: compileAll(
		`centro.*costo`, `centro.*de.*costo`, `cost.*center`,
		`centro`, `costo`, `area`, `área`, `departamento`,
		`division`, `división`, `unidad`, `centrocostos`,
	),
}

// codeLikeHeader marks headers such as "Código empleado" that mention a name
// pattern but hold codes
var codeLikeHeader = regexp.MustCompile(`codigo|code|\bid\b|num`)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// ColumnMapping names the header chosen for each field; empty means unresolved
type ColumnMapping struct {
	Name       string `json:"nombre" yaml:"name"`
	ID         string `json:"cedula" yaml:"id"`
	CostCenter string `json:"centro_costo" yaml:"cost_center"`
}

// Complete reports whether every field resolved
func (m ColumnMapping) Complete() bool {
	return m.Name != "" && m.ID != "" && m.CostCenter != ""
}

// Missing lists the unresolved fields in detection order
func (m ColumnMapping) Missing() []Field {
	var out []Field
	for _, f := range detectionOrder {
		if m.get(f) == "" {
			out = append(out, f)
		}
	}
	return out
}

func (m ColumnMapping) get(f Field) string {
	switch f {
	case FieldName:
		return m.Name
	case FieldID:
		return m.ID
	default:
		return m.CostCenter
	}
}

func (m *ColumnMapping) set(f Field, header string) {
	switch f {
	case FieldName:
		m.Name = header
	case FieldID:
		m.ID = header
	default:
		m.CostCenter = header
	}
}

// overlay returns m with every non-empty field of o applied on top
func (m ColumnMapping) overlay(o ColumnMapping) ColumnMapping {
	for _, f := range detectionOrder {
		if v := o.get(f); v != "" {
			m.set(f, v)
		}
	}
	return m
}

// DetectColumns sniffs the field headers. Headers are visited left to
// right and each is tried against name, id and cost-center patterns in that
// order. The first header matching a field wins, except that a name header
// containing "nombre" replaces an earlier choice. Headers that look like
// codes never become the name column. When a field is still unresolved and
// there are at least three headers, the first three columns are taken as
// id, name and cost center.
func DetectColumns(headers []string) ColumnMapping {
	var m ColumnMapping
	for _, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		for _, field := range detectionOrder {
			for _, re := range headerPatterns[field] {
				if !re.MatchString(lower) {
					continue
				}
				if field == FieldName {
					if codeLikeHeader.MatchString(lower) {
						continue
					}
					if strings.Contains(lower, "nombre") {
						m.Name = header
						break
					}
				}
				if m.get(field) == "" {
					m.set(field, header)
				}
				break
			}
		}
	}

	if !m.Complete() && len(headers) >= 3 {
		m = ColumnMapping{ID: headers[0], Name: headers[1], CostCenter: headers[2]}
	}
	return m
}
