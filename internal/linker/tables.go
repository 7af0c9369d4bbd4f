// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import "strings"

// NameTables is the data a Reconstructor segments concatenated names with.
// Overrides map an exact upper-case concatenated name to its presentation form
// and are consulted before any heuristic.
type NameTables struct {
	Surnames   []string          `yaml:"surnames"`
	GivenNames []string          `yaml:"given_names"`
	Overrides  map[string]string `yaml:"overrides"`
}

var defaultSurnames = []string{
	"RODRIGUEZ", "MARTINEZ", "GARCIA", "LOPEZ", "GONZALEZ", "HERNANDEZ",
	"PEREZ", "SANCHEZ", "RAMIREZ", "TORRES", "FLORES", "RIVERA",
	"GOMEZ", "DIAZ", "MORALES", "CASTRO", "ORTIZ", "RUBIO", "MENDOZA",
	"VARGAS", "JIMENEZ", "HERRERA", "GUTIERREZ", "RUIZ", "VALENCIA",
	"CARDENAS", "ROJAS", "SILVA", "OSPINA", "MARIN", "CASTAÑO",
	"RESTREPO", "SUAREZ", "AGUILAR", "MOLINA", "CONTRERAS", "GUERRERO",
	"TRUJILLO", "CORREA", "MEDINA", "MORENO", "VEGA", "ROMERO",
}

var defaultGivenNames = []string{
	"MARIA", "JUAN", "CARLOS", "ANA", "LUIS", "CARMEN", "JOSE",
	"JORGE", "FRANCISCO", "ANTONIO", "MANUEL", "RAFAEL", "MIGUEL",
	"DANIEL", "DAVID", "PEDRO", "ALEJANDRO", "FERNANDO", "SERGIO",
	"DIEGO", "ANDREA", "CLAUDIA", "SANDRA", "PATRICIA", "MONICA",
	"GLORIA", "MARTHA", "ROSA", "ADRIANA", "BEATRIZ", "CLARA",
	"ELENA", "ISABEL", "LAURA", "LUCIA", "NANCY", "OLGA", "PILAR",
	"MARCELA", "AMPARO", "ESPERANZA", "LUZ", "BLANCA", "EDUARDO",
}

var defaultOverrides = map[string]string{
	"TRUJILLOPEREZMARIACLARA":      "Maria Clara Trujillo Perez",
	"GARCIALOPEZMARIAFERNANDA":     "Maria Fernanda Garcia Lopez",
	"RODRIGUEZSILVACARLOSYEDUARDO": "Carlos Eduardo Rodriguez Silva",
	"HERNANDEZGOMEZANALUCIA":       "Ana Lucia Hernandez Gomez",
	"TORRESVARGASLUISMIGUEL":       "Luis Miguel Torres Vargas",
	"MORALESCASTROCARMENELENA":     "Carmen Elena Morales Castro",
	"RUIZMENDOZADIEGOALEJANDRO":    "Diego Alejandro Ruiz Mendoza",
	"JIMENEZROJASSANDRAPATRICIA":   "Sandra Patricia Jimenez Rojas",
	"CASTILLOHERRERAFERNANDOJOSE":  "Fernando Jose Castillo Herrera",
	"RAMIREZORTEGACLAUDIAISABEL":   "Claudia Isabel Ramirez Ortega",
}

// DefaultNameTables returns a fresh copy of the built-in dictionaries
func DefaultNameTables() NameTables {
	t := NameTables{
		Surnames:   append([]string(nil), defaultSurnames...),
		GivenNames: append([]string(nil), defaultGivenNames...),
		Overrides:  make(map[string]string, len(defaultOverrides)),
	}
	for k, v := range defaultOverrides {
		t.Overrides[k] = v
	}
	return t
}

// Merge returns a copy of t extended with extra. Entries are upper-cased and
// trimmed; duplicates and blanks are dropped; extra overrides win.
func (t NameTables) Merge(extra NameTables) NameTables {
	out := NameTables{
		Surnames:   mergeWords(t.Surnames, extra.Surnames),
		GivenNames: mergeWords(t.GivenNames, extra.GivenNames),
		Overrides:  make(map[string]string, len(t.Overrides)+len(extra.Overrides)),
	}
	for _, src := range []map[string]string{t.Overrides, extra.Overrides} {
		for k, v := range src {
			key := strings.ToUpper(strings.TrimSpace(k))
			if key == "" || strings.TrimSpace(v) == "" {
				continue
			}
			out.Overrides[key] = strings.TrimSpace(v)
		}
	}
	return out
}

func mergeWords(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, w := range list {
			w = strings.ToUpper(strings.TrimSpace(w))
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
