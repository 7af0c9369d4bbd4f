// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectColumns(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "spanish headers",
			headers: []string{"Cédula", "Nombre", "Centro de Costo"},
			want:    ColumnMapping{Name: "Nombre", ID: "Cédula", CostCenter: "Centro de Costo"},
		},
		{
			name:    "long form headers",
			headers: []string{"Código Empleado", "Nombre Completo", "Documento", "Área"},
			want:    ColumnMapping{Name: "Nombre Completo", ID: "Documento", CostCenter: "Área"},
		},
		{
			name:    "code-like header never becomes the name",
			headers: []string{"Numero Apellido", "Apellidos", "Cedula", "Area"},
			want:    ColumnMapping{Name: "Apellidos", ID: "Cedula", CostCenter: "Area"},
		},
		{
			name:    "nombre header replaces an earlier name",
			headers: []string{"Apellido", "Nombre", "CC", "Unidad"},
			want:    ColumnMapping{Name: "Nombre", ID: "CC", CostCenter: "Unidad"},
		},
		{
			name:    "apellidos header is not an id",
			headers: []string{"Apellidos y Nombres", "Cedula", "Centro de Costo"},
			want:    ColumnMapping{Name: "Apellidos y Nombres", ID: "Cedula", CostCenter: "Centro de Costo"},
		},
		{
			name:    "id and cc only as whole words",
			headers: []string{"Sección", "ID Empleado", "Nombre", "Unidad"},
			want:    ColumnMapping{Name: "Nombre", ID: "ID Empleado", CostCenter: "Unidad"},
		},
		{
			name:    "english headers",
			headers: []string{"Full Name", "DNI", "Cost Center"},
			want:    ColumnMapping{Name: "Full Name", ID: "DNI", CostCenter: "Cost Center"},
		},
		{
			name:    "positional fallback",
			headers: []string{"Doc", "Empleado", "Grupo"},
			want:    ColumnMapping{ID: "Doc", Name: "Empleado", CostCenter: "Grupo"},
		},
		{
			name:    "positional fallback replaces partial detection",
			headers: []string{"Nombre", "Cedula", "Observaciones"},
			want:    ColumnMapping{ID: "Nombre", Name: "Cedula", CostCenter: "Observaciones"},
		},
		{
			name:    "too few headers for fallback",
			headers: []string{"Foo", "Cedula"},
			want:    ColumnMapping{ID: "Cedula"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectColumns(tc.headers))
		})
	}
}

func TestColumnMapping(t *testing.T) {
	m := ColumnMapping{ID: "CC"}
	assert.False(t, m.Complete())
	assert.Equal(t, []Field{FieldName, FieldCostCenter}, m.Missing())

	m = m.overlay(ColumnMapping{Name: "Empleado", CostCenter: "Area"})
	assert.True(t, m.Complete())
	assert.Equal(t, "CC", m.ID)
	assert.Empty(t, m.Missing())
}
