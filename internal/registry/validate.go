// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import "fmt"

// Status is the overall verdict of Validate
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Validation describes whether a registry can be linked against
type Validation struct {
	Status       Status        `json:"status" yaml:"status"`
	Issues       []string      `json:"issues" yaml:"issues"`
	Columns      ColumnMapping `json:"columns_found" yaml:"columns_found"`
	TotalRows    int           `json:"total_rows" yaml:"total_rows"`
	EmptyNames   int           `json:"empty_names" yaml:"empty_names"`
	EmptyIDs     int           `json:"empty_ids" yaml:"empty_ids"`
	EmptyCenters int           `json:"empty_cost_centers" yaml:"empty_cost_centers"`
}

// Validate checks that the registry has something to match on. Missing
// both name and id columns is an error and a missing cost-center column a
// warning; an error is never downgraded. Empty cells are reported as issues
// without changing the status.
func (w *Workbook) Validate() Validation {
	v := Validation{
		Status:    StatusOK,
		Columns:   w.mapping,
		TotalRows: len(w.rows),
	}
	raise := func(s Status, issue string) {
		v.Issues = append(v.Issues, issue)
		if s == StatusError || v.Status == StatusOK {
			v.Status = s
		}
	}

	if !w.HasNameColumn() && !w.HasIDColumn() {
		raise(StatusError, "No se encontraron columnas de nombre ni cédula")
	}
	if _, ok := w.index[FieldCostCenter]; !ok {
		raise(StatusWarning, "No se encontró columna de centro de costo")
	}

	for _, row := range w.rows {
		if w.HasNameColumn() && w.cell(row, FieldName) == "" {
			v.EmptyNames++
		}
		if w.HasIDColumn() && w.cell(row, FieldID) == "" {
			v.EmptyIDs++
		}
		if _, ok := w.index[FieldCostCenter]; ok && w.cell(row, FieldCostCenter) == "" {
			v.EmptyCenters++
		}
	}
	if v.EmptyNames > 0 {
		v.Issues = append(v.Issues, fmt.Sprintf("%d filas con nombres vacíos", v.EmptyNames))
	}
	if v.EmptyIDs > 0 {
		v.Issues = append(v.Issues, fmt.Sprintf("%d filas con cédulas vacías", v.EmptyIDs))
	}
	if v.EmptyCenters > 0 {
		v.Issues = append(v.Issues, fmt.Sprintf("%d filas sin centro de costo", v.EmptyCenters))
	}
	return v
}
