// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import "fmt"

// StatusLabel is the human status shown for a match
func StatusLabel(m Method) string {
	return fmt.Sprintf("Encontrado (%s)", m)
}

// ConfidenceLabel formats a confidence with two decimals
func ConfidenceLabel(c float64) string {
	return fmt.Sprintf("%.2f", c)
}

// Consolidate projects match results into report rows using the built-in
// name dictionaries.
func Consolidate(results []MatchResult) []ConsolidatedRecord {
	return ConsolidateWith(DefaultReconstructor(), results)
}

// ConsolidateWith projects match results into report rows, in input order.
// The row name is always reconstructed from the registry name.
func ConsolidateWith(r *Reconstructor, results []MatchResult) []ConsolidatedRecord {
	if r == nil {
		r = DefaultReconstructor()
	}
	out := make([]ConsolidatedRecord, 0, len(results))
	for _, m := range results {
		row := ConsolidatedRecord{
			ID:              m.ID,
			CostCenter:      m.CostCenter,
			StatusLabel:     StatusLabel(m.Method),
			ConfidenceLabel: ConfidenceLabel(m.Confidence),
			Method:          m.Method,
		}
		if m.RegistryName != "" {
			rec := r.Reconstruct(m.RegistryName)
			row.Name = rec.Name
			row.Reconstruction = rec.Method
		}
		out = append(out, row)
	}
	return out
}
