// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aliases

import "costcenter-linker/internal/linker"

// Source applies the alias set to every extraction of an inner source
type Source struct {
	inner    linker.SourceExtractor
	manager  *Manager
	registry linker.Registry
	applied  int
}

// Wrap returns src with aliases applied against reg. A nil manager returns
// src unchanged.
func Wrap(src linker.SourceExtractor, m *Manager, reg linker.Registry) linker.SourceExtractor {
	if m == nil {
		return src
	}
	return &Source{inner: src, manager: m, registry: reg}
}

// Extract implements linker.SourceExtractor
func (s *Source) Extract() ([]linker.SourceRecord, error) {
	records, err := s.inner.Extract()
	if err != nil {
		return nil, err
	}
	records, s.applied = s.manager.Apply(records, s.registry)
	return records, nil
}

// Applied is the number of records the last Extract resolved by alias
func (s *Source) Applied() int { return s.applied }
