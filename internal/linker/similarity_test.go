// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"Juan Perez", "MARIA", "x", "José María Pérez"} {
		assert.Equal(t, 1.0, Similarity(s, s), s)
	}
}

func TestSimilarity_Empty(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"empty left", "", "Juan Perez"},
		{"empty right", "Juan Perez", ""},
		{"both empty", "", ""},
		{"punctuation only", "!!!", "Juan"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Similarity(tc.a, tc.b))
		})
	}
}

func TestSimilarity_Components(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"accent only difference", "Juan Pérez", "Juan Perez", 1.0},
		{"reordered tokens", "Perez Juan", "Juan Perez", 1.0},
		{"containment", "Maria Garcia", "Maria Garcia Lopez", 0.8},
		{"case only difference", "CARLOS RUIZ", "carlos ruiz", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Similarity(tc.a, tc.b), 1e-9)
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"juan perez", "maria garcia"},
		{"Carlos Ruis", "Carla Ruiz"},
		{"Ana Lucia Hernandez", "Lucia Hernandez"},
		{"abcd", "bcda"},
		{"TRUJILLO PEREZ", "PEREZ TRUJILLO MARIA"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%q / %q", p[0], p[1])
		assert.Equal(t, SequenceRatio(p[0], p[1]), SequenceRatio(p[1], p[0]), "%q / %q", p[0], p[1])
		assert.Equal(t, TokenJaccard(p[0], p[1]), TokenJaccard(p[1], p[0]), "%q / %q", p[0], p[1])
	}
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"juan perez", "maria garcia"},
		{"a", "b"},
		{"Pedro Gomez", "Carlos Ruiz"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.Less(t, s, 1.0)
	}
}

func TestSequenceRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"identical", "abc", "abc", 1.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"rotated", "abcd", "bcda", 0.75},
		{"one typo", "carlos ruis", "carlos ruiz", 20.0 / 22.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, SequenceRatio(tc.a, tc.b), 1e-9)
		})
	}
}

func TestTokenJaccard(t *testing.T) {
	assert.Equal(t, 0.0, TokenJaccard("", "juan"))
	assert.Equal(t, 1.0, TokenJaccard("juan perez", "perez juan"))
	assert.InDelta(t, 2.0/3.0, TokenJaccard("maria garcia", "maria garcia lopez"), 1e-9)
	assert.InDelta(t, 1.0/3.0, TokenJaccard("juan perez", "juan gomez"), 1e-9)
}
