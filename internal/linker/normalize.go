// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}]+`)
	nonWordChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// Normalize canonicalises a name for comparison: lower-case, accents folded
// to ASCII, punctuation removed and whitespace collapsed to single spaces.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.TrimSpace(strings.ToLower(text))
	s = foldAccents(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = nonWordChars.ReplaceAllString(s, "")
	// punctuation between words can leave a double space behind
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// foldAccents strips combining marks, so á→a, ñ→n, ü→u
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// CleanID keeps only the digits of an identifier
func CleanID(id string) string {
	return nonDigits.ReplaceAllString(id, "")
}
