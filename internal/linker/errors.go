// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package linker

import "errors"

var (
	// ErrMissingCollaborator is returned when an operation needs the invoice
	// extractor or the registry and none was configured.
	ErrMissingCollaborator = errors.New("missing dependency")

	// ErrNoIdentifierColumn means the registry has no resolvable cédula field
	ErrNoIdentifierColumn = errors.New("registry has no identifier column")

	// ErrNoNameColumn means the registry has no resolvable name field
	ErrNoNameColumn = errors.New("registry has no name column")
)
