// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in banners and PDF metadata
const Name = "costcenter-linker"

// Build information, overridden with -ldflags "-X costcenter-linker/internal/version.Version=..."
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"

	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info returns a one-line build description
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s)",
		Name, Version, GitCommit, BuildDate, GoVersion, Platform)
}

// Short returns "costcenter-linker <version>"
func Short() string {
	return Name + " " + Version
}

// Full returns every build field, keyed for JSON output
func Full() map[string]string {
	return map[string]string{
		"name":      Name,
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
	}
}
