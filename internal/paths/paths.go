// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDir = "costcenter-linker"

// GetConfigDir returns the costcenter-linker configuration directory.
// COSTCENTER_CONFIG_DIR wins; otherwise the user config dir (XDG on Unix,
// APPDATA on Windows) is used, then ~/.costcenter-linker.
func GetConfigDir() string {
	if dir := os.Getenv("COSTCENTER_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+appDir)
	}
	return "." + appDir
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetAliasesFile returns the path to the confirmed manual matches file
func GetAliasesFile() string {
	return filepath.Join(GetConfigDir(), "aliases.yaml")
}

// ResolvePath returns the absolute form of path; empty stays empty
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Clean(path))
}

// ValidatePath rejects paths the current OS cannot open
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	for i, char := range path {
		if char == 0 {
			return &PathValidationError{Path: path, Reason: "contains null byte"}
		}
		if runtime.GOOS != "windows" {
			continue
		}
		switch char {
		case '<', '>', '"', '|', '?', '*':
			return &PathValidationError{Path: path, Reason: "contains invalid character: " + string(char)}
		case ':':
			// drive letter
			if i != 1 {
				return &PathValidationError{Path: path, Reason: "contains invalid character: :"}
			}
		}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
