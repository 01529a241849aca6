// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for texeldock configuration and saved layouts.

package config

import (
	"os"
	"path/filepath"
)

const (
	appDirName     = "texeldock"
	configFileName = "texeldock.yaml"
)

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appDirName), nil
}

// DefaultConfigPath is where Load looks when no file is given.
func DefaultConfigPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, configFileName), nil
}

func defaultLayoutDir() string {
	root, err := configRoot()
	if err != nil {
		return filepath.Join(".", appDirName, "layouts")
	}
	return filepath.Join(root, "layouts")
}

func defaultSQLitePath() string {
	return filepath.Join(defaultLayoutDir(), "layouts.db")
}
