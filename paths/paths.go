// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package paths resolves the XDG directories ort reads and writes, split
// out from config so both config (which embeds a prompt.PromptOpts) and
// prompt (whose LastWriter needs the cache directory) can depend on it
// without importing each other.
package paths

import (
	"os"
	"path/filepath"

	"github.com/grahamking/ort-go/errs"
)

// ConfigDir returns $XDG_CONFIG_HOME, or $HOME/.config if unset.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns $XDG_CACHE_HOME/ort (or $HOME/.cache/ort), creating it
// if it doesn't already exist.
func CacheDir() (string, error) {
	root, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, "ort")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.HistoryReadFailed, "create cache dir", err)
	}
	return dir, nil
}

func xdgDir(envVar, fallback string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errs.New(errs.MissingHomeDir, "could not determine home directory")
	}
	return filepath.Join(home, fallback), nil
}
