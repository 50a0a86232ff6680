// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package paths

import (
	"path/filepath"
	"testing"
)

func TestConfigDirUsesEnvVarWhenSet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config-test")
	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != "/tmp/xdg-config-test" {
		t.Errorf("ConfigDir() = %q", got)
	}
}

func TestCacheDirCreatesOrtSubdir(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", root)

	got, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	want := filepath.Join(root, "ort")
	if got != want {
		t.Errorf("CacheDir() = %q, want %q", got, want)
	}
}
