// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grahamking/ort-go/site"
)

func TestLoadReturnsZeroValueWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cf, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cf.Settings != nil || len(cf.Keys) != 0 {
		t.Errorf("expected zero-value ConfigFile, got %+v", cf)
	}
	if s := cf.EffectiveSettings(); !s.SaveToFile || s.VerifyCerts {
		t.Errorf("EffectiveSettings() = %+v, want defaults", s)
	}
}

func TestLoadParsesExistingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	const raw = `{"settings":{"save_to_file":false,"verify_certs":true,"dns":["1.2.3.4"]},"keys":[{"name":"openrouter","value":"sk-test"}]}`
	if err := os.WriteFile(filepath.Join(dir, "ort.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cf, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cf.Settings == nil || cf.Settings.SaveToFile || !cf.Settings.VerifyCerts {
		t.Fatalf("Settings = %+v", cf.Settings)
	}
	if len(cf.Settings.DNS) != 1 || cf.Settings.DNS[0] != "1.2.3.4" {
		t.Fatalf("DNS = %+v", cf.Settings.DNS)
	}

	key, ok := cf.GetAPIKey(site.OpenRouter)
	if !ok || key != "sk-test" {
		t.Errorf("GetAPIKey = %q, %v", key, ok)
	}
}

func TestGetAPIKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	cf := ConfigFile{}
	key, ok := cf.GetAPIKey(site.OpenRouter)
	if !ok || key != "env-key" {
		t.Errorf("GetAPIKey = %q, %v, want env-key", key, ok)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "ort.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
