// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package config reads ort's on-disk settings file: per-site API keys,
// networking/history preferences, and default prompt options to merge
// into every run unless the caller passes "--no-config-merge".
package config

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/grahamking/ort-go/errs"
	"github.com/grahamking/ort-go/paths"
	"github.com/grahamking/ort-go/prompt"
	"github.com/grahamking/ort-go/site"
)

const defaultSaveToFile = true
const defaultVerifyCerts = false

// ApiKey is one named credential, keyed by site slug ("openrouter",
// "nvidia", ...) since site is a table of providers rather than a single
// implicit one.
type ApiKey struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Settings are the small set of networking/history toggles that apply
// across every run.
type Settings struct {
	SaveToFile  bool     `json:"save_to_file"`
	VerifyCerts bool     `json:"verify_certs"`
	DNS         []string `json:"dns,omitempty"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{SaveToFile: defaultSaveToFile, VerifyCerts: defaultVerifyCerts}
}

// ConfigFile is the parsed contents of $XDG_CONFIG_HOME/ort.json.
type ConfigFile struct {
	Settings   *Settings          `json:"settings,omitempty"`
	Keys       []ApiKey           `json:"keys,omitempty"`
	PromptOpts *prompt.PromptOpts `json:"prompt_opts,omitempty"`
}

// GetAPIKey returns the stored key for s, preferring the config file over
// the environment, and whether one was found.
func (c ConfigFile) GetAPIKey(s site.Site) (string, bool) {
	for _, k := range c.Keys {
		if k.Name == siteSlug(s) {
			return k.Value, true
		}
	}
	if v := os.Getenv(s.APIKeyEnv); v != "" {
		return v, true
	}
	return "", false
}

// EffectiveSettings returns Settings, falling back to DefaultSettings when
// the file didn't set any.
func (c ConfigFile) EffectiveSettings() Settings {
	if c.Settings != nil {
		return *c.Settings
	}
	return DefaultSettings()
}

func siteSlug(s site.Site) string {
	switch s.Host {
	case site.OpenRouter.Host:
		return "openrouter"
	case site.NVIDIA.Host:
		return "nvidia"
	default:
		return s.Host
	}
}

// Load reads and parses $XDG_CONFIG_HOME/ort.json, returning a zero-value
// ConfigFile (not an error) when the file doesn't exist yet.
func Load() (ConfigFile, error) {
	dir, err := paths.ConfigDir()
	if err != nil {
		return ConfigFile{}, err
	}
	name := filepath.Join(dir, "ort.json")

	b, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return ConfigFile{}, nil
		}
		return ConfigFile{}, errs.Wrap(errs.ConfigReadFailed, name, err)
	}

	var cf ConfigFile
	if err := json.Unmarshal(b, &cf); err != nil {
		return ConfigFile{}, errs.Wrap(errs.ConfigParseFailed, name, err)
	}
	return cf, nil
}
