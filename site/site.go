// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package site is the small provider table the networking and config
// layers key off: each Site names the host to dial, the path to POST chat
// completions to, and the environment variable its API key is read from.
package site

// Site describes one OpenAI-compatible chat-completions provider.
type Site struct {
	Host                string
	ChatCompletionsPath string
	ModelsPath          string
	ConfigFilename      string
	APIKeyEnv           string
}

// OpenRouter is the default provider.
var OpenRouter = Site{
	Host:                "openrouter.ai",
	ChatCompletionsPath: "/api/v1/chat/completions",
	ModelsPath:          "/api/v1/models",
	ConfigFilename:      "ort.json",
	APIKeyEnv:           "OPENROUTER_API_KEY",
}

// NVIDIA is a second OpenAI-compatible provider, proving the table is
// actually a table rather than a single hardcoded host.
var NVIDIA = Site{
	Host:                "integrate.api.nvidia.com",
	ChatCompletionsPath: "/v1/chat/completions",
	ModelsPath:          "/v1/models",
	ConfigFilename:      "nrt.json",
	APIKeyEnv:           "NVIDIA_API_KEY",
}

var bySlug = map[string]Site{
	"openrouter": OpenRouter,
	"nvidia":     NVIDIA,
}

// Lookup returns the Site registered under slug, and whether it was found.
func Lookup(slug string) (Site, bool) {
	s, ok := bySlug[slug]
	return s, ok
}

// Default is the provider used when the CLI names none explicitly.
func Default() Site { return OpenRouter }
