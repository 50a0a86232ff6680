// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package site

import "testing"

func TestLookupKnownSlugs(t *testing.T) {
	if s, ok := Lookup("openrouter"); !ok || s.Host != "openrouter.ai" {
		t.Errorf("Lookup(openrouter) = %+v, %v", s, ok)
	}
	if s, ok := Lookup("nvidia"); !ok || s.Host != "integrate.api.nvidia.com" {
		t.Errorf("Lookup(nvidia) = %+v, %v", s, ok)
	}
}

func TestLookupUnknownSlugFails(t *testing.T) {
	if _, ok := Lookup("anthropic"); ok {
		t.Errorf("expected unknown slug to fail lookup")
	}
}

func TestDefaultIsOpenRouter(t *testing.T) {
	if Default() != OpenRouter {
		t.Errorf("Default() = %+v, want OpenRouter", Default())
	}
}
