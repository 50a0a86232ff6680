// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	"strings"
	"testing"

	"github.com/grahamking/ort-go/queue"
)

func feed(q *queue.Queue[Response], responses []Response) {
	for _, r := range responses {
		q.Add(r)
	}
	q.Close()
}

func TestFileWriterCollectsContentAndStats(t *testing.T) {
	q := queue.New[Response](16)
	feed(q, []Response{
		{Kind: RespStart},
		{Kind: RespContent, Text: "Hello"},
		{Kind: RespContent, Text: ", world"},
		{Kind: RespStats, Stats: Stats{UsedModel: "m"}},
	})

	var out strings.Builder
	fw := &FileWriter{W: &out}
	stats, err := fw.Run(q.Consumer())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "Hello, world" {
		t.Errorf("output = %q", out.String())
	}
	if stats.UsedModel != "m" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFileWriterOmitsThinkUnlessShowReasoning(t *testing.T) {
	q := queue.New[Response](16)
	feed(q, []Response{
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkStart}},
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkContent, Text: "pondering"}},
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkStop}},
		{Kind: RespContent, Text: "answer"},
		{Kind: RespStats},
	})

	var out strings.Builder
	fw := &FileWriter{W: &out}
	if _, err := fw.Run(q.Consumer()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "answer" {
		t.Errorf("expected reasoning to be suppressed, got %q", out.String())
	}
}

func TestFileWriterIncludesThinkWhenShowReasoning(t *testing.T) {
	q := queue.New[Response](16)
	feed(q, []Response{
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkStart}},
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkContent, Text: "pondering"}},
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkStop}},
		{Kind: RespContent, Text: "answer"},
		{Kind: RespStats},
	})

	var out strings.Builder
	fw := &FileWriter{W: &out, ShowReasoning: true}
	if _, err := fw.Run(q.Consumer()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "<think>pondering</think>") {
		t.Errorf("expected wrapped reasoning, got %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "answer") {
		t.Errorf("expected content after reasoning, got %q", out.String())
	}
}

func TestFileWriterReturnsErrorOnErrorResponse(t *testing.T) {
	q := queue.New[Response](16)
	feed(q, []Response{{Kind: RespError, Err: "boom"}})

	var out strings.Builder
	fw := &FileWriter{W: &out}
	_, err := fw.Run(q.Consumer())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected error containing boom, got %v", err)
	}
}

func TestFileWriterMissingStatsIsAnError(t *testing.T) {
	q := queue.New[Response](16)
	feed(q, []Response{{Kind: RespContent, Text: "x"}})

	var out strings.Builder
	fw := &FileWriter{W: &out}
	if _, err := fw.Run(q.Consumer()); err == nil {
		t.Fatalf("expected error when stream ends without a Stats response")
	}
}

func TestCollectedWriterAccumulatesWithoutWritingLive(t *testing.T) {
	q := queue.New[Response](16)
	feed(q, []Response{
		{Kind: RespThink, Think: ThinkEvent{Kind: ThinkContent, Text: "thinking"}},
		{Kind: RespContent, Text: "part1"},
		{Kind: RespContent, Text: "part2"},
		{Kind: RespStats, Stats: Stats{UsedModel: "m2"}},
	})

	cw := &CollectedWriter{ShowReasoning: true}
	stats, err := cw.Run(q.Consumer())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cw.Content() != "part1part2" {
		t.Errorf("Content() = %q", cw.Content())
	}
	if cw.Think() != "thinking" {
		t.Errorf("Think() = %q", cw.Think())
	}
	if stats.UsedModel != "m2" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSlugLowercasesAndReplacesNonAlnum(t *testing.T) {
	cases := map[string]string{
		"Google AI Studio": "google-ai-studio",
		"groq":             "groq",
		"A/B":              "a-b",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
