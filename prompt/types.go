// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package prompt runs a single OpenRouter-style chat completion: it builds
// the request body, streams the server-sent-event response over our own
// TLS/HTTP stack, fans the decoded events out to one or more renderers via
// a queue.Queue, and returns the run's final Stats.
package prompt

import (
	"fmt"
	"strings"
	"time"
)

// DefaultModel is used when the caller names none.
const DefaultModel = "moonshotai/kimi-k2"

// Priority is the provider routing preference sent to OpenRouter.
type Priority int

const (
	PriorityUnset Priority = iota
	PriorityPrice
	PriorityLatency
	PriorityThroughput
)

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(s) {
	case "price":
		return PriorityPrice, nil
	case "latency":
		return PriorityLatency, nil
	case "throughput":
		return PriorityThroughput, nil
	default:
		return PriorityUnset, fmt.Errorf("unknown priority %q", s)
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityPrice:
		return "price"
	case PriorityLatency:
		return "latency"
	case PriorityThroughput:
		return "throughput"
	default:
		return ""
	}
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = PriorityUnset
		return nil
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ReasoningEffort is OpenRouter's reasoning-budget hint.
type ReasoningEffort int

const (
	EffortUnset ReasoningEffort = iota
	EffortLow
	EffortMedium
	EffortHigh
)

func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	switch strings.ToLower(s) {
	case "low":
		return EffortLow, nil
	case "medium":
		return EffortMedium, nil
	case "high":
		return EffortHigh, nil
	default:
		return EffortUnset, fmt.Errorf("unknown reasoning effort %q", s)
	}
}

func (e ReasoningEffort) String() string {
	switch e {
	case EffortLow:
		return "low"
	case EffortMedium:
		return "medium"
	case EffortHigh:
		return "high"
	default:
		return ""
	}
}

func (e ReasoningEffort) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.String() + `"`), nil
}

func (e *ReasoningEffort) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*e = EffortUnset
		return nil
	}
	v, err := ParseReasoningEffort(s)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ReasoningConfig controls whether and how hard the model reasons before
// answering.
type ReasoningConfig struct {
	Enabled bool            `json:"enabled"`
	Effort  ReasoningEffort `json:"effort,omitempty"`
	Tokens  uint32          `json:"tokens,omitempty"`
}

// ReasoningOff is the reasoning config sent when no reasoning options are
// set.
func ReasoningOff() ReasoningConfig { return ReasoningConfig{Enabled: false} }

// Role is a chat message's speaker.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystem:
		return "system"
	default:
		return ""
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *Role) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "user":
		*r = RoleUser
	case "assistant":
		*r = RoleAssistant
	case "system":
		*r = RoleSystem
	default:
		return fmt.Errorf("unknown role %q", b)
	}
	return nil
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func NewMessage(role Role, content string) Message { return Message{Role: role, Content: content} }
func UserMessage(content string) Message           { return NewMessage(RoleUser, content) }
func AssistantMessage(content string) Message      { return NewMessage(RoleAssistant, content) }
func SystemMessage(content string) Message         { return NewMessage(RoleSystem, content) }

// PromptOpts is the configuration of a single prompt run: the CLI-supplied
// prompt plus every option mergeable from the config file. Pointer fields
// distinguish "unset" from the zero value, so merging and JSON encoding
// can tell "not configured" apart from an explicit false/zero.
type PromptOpts struct {
	Prompt        string           `json:"prompt,omitempty"`
	Model         string           `json:"model,omitempty"`
	Provider      string           `json:"provider,omitempty"`
	System        string           `json:"system,omitempty"`
	Priority      Priority         `json:"priority,omitempty"`
	Reasoning     *ReasoningConfig `json:"reasoning,omitempty"`
	ShowReasoning *bool            `json:"show_reasoning,omitempty"`
	Quiet         *bool            `json:"quiet,omitempty"`
	MergeConfig   bool             `json:"merge_config"`
}

// Merge fills any field left unset in o from fallback, the way CLI flags
// are layered over the config file's default prompt options.
func (o *PromptOpts) Merge(fallback PromptOpts) {
	if o.Model == "" {
		o.Model = fallback.Model
	}
	if o.Provider == "" {
		o.Provider = fallback.Provider
	}
	if o.System == "" {
		o.System = fallback.System
	}
	if o.Priority == PriorityUnset {
		o.Priority = fallback.Priority
	}
	if o.Reasoning == nil {
		o.Reasoning = fallback.Reasoning
	}
	if o.ShowReasoning == nil {
		o.ShowReasoning = fallback.ShowReasoning
	}
	if o.Quiet == nil {
		o.Quiet = fallback.Quiet
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// LastData is the JSON envelope persisted to last-<pane>.json: the
// options used for the run and the full message history, so "-c"
// (continue) can reload and append to it.
type LastData struct {
	Opts     PromptOpts `json:"opts"`
	Messages []Message  `json:"messages"`
}

// Response is one event the fetcher emits onto the broadcast queue.
type Response struct {
	Kind  ResponseKind
	Think ThinkEvent
	Text  string
	Stats Stats
	Err   string
}

type ResponseKind int

const (
	RespStart ResponseKind = iota
	RespThink
	RespContent
	RespStats
	RespError
)

type ThinkEventKind int

const (
	ThinkStart ThinkEventKind = iota
	ThinkContent
	ThinkStop
)

// ThinkEvent describes one step of the model's visible reasoning.
type ThinkEvent struct {
	Kind ThinkEventKind
	Text string
}

// Stats summarizes a completed run.
type Stats struct {
	UsedModel           string
	Provider            string
	CostInCents         float64
	ElapsedTime         time.Duration
	TimeToFirstToken    time.Duration
	InterTokenLatencyMs int64
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"%s at %s. %.4f cents. %s (%s TTFT, %dms ITL)",
		s.UsedModel, s.Provider, s.CostInCents,
		formatDuration(s.ElapsedTime), formatDuration(s.TimeToFirstToken),
		s.InterTokenLatencyMs,
	)
}

// formatDuration renders a duration as minutes, seconds (with one decimal
// under 3s), and milliseconds, omitting zero components.
func formatDuration(d time.Duration) string {
	totalMillis := d.Milliseconds()
	minutes := totalMillis / 60000
	seconds := (totalMillis % 60000) / 1000
	millis := totalMillis % 1000

	var b strings.Builder
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm", minutes)
	}
	if seconds > 0 {
		if seconds <= 2 {
			fmt.Fprintf(&b, "%d.%ds", seconds, millis/100)
		} else {
			fmt.Fprintf(&b, "%ds", seconds)
		}
	}
	if millis > 0 && minutes == 0 && seconds == 0 {
		fmt.Fprintf(&b, "%dms", millis)
	}
	if b.Len() == 0 {
		return "0ms"
	}
	return b.String()
}
