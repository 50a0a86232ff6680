// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	json "github.com/goccy/go-json"

	"github.com/grahamking/ort-go/errs"
)

type providerBlock struct {
	Sort  string   `json:"sort,omitempty"`
	Order []string `json:"order,omitempty"`
}

type usageBlock struct {
	Include bool `json:"include"`
}

type chatCompletionsRequest struct {
	Stream    bool            `json:"stream"`
	Usage     usageBlock      `json:"usage"`
	Model     string          `json:"model"`
	Provider  *providerBlock  `json:"provider,omitempty"`
	Reasoning ReasoningConfig `json:"reasoning"`
	Messages  []Message       `json:"messages"`
}

// BuildBody builds the streaming chat-completions request body from opts
// and the already-assembled message list (system/user prompt are expected
// to already be in messages).
func BuildBody(opts PromptOpts, messages []Message) ([]byte, error) {
	req := chatCompletionsRequest{
		Stream:   true,
		Usage:    usageBlock{Include: true},
		Model:    opts.Model,
		Messages: messages,
	}

	if opts.Priority != PriorityUnset || opts.Provider != "" {
		req.Provider = &providerBlock{}
		if opts.Priority != PriorityUnset {
			req.Provider.Sort = opts.Priority.String()
		}
		if opts.Provider != "" {
			req.Provider.Order = []string{opts.Provider}
		}
	}

	if opts.Reasoning != nil {
		req.Reasoning = *opts.Reasoning
	} else {
		req.Reasoning = ReasoningOff()
	}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Wrap(errs.Other, "marshal chat completions request", err)
	}
	return b, nil
}
