// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/charmbracelet/lipgloss"

	"github.com/grahamking/ort-go/errs"
	"github.com/grahamking/ort-go/queue"
)

const (
	backOne   = "\x1b[1D"
	cursorOff = "\x1b[?25l"
	cursorOn  = "\x1b[?25h"
	clearLine = "\x1b[2K"
)

var spinner = [...]byte{'|', '/', '-', '\\'}

var boldStyle = lipgloss.NewStyle().Bold(true)

// ConsoleWriter renders a Response stream as ANSI-decorated bytes: a
// "Connecting..." / "Processing..." status line, a spinner (or raw
// <think> text) while reasoning, then the content as it streams in.
type ConsoleWriter struct {
	W             io.Writer
	ShowReasoning bool
}

func (c *ConsoleWriter) Run(consumer *queue.Consumer[Response]) (Stats, error) {
	fmt.Fprintf(c.W, "%sConnecting...\r", cursorOff)

	isFirstContent := true
	spindx := 0
	var statsOut *Stats

	for {
		resp, ok := consumer.Next()
		if !ok {
			break
		}
		switch resp.Kind {
		case RespStart:
			fmt.Fprintf(c.W, "%s \r", boldStyle.Render("Processing..."))
		case RespThink:
			if c.ShowReasoning {
				switch resp.Think.Kind {
				case ThinkStart:
					fmt.Fprint(c.W, boldStyle.Render("<think>"))
				case ThinkContent:
					fmt.Fprint(c.W, resp.Think.Text)
				case ThinkStop:
					fmt.Fprintln(c.W, boldStyle.Render("</think>"))
				}
			} else {
				switch resp.Think.Kind {
				case ThinkStart:
					fmt.Fprintf(c.W, "%s  ", boldStyle.Render("Thinking..."))
				case ThinkContent:
					fmt.Fprintf(c.W, "%c%s", spinner[spindx%len(spinner)], backOne)
					spindx++
				}
			}
		case RespContent:
			if isFirstContent {
				fmt.Fprintf(c.W, "\r%s\n", clearLine)
				isFirstContent = false
			}
			fmt.Fprint(c.W, resp.Text)
		case RespStats:
			s := resp.Stats
			statsOut = &s
		case RespError:
			fmt.Fprint(c.W, cursorOn)
			return Stats{}, errs.New(errs.ResponseStreamError, resp.Err)
		}
	}

	fmt.Fprint(c.W, cursorOn)
	if statsOut == nil {
		return Stats{}, errs.New(errs.MissingUsageStats, "OpenRouter did not return usage stats")
	}
	return *statsOut, nil
}

// FileWriter renders a Response stream as plain UTF-8, for when stdout is
// piped rather than a terminal.
type FileWriter struct {
	W             io.Writer
	ShowReasoning bool
}

func (f *FileWriter) Run(consumer *queue.Consumer[Response]) (Stats, error) {
	var statsOut *Stats
	for {
		resp, ok := consumer.Next()
		if !ok {
			break
		}
		switch resp.Kind {
		case RespThink:
			if f.ShowReasoning {
				switch resp.Think.Kind {
				case ThinkStart:
					fmt.Fprint(f.W, "<think>")
				case ThinkContent:
					fmt.Fprint(f.W, resp.Think.Text)
				case ThinkStop:
					fmt.Fprint(f.W, "</think>\n\n")
				}
			}
		case RespContent:
			fmt.Fprint(f.W, resp.Text)
		case RespStats:
			s := resp.Stats
			statsOut = &s
		case RespError:
			return Stats{}, errs.New(errs.ResponseStreamError, resp.Err)
		}
	}
	if statsOut == nil {
		return Stats{}, errs.New(errs.MissingUsageStats, "OpenRouter did not return usage stats")
	}
	return *statsOut, nil
}

// CollectedWriter accumulates Content instead of writing it live, for
// multi-model mode's per-model collector.
type CollectedWriter struct {
	ShowReasoning bool

	content strings.Builder
	think   strings.Builder
}

func (c *CollectedWriter) Run(consumer *queue.Consumer[Response]) (Stats, error) {
	var statsOut *Stats
	for {
		resp, ok := consumer.Next()
		if !ok {
			break
		}
		switch resp.Kind {
		case RespThink:
			if c.ShowReasoning && resp.Think.Kind == ThinkContent {
				c.think.WriteString(resp.Think.Text)
			}
		case RespContent:
			c.content.WriteString(resp.Text)
		case RespStats:
			s := resp.Stats
			statsOut = &s
		case RespError:
			return Stats{}, errs.New(errs.ResponseStreamError, resp.Err)
		}
	}
	if statsOut == nil {
		return Stats{}, errs.New(errs.MissingUsageStats, "OpenRouter did not return usage stats")
	}
	return *statsOut, nil
}

// Content is the accumulated response text.
func (c *CollectedWriter) Content() string { return c.content.String() }

// Think is the accumulated reasoning text, if ShowReasoning was set.
func (c *CollectedWriter) Think() string { return c.think.String() }

// LastWriter appends the assistant's reply to the running conversation and
// persists the whole LastData to the pane's history file, so a later
// "--continue" run can continue it.
type LastWriter struct {
	data LastData
	file *os.File
}

// NewLastWriter creates (truncating) the current pane's history file and
// prepares to record opts/messages plus whatever content streams in.
func NewLastWriter(opts PromptOpts, messages []Message) (*LastWriter, error) {
	name, err := lastFilePath()
	if err != nil {
		return nil, err
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, errs.Wrap(errs.LastWriterError, name, err)
	}
	return &LastWriter{data: LastData{Opts: opts, Messages: messages}, file: f}, nil
}

func (l *LastWriter) Run(consumer *queue.Consumer[Response]) error {
	defer l.file.Close()

	var content strings.Builder
	for {
		resp, ok := consumer.Next()
		if !ok {
			break
		}
		switch resp.Kind {
		case RespContent:
			content.WriteString(resp.Text)
		case RespStats:
			l.data.Opts.Provider = slug(resp.Stats.Provider)
		case RespError:
			return errs.New(errs.LastWriterError, resp.Err)
		}
	}

	l.data.Messages = append(l.data.Messages, AssistantMessage(content.String()))

	b, err := marshalLastData(l.data)
	if err != nil {
		return err
	}
	if _, err := l.file.Write(b); err != nil {
		return errs.Wrap(errs.LastWriterError, "write history file", err)
	}
	return nil
}

func marshalLastData(data LastData) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, errs.Wrap(errs.LastWriterError, "marshal history", err)
	}
	return b, nil
}

// slug lowercases s and replaces every non-alphanumeric rune with '-', to
// normalize the provider name OpenRouter returns into the short form
// PromptOpts.Provider expects on a "--continue" run.
func slug(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
