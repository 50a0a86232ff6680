// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Command ort sends a prompt to an OpenAI-compatible chat-completions
// provider and streams the reply to the terminal, over a from-scratch
// TLS 1.3 client.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/grahamking/ort-go/config"
	"github.com/grahamking/ort-go/errs"
	"github.com/grahamking/ort-go/prompt"
	"github.com/grahamking/ort-go/site"
)

type cliOpts struct {
	model         string
	system        string
	priority      string
	provider      string
	effort        string
	siteSlug      string
	showReasoning bool
	quiet         bool
	noConfigMerge bool
	continueConv  bool
	debug         bool
	jsonList      bool
}

func main() {
	var o cliOpts

	root := &cobra.Command{
		Use:   "ort [prompt]",
		Short: "Send a prompt to an OpenAI-compatible chat completions provider",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(o.debug)
			return runPrompt(o, strings.Join(args, " "))
		},
	}
	root.Flags().StringVarP(&o.model, "model", "m", "", "model id, e.g. moonshotai/kimi-k2")
	root.Flags().StringVarP(&o.system, "system", "s", "", "system prompt")
	root.Flags().StringVarP(&o.priority, "priority", "p", "", "provider sort: price, latency or throughput")
	root.Flags().StringVar(&o.provider, "provider", "", "OpenRouter provider slug to route to")
	root.Flags().StringVar(&o.effort, "effort", "", "reasoning effort: low, medium or high")
	root.Flags().StringVar(&o.siteSlug, "site", "openrouter", "provider table entry to use (openrouter, nvidia)")
	root.Flags().BoolVar(&o.showReasoning, "show-reasoning", false, "print the model's reasoning as it streams")
	root.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "omit the trailing stats line")
	root.Flags().BoolVar(&o.noConfigMerge, "no-config-merge", false, "don't merge in config file's prompt_opts")
	root.Flags().BoolVarP(&o.continueConv, "continue", "c", false, "continue the most recent conversation")
	root.Flags().BoolVar(&o.debug, "debug", false, "log network/TLS/queue internals to stderr")

	list := &cobra.Command{
		Use:   "list",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(o.debug)
			return runList(o)
		},
	}
	list.Flags().BoolVar(&o.jsonList, "json", false, "print the raw JSON model list instead of just ids")
	root.AddCommand(list)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveSite resolves both the provider table entry and the API key ort
// should use for it, checking ort.json first and the environment second.
func resolveSite(o cliOpts, cfg config.ConfigFile) (site.Site, string, error) {
	s, ok := site.Lookup(o.siteSlug)
	if !ok {
		return site.Site{}, "", errs.Newf(errs.Other, "unknown site %q", o.siteSlug)
	}
	apiKey, ok := cfg.GetAPIKey(s)
	if !ok {
		return site.Site{}, "", errs.Newf(errs.MissingAPIKey, "%s is not set and no key is configured for %q", s.APIKeyEnv, o.siteSlug)
	}
	return s, apiKey, nil
}

func buildPromptOpts(o cliOpts) (prompt.PromptOpts, error) {
	opts := prompt.PromptOpts{
		Model:       o.model,
		Provider:    o.provider,
		System:      o.system,
		MergeConfig: !o.noConfigMerge,
	}
	if o.priority != "" {
		p, err := prompt.ParsePriority(o.priority)
		if err != nil {
			return prompt.PromptOpts{}, err
		}
		opts.Priority = p
	}
	if o.effort != "" {
		e, err := prompt.ParseReasoningEffort(o.effort)
		if err != nil {
			return prompt.PromptOpts{}, err
		}
		opts.Reasoning = &prompt.ReasoningConfig{Enabled: true, Effort: e}
	}
	if o.showReasoning {
		opts.ShowReasoning = &o.showReasoning
	}
	if o.quiet {
		opts.Quiet = &o.quiet
	}
	return opts, nil
}

func runPrompt(o cliOpts, promptText string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, apiKey, err := resolveSite(o, cfg)
	if err != nil {
		return err
	}

	opts, err := buildPromptOpts(o)
	if err != nil {
		return err
	}

	cancel := prompt.NewCancelToken()
	defer cancel.Close()

	settings := cfg.EffectiveSettings()
	isPipeOutput := !term.IsTerminal(int(os.Stdout.Fd()))

	var messages []prompt.Message

	if o.continueConv {
		last, err := loadLast()
		if err != nil {
			return err
		}
		opts.Merge(last.Opts)
		messages = last.Messages
	} else if opts.MergeConfig && cfg.PromptOpts != nil {
		opts.Merge(*cfg.PromptOpts)
	}

	if promptText == "" {
		return errs.New(errs.Other, "no prompt given")
	}
	if opts.System != "" && len(messages) == 0 {
		messages = append(messages, prompt.SystemMessage(opts.System))
	}
	messages = append(messages, prompt.UserMessage(promptText))

	if opts.Model == "" {
		opts.Model = prompt.DefaultModel
	}

	return prompt.RunSingle(s, apiKey, settings.DNS, cancel, opts, messages, isPipeOutput, settings.SaveToFile, os.Stdout)
}

func loadLast() (prompt.LastData, error) {
	last, err := prompt.LoadLast()
	if err == nil {
		return last, nil
	}
	if errs.KindOf(err) == errs.HistoryMissing {
		return prompt.LoadMostRecentLast()
	}
	return prompt.LastData{}, err
}

func runList(o cliOpts) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, apiKey, err := resolveSite(o, cfg)
	if err != nil {
		return err
	}

	body, err := prompt.ListModels(s, apiKey, cfg.EffectiveSettings().DNS)
	if err != nil {
		return err
	}

	if o.jsonList {
		os.Stdout.Write(body)
		return nil
	}

	full := string(body)
	const idMarker = `"id":"`
	var slugs []string
	rest := full
	for {
		idx := strings.Index(rest, idMarker)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(idMarker):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			break
		}
		slugs = append(slugs, rest[:end])
		rest = rest[end:]
	}
	sort.Strings(slugs)
	for _, s := range slugs {
		fmt.Println(s)
	}
	return nil
}
