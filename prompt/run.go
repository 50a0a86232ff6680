// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	"fmt"
	"io"
	"sync"

	"github.com/grahamking/ort-go/queue"
	"github.com/grahamking/ort-go/site"
)

// queueCapacity is the broadcast queue's ring size: large enough that a
// slow renderer never laps the fetcher at normal token rates.
const queueCapacity = 256

// RunSingle drives one model end to end: it starts the fetcher goroutine,
// fans its Response stream out to a console/file writer and, if
// saveToFile is set, a LastWriter, waits for both to finish, and prints
// the trailing "Stats:" line unless quiet. Since queue.Queue is natively
// multi-consumer, each writer just opens its own Consumer on the same
// queue rather than fanning out through separate channels.
func RunSingle(s site.Site, apiKey string, dns []string, cancel *CancelToken, opts PromptOpts, messages []Message, isPipeOutput, saveToFile bool, w io.Writer) error {
	showReasoning := boolOr(opts.ShowReasoning, false)
	quiet := boolOr(opts.Quiet, false)

	q := queue.New[Response](queueCapacity)
	go Fetch(s, apiKey, dns, cancel, opts, messages, q)

	renderConsumer := q.Consumer()
	var lastConsumer *queue.Consumer[Response]
	if saveToFile {
		lastConsumer = q.Consumer()
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var stats Stats
		var err error
		if isPipeOutput {
			fw := &FileWriter{W: w, ShowReasoning: showReasoning}
			stats, err = fw.Run(renderConsumer)
		} else {
			cw := &ConsoleWriter{W: w, ShowReasoning: showReasoning}
			stats, err = cw.Run(renderConsumer)
		}
		if err != nil {
			errs <- err
			return
		}
		fmt.Fprintln(w)
		if !quiet {
			fmt.Fprintf(w, "\nStats: %s\n", stats)
		}
	}()

	if saveToFile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lw, err := NewLastWriter(opts, messages)
			if err != nil {
				errs <- err
				return
			}
			if err := lw.Run(lastConsumer); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ModelResult is one model's outcome in a RunMulti fan-out.
type ModelResult struct {
	Model   string
	Content string
	Think   string
	Stats   Stats
	Err     error
}

// RunMulti runs the same prompt against several models concurrently,
// collecting each one's output instead of streaming it live.
func RunMulti(s site.Site, apiKey string, dns []string, cancel *CancelToken, models []string, opts PromptOpts, messages []Message) []ModelResult {
	results := make([]ModelResult, len(models))
	var wg sync.WaitGroup

	for i, model := range models {
		wg.Add(1)
		go func(i int, model string) {
			defer wg.Done()

			modelOpts := opts
			modelOpts.Model = model

			q := queue.New[Response](queueCapacity)
			go Fetch(s, apiKey, dns, cancel, modelOpts, messages, q)

			cw := &CollectedWriter{ShowReasoning: boolOr(opts.ShowReasoning, false)}
			stats, err := cw.Run(q.Consumer())
			results[i] = ModelResult{
				Model:   model,
				Content: cw.Content(),
				Think:   cw.Think(),
				Stats:   stats,
				Err:     err,
			}
		}(i, model)
	}

	wg.Wait()
	return results
}
