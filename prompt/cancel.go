// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// CancelToken reports whether the user asked to interrupt the current
// run (Ctrl-C).
type CancelToken struct {
	cancelled atomic.Bool
	once      sync.Once
	stop      func()
}

// NewCancelToken installs a SIGINT handler that flips Cancelled() to
// true on the first Ctrl-C, so in-flight fetch/render loops can notice
// and unwind instead of the process dying mid-stream.
func NewCancelToken() *CancelToken {
	t := &CancelToken{}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		if _, ok := <-ch; ok {
			t.cancelled.Store(true)
		}
	}()
	t.stop = func() { signal.Stop(ch); close(ch) }
	return t
}

// Cancelled reports whether SIGINT has been received.
func (t *CancelToken) Cancelled() bool { return t.cancelled.Load() }

// Close stops listening for SIGINT. Safe to call more than once.
func (t *CancelToken) Close() {
	t.once.Do(t.stop)
}
