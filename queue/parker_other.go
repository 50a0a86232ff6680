// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

//go:build !linux

package queue

import "sync"

// parker is the non-Linux fallback for the futex park/wake pair: a plain
// condition variable. Semantically equivalent (any waiter is released by
// the next wake), just without the single-word kernel primitive.
type parker struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func newParker() *parker {
	p := &parker{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *parker) wait() {
	p.mu.Lock()
	p.cond.Wait()
	p.mu.Unlock()
}

func (p *parker) wake() {
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}
