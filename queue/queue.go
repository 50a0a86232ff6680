// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package queue is a multi-producer, multi-consumer broadcast queue built
// around a circular buffer. Every consumer sees every item; a consumer that
// falls behind the producer by more than the buffer's capacity misses the
// items it fell behind by. Consumers that find no new item park on a futex
// (Linux) or a condition variable (other platforms) instead of spinning.
//
// The ring length is a runtime field set at construction rather than a
// type parameter, since Go generics have no clean way to parametrize an
// array length by a type parameter.
package queue

import (
	"runtime"
	"sync/atomic"
)

// Queue is a broadcast ring buffer of capacity N. The zero value is not
// usable; construct one with New.
type Queue[T any] struct {
	data []T

	// insertPos is the next empty slot a producer will claim.
	insertPos atomic.Uint32
	// readEnd is one past the last slot visible to consumers.
	readEnd atomic.Uint32
	closed  atomic.Bool

	p *parker
}

// Consumer reads a Queue from its own private cursor. Each Consumer created
// from the same Queue sees every item added after it was created.
type Consumer[T any] struct {
	queue   *Queue[T]
	current uint32
}

// New creates a Queue with a ring buffer of the given capacity.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		data: make([]T, capacity),
		p:    newParker(),
	}
}

// Consumer returns a new Consumer positioned at the Queue's current end, so
// it will only see items added after this call.
func (q *Queue[T]) Consumer() *Consumer[T] {
	return &Consumer[T]{queue: q, current: q.readEnd.Load()}
}

// Add appends value to the queue and wakes any parked consumers. Safe to
// call concurrently from multiple goroutines.
//
// The two-phase commit: a producer first claims a slot by advancing
// insertPos, then writes its value into that slot, then spins until
// readEnd catches up to the slot it claimed before advancing readEnd past
// it. This guarantees a consumer never observes a claimed-but-unwritten
// slot, and that items become visible in the order their slots were
// claimed, even when multiple producers race.
func (q *Queue[T]) Add(value T) {
	insertAt := q.insertPos.Add(1) - 1
	q.data[insertAt%uint32(len(q.data))] = value

	for !q.readEnd.CompareAndSwap(insertAt, insertAt+1) {
		// Another producer claimed a slot before ours and hasn't
		// committed yet; spin until it does.
		runtime.Gosched()
	}

	q.p.wake()
}

// Close marks the queue as no longer accepting items and wakes every
// parked consumer so Next can return false instead of blocking forever.
func (q *Queue[T]) Close() {
	q.closed.Store(true)
	q.p.wake()
}

// get returns the item at idx, parking the caller until it is available or
// the queue is closed.
func (q *Queue[T]) get(idx uint32) (T, bool) {
	for idx == q.readEnd.Load() {
		if q.closed.Load() {
			var zero T
			return zero, false
		}
		q.p.wait()
	}
	return q.data[idx%uint32(len(q.data))], true
}

// Next returns the consumer's next item, advancing its cursor, or false
// once the queue is closed and fully drained for this consumer.
func (c *Consumer[T]) Next() (T, bool) {
	item, ok := c.queue.get(c.current)
	c.current++
	return item, ok
}
