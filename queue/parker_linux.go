// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

//go:build linux

package queue

import (
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux futex(2) operation numbers; golang.org/x/sys/unix exposes the
// syscall number but not these op codes, so they're named here directly.
const (
	futexWait = 0
	futexWake = 1
)

// parker parks goroutines on a futex word via a raw syscall(SYS_FUTEX, ...).
type parker struct {
	word int32
}

func newParker() *parker {
	return &parker{}
}

// wait parks the calling goroutine until woken. It always compares the
// futex word against 0 rather than tracking a snapshot of an observed
// value: the word is never written to, it exists solely as a futex
// address, so the comparison is really just a best-effort "did nobody
// wake us in between" check with an inherent racy window.
func (p *parker) wait() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&p.word)),
		futexWait,
		uintptr(0),
		0, 0, 0,
	)
}

// wake wakes every goroutine parked on the word.
func (p *parker) wake() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&p.word)),
		futexWake,
		uintptr(math.MaxInt32),
		0, 0, 0,
	)
}
