// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package bufreader is a small fixed-size buffered reader wrapping any
// io.Reader, used over our own crypto/tls.Conn instead of bufio.Reader so
// the networking layer stays self-contained and easy to reason about.
package bufreader

import (
	"io"
	"unicode/utf8"

	"github.com/grahamking/ort-go/errs"
)

// bufSize is the fixed internal buffer size.
const bufSize = 8 * 1024

// Reader buffers reads from an underlying io.Reader in fixed 8 KiB chunks.
type Reader struct {
	inner io.Reader
	buf   [bufSize]byte
	pos   int // index of next unread byte in buf
	cap   int // number of valid bytes in buf
}

// New wraps inner in a Reader with a fresh internal buffer.
func New(inner io.Reader) *Reader {
	return &Reader{inner: inner}
}

func (r *Reader) bufferConsumed() bool {
	return r.pos >= r.cap
}

// fillBuf refills the internal buffer from the underlying reader. After it
// returns, pos is 0 and cap is the number of bytes read (0 on EOF).
func (r *Reader) fillBuf() error {
	r.pos = 0
	n, err := r.inner.Read(r.buf[:])
	r.cap = n
	if err != nil && err != io.EOF {
		return errs.Wrap(errs.SocketReadFailed, "fill buffer", err)
	}
	return nil
}

// ReadLine reads all bytes up to and including a newline (0x0A), appends
// them to line and returns the extended slice. At EOF with no further data
// it returns line unchanged with a nil error.
func (r *Reader) ReadLine(line []byte) ([]byte, error) {
	total := 0

	for {
		if r.bufferConsumed() {
			if err := r.fillBuf(); err != nil {
				return line, err
			}
			if r.cap == 0 {
				return line, nil
			}
		}

		available := r.buf[r.pos:r.cap]
		idx := -1
		for i, b := range available {
			if b == '\n' {
				idx = i
				break
			}
		}

		var end int
		if idx >= 0 {
			end = r.pos + idx + 1
		} else {
			end = r.cap
		}

		chunk := r.buf[r.pos:end]
		if !utf8.Valid(chunk) {
			return line, errs.New(errs.FormatError, "utf8 decode")
		}
		line = append(line, chunk...)
		total += len(chunk)
		r.pos = end

		if idx >= 0 {
			return line, nil
		}
	}
}

// ReadExact reads exactly len(buf) bytes into buf, reading directly from
// the underlying reader (bypassing the internal buffer) whenever the
// remainder to fill is at least as large as the internal buffer, to avoid
// an extra copy through buf on large reads.
func (r *Reader) ReadExact(buf []byte) error {
	offset := 0
	length := len(buf)

	for offset < length {
		if !r.bufferConsumed() {
			n := length - offset
			if avail := r.cap - r.pos; avail < n {
				n = avail
			}
			copy(buf[offset:offset+n], r.buf[r.pos:r.pos+n])
			r.pos += n
			offset += n
			continue
		}

		if length-offset >= bufSize {
			n, err := r.inner.Read(buf[offset:])
			if n == 0 {
				if err == nil {
					err = io.EOF
				}
				return errs.Wrap(errs.UnexpectedEOF, "read_exact direct read", err)
			}
			offset += n
			continue
		}

		if err := r.fillBuf(); err != nil {
			return err
		}
		if r.cap == 0 {
			return errs.New(errs.UnexpectedEOF, "read_exact: EOF while refilling")
		}
	}

	return nil
}
