// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package hkdf implements RFC 5869 HKDF-SHA256 (the full Extract/Expand
// pair), plus the TLS 1.3 HKDF-Expand-Label construction from RFC 8446
// section 7.1, built on our own crypto/hmac and crypto/sha256 so the TLS
// stack never imports a standard-library or third-party crypto package.
package hkdf

import (
	"encoding/binary"
	"errors"

	"github.com/grahamking/ort-go/crypto/hmac"
	"github.com/grahamking/ort-go/crypto/sha256"
)

// ErrLengthTooLarge is returned by Expand when the requested output is
// longer than 255 hash lengths, per RFC 5869 section 2.3.
var ErrLengthTooLarge = errors.New("hkdf: requested length too large")

// Extract implements HKDF-Extract(salt, ikm) -> PRK. An empty salt is
// treated as a string of HashLen zero bytes, per RFC 5869 section 2.2.
func Extract(salt, ikm []byte) [sha256.Size]byte {
	if len(salt) == 0 {
		salt = make([]byte, sha256.Size)
	}
	return hmac.Sum256(salt, ikm)
}

// Expand implements HKDF-Expand(prk, info, length) -> okm.
func Expand(prk, info []byte, length int) ([]byte, error) {
	if length > 255*sha256.Size {
		return nil, ErrLengthTooLarge
	}
	out := make([]byte, 0, length)
	var prev []byte
	for counter := byte(1); len(out) < length; counter++ {
		d := hmac.New(prk)
		d.Write(prev)
		d.Write(info)
		d.Write([]byte{counter})
		prev = d.Sum(nil)
		out = append(out, prev...)
	}
	return out[:length], nil
}

// ExpandLabel implements TLS 1.3's HKDF-Expand-Label (RFC 8446 section
// 7.1):
//
//	HkdfLabel {
//	    uint16 length;
//	    opaque label<7..255> = "tls13 " + Label;
//	    opaque context<0..255> = Context;
//	}
func ExpandLabel(secret []byte, label string, context []byte, length int) []byte {
	fullLabel := "tls13 " + label

	info := make([]byte, 0, 2+1+len(fullLabel)+1+len(context))
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(length))
	info = append(info, lenBuf[:]...)
	info = append(info, byte(len(fullLabel)))
	info = append(info, fullLabel...)
	info = append(info, byte(len(context)))
	info = append(info, context...)

	out, err := Expand(secret, info, length)
	if err != nil {
		// length is always <= 32 for every caller in crypto/tls; a failure
		// here means a programming error, not a runtime condition.
		panic(err)
	}
	return out
}

// ExpandLabel32 is ExpandLabel specialized to the common 32-byte secret
// case (traffic secrets, "derived" secrets), returning a fixed-size array
// for callers that want one.
func ExpandLabel32(secret []byte, label string, context []byte) [32]byte {
	var out [32]byte
	copy(out[:], ExpandLabel(secret, label, context, 32))
	return out
}
