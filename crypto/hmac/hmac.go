// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package hmac implements RFC 2104 HMAC-SHA256 over our own crypto/sha256,
// so the TLS 1.3 key schedule in crypto/tls never reaches for the standard
// library's crypto/hmac.
package hmac

import "github.com/grahamking/ort-go/crypto/sha256"

const (
	ipad = 0x36
	opad = 0x5c
)

// Digest is an HMAC-SHA256 instance. The zero value is not usable; use New.
type Digest struct {
	inner *sha256.Digest
	outer *sha256.Digest
	key   [sha256.BlockSize]byte
}

// New creates an HMAC-SHA256 keyed with key. Per RFC 2104, keys longer than
// the block size are first hashed down to 32 bytes.
func New(key []byte) *Digest {
	d := &Digest{inner: sha256.New(), outer: sha256.New()}

	if len(key) > sha256.BlockSize {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	copy(d.key[:], key)

	var ipadded, opadded [sha256.BlockSize]byte
	for i := 0; i < sha256.BlockSize; i++ {
		ipadded[i] = d.key[i] ^ ipad
		opadded[i] = d.key[i] ^ opad
	}
	d.inner.Write(ipadded[:])
	d.outer.Write(opadded[:])
	return d
}

// Write absorbs p into the message being authenticated.
func (d *Digest) Write(p []byte) (int, error) {
	return d.inner.Write(p)
}

// Sum appends the HMAC tag to b and returns the resulting slice.
func (d *Digest) Sum(b []byte) []byte {
	innerSum := d.inner.Sum(nil)
	outer := *d.outer
	outer.Write(innerSum)
	return outer.Sum(b)
}

// Sum256 computes HMAC-SHA256(key, data) in one call.
func Sum256(key, data []byte) [sha256.Size]byte {
	d := New(key)
	d.Write(data)
	var out [sha256.Size]byte
	copy(out[:], d.Sum(nil))
	return out
}

// Equal does a constant-time comparison of two MACs, same contract as
// crypto/subtle.ConstantTimeCompare but scoped to this package so nothing
// here reaches into crypto/subtle.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
