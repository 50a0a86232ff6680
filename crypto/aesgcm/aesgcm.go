// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package aesgcm implements AES-128 (FIPS 197) and GCM (NIST SP 800-38D)
// from scratch, for the single cipher suite the TLS 1.3 client in
// crypto/tls negotiates. It does not import crypto/aes or crypto/cipher,
// keeping the whole record-protection path free of standard-library or
// third-party crypto.
package aesgcm

import "errors"

// KeySize is the AES-128 key length in bytes.
const KeySize = 16

// NonceSize is the GCM nonce length this package supports (the only length
// TLS 1.3 record protection uses).
const NonceSize = 12

// TagSize is the GCM authentication tag length in bytes.
const TagSize = 16

const blockSize = 16
const numRounds = 10

// ErrAuthFailed is returned by Open when the authentication tag does not
// match.
var ErrAuthFailed = errors.New("aesgcm: message authentication failed")

var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

var rcon = [10]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

// roundKeys holds the 11 round keys (44 words) derived from a 16-byte
// AES-128 key.
type roundKeys [44][4]byte

func expandKey(key [KeySize]byte) roundKeys {
	var w roundKeys
	for i := 0; i < 4; i++ {
		copy(w[i][:], key[4*i:4*i+4])
	}
	for i := 4; i < 44; i++ {
		temp := w[i-1]
		if i%4 == 0 {
			temp = [4]byte{temp[1], temp[2], temp[3], temp[0]}
			for j := range temp {
				temp[j] = sbox[temp[j]]
			}
			temp[0] ^= rcon[i/4-1]
		}
		for j := range w[i] {
			w[i][j] = w[i-4][j] ^ temp[j]
		}
	}
	return w
}

func addRoundKey(state *[4][4]byte, w roundKeys, round int) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			state[r][c] ^= w[round*4+c][r]
		}
	}
}

func subBytes(state *[4][4]byte) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[r][c] = sbox[state[r][c]]
		}
	}
}

func shiftRows(state *[4][4]byte) {
	for r := 1; r < 4; r++ {
		var row [4]byte
		for c := 0; c < 4; c++ {
			row[c] = state[r][(c+r)%4]
		}
		state[r] = row
	}
}

func xtime(a byte) byte {
	hi := a & 0x80
	a <<= 1
	if hi != 0 {
		a ^= 0x1b
	}
	return a
}

func gmulByte(a byte, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func mixColumns(state *[4][4]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[0][c], state[1][c], state[2][c], state[3][c]
		state[0][c] = gmulByte(a0, 2) ^ gmulByte(a1, 3) ^ a2 ^ a3
		state[1][c] = a0 ^ gmulByte(a1, 2) ^ gmulByte(a2, 3) ^ a3
		state[2][c] = a0 ^ a1 ^ gmulByte(a2, 2) ^ gmulByte(a3, 3)
		state[3][c] = gmulByte(a0, 3) ^ a1 ^ a2 ^ gmulByte(a3, 2)
	}
}

// encryptBlock encrypts a single 16-byte block with AES-128.
func encryptBlock(w roundKeys, block [blockSize]byte) [blockSize]byte {
	var state [4][4]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			state[r][c] = block[r+4*c]
		}
	}
	addRoundKey(&state, w, 0)
	for round := 1; round < numRounds; round++ {
		subBytes(&state)
		shiftRows(&state)
		mixColumns(&state)
		addRoundKey(&state, w, round)
	}
	subBytes(&state)
	shiftRows(&state)
	addRoundKey(&state, w, numRounds)

	var out [blockSize]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[r+4*c] = state[r][c]
		}
	}
	return out
}

// Cipher is an AES-128-GCM instance bound to a single key, used to protect
// (and unprotect) a sequence of TLS records.
type Cipher struct {
	w roundKeys
	h [16]byte // GHASH subkey: AES_K(0^128)
}

// New creates a Cipher for the given 16-byte key.
func New(key [KeySize]byte) *Cipher {
	w := expandKey(key)
	h := encryptBlock(w, [blockSize]byte{})
	return &Cipher{w: w, h: h}
}

// incrementCounter increments the low 32 bits of a 16-byte counter block,
// per SP 800-38D's inc32.
func incrementCounter(block [16]byte) [16]byte {
	ctr := uint32(block[12])<<24 | uint32(block[13])<<16 | uint32(block[14])<<8 | uint32(block[15])
	ctr++
	block[12] = byte(ctr >> 24)
	block[13] = byte(ctr >> 16)
	block[14] = byte(ctr >> 8)
	block[15] = byte(ctr)
	return block
}

// gctr applies the AES-CTR keystream starting at icb to data.
func (c *Cipher) gctr(icb [16]byte, data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, len(data))
	cb := icb
	for i := 0; i < len(data); i += blockSize {
		ks := encryptBlock(c.w, cb)
		n := copy(out[i:], data[i:min(i+blockSize, len(data))])
		for j := 0; j < n; j++ {
			out[i+j] ^= ks[j]
		}
		cb = incrementCounter(cb)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// gf128Mul multiplies two 128-bit values in GF(2^128) under GCM's
// reduction polynomial, operating on the big-endian bit ordering GCM uses.
func gf128Mul(x, y [16]byte) [16]byte {
	var z [16]byte
	v := y
	for i := 0; i < 128; i++ {
		byteIdx := i / 8
		bitIdx := 7 - uint(i%8)
		if (x[byteIdx]>>bitIdx)&1 == 1 {
			for k := 0; k < 16; k++ {
				z[k] ^= v[k]
			}
		}
		lsb := v[15] & 1
		// right shift v by one bit, big-endian bit order.
		for k := 15; k > 0; k-- {
			v[k] = (v[k] >> 1) | (v[k-1] << 7)
		}
		v[0] >>= 1
		if lsb == 1 {
			v[0] ^= 0xe1
		}
	}
	return z
}

func xorBlock(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// ghash computes the GHASH of aad and ciphertext under subkey h.
func (c *Cipher) ghash(aad, ciphertext []byte) [16]byte {
	var y [16]byte
	absorb := func(data []byte) {
		for i := 0; i < len(data); i += 16 {
			var block [16]byte
			copy(block[:], data[i:min(i+16, len(data))])
			y = gf128Mul(xorBlock(y, block), c.h)
		}
	}
	absorb(aad)
	absorb(ciphertext)

	var lenBlock [16]byte
	putUint64(lenBlock[0:8], uint64(len(aad))*8)
	putUint64(lenBlock[8:16], uint64(len(ciphertext))*8)
	y = gf128Mul(xorBlock(y, lenBlock), c.h)
	return y
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * i))
	}
}

// Seal encrypts plaintext and returns ciphertext||tag, authenticating aad
// alongside it. nonce must be NonceSize bytes.
func (c *Cipher) Seal(nonce [NonceSize]byte, plaintext, aad []byte) []byte {
	j0 := makeJ0(nonce)
	ciphertext := c.gctr(incrementCounter(j0), plaintext)
	s := c.ghash(aad, ciphertext)
	tagBlock := encryptBlock(c.w, j0)
	tag := xorBlock(s, tagBlock)

	out := make([]byte, 0, len(ciphertext)+TagSize)
	out = append(out, ciphertext...)
	out = append(out, tag[:]...)
	return out
}

// Open decrypts ciphertextAndTag (ciphertext||tag) and verifies aad,
// returning the plaintext. It returns ErrAuthFailed if the tag does not
// match, without releasing any bytes of unauthenticated plaintext.
func (c *Cipher) Open(nonce [NonceSize]byte, ciphertextAndTag, aad []byte) ([]byte, error) {
	if len(ciphertextAndTag) < TagSize {
		return nil, ErrAuthFailed
	}
	ciphertext := ciphertextAndTag[:len(ciphertextAndTag)-TagSize]
	var wantTag [TagSize]byte
	copy(wantTag[:], ciphertextAndTag[len(ciphertextAndTag)-TagSize:])

	j0 := makeJ0(nonce)
	s := c.ghash(aad, ciphertext)
	tagBlock := encryptBlock(c.w, j0)
	gotTag := xorBlock(s, tagBlock)

	if !constantTimeEqual(gotTag[:], wantTag[:]) {
		return nil, ErrAuthFailed
	}
	return c.gctr(incrementCounter(j0), ciphertext), nil
}

func makeJ0(nonce [NonceSize]byte) [16]byte {
	var j0 [16]byte
	copy(j0[:12], nonce[:])
	j0[15] = 1
	return j0
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
