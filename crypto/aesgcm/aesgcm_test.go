package aesgcm

import (
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// NIST single-block known-answer test for AES-128-GCM.
func TestNISTSingleBlockVector(t *testing.T) {
	keyBytes := mustHex(t, "7fddb57453c241d03efbed3ac44e371c")
	nonceBytes := mustHex(t, "ee283a3fc75575e33efd4887")
	ptBytes := mustHex(t, "d5de42b461646c255c87bd2962d3b9a2")
	want := "2ccda4a5415cb91e135c2a0f78c9b2fdb36d1df9b9d5e596f83e8b7f52971cb3"

	var key [KeySize]byte
	copy(key[:], keyBytes)
	var nonce [NonceSize]byte
	copy(nonce[:], nonceBytes)

	c := New(key)
	got := c.Seal(nonce, ptBytes, nil)
	if hex.EncodeToString(got) != want {
		t.Fatalf("Seal = %x, want %s", got, want)
	}

	plain, err := c.Open(nonce, got, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if hex.EncodeToString(plain) != hex.EncodeToString(ptBytes) {
		t.Fatalf("Open roundtrip = %x, want %x", plain, ptBytes)
	}
}

func TestRoundTripWithAAD(t *testing.T) {
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	var nonce [NonceSize]byte
	for i := range nonce {
		nonce[i] = byte(i + 1)
	}
	plaintext := []byte("the quick brown fox jumps over the lazy dog, twice over for good measure")
	aad := []byte("record-header")

	c := New(key)
	sealed := c.Seal(nonce, plaintext, aad)
	opened, err := c.Open(nonce, sealed, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(opened) != string(plaintext) {
		t.Fatalf("roundtrip mismatch: got %q want %q", opened, plaintext)
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	var key [KeySize]byte
	var nonce [NonceSize]byte
	c := New(key)
	sealed := c.Seal(nonce, []byte("hello, world"), []byte("aad"))

	tests := map[string]func([]byte, [NonceSize]byte, []byte) ([]byte, [NonceSize]byte, []byte){
		"flipped ciphertext byte": func(s []byte, n [NonceSize]byte, a []byte) ([]byte, [NonceSize]byte, []byte) {
			s2 := append([]byte(nil), s...)
			s2[0] ^= 0x01
			return s2, n, a
		},
		"flipped tag byte": func(s []byte, n [NonceSize]byte, a []byte) ([]byte, [NonceSize]byte, []byte) {
			s2 := append([]byte(nil), s...)
			s2[len(s2)-1] ^= 0x01
			return s2, n, a
		},
		"flipped aad byte": func(s []byte, n [NonceSize]byte, a []byte) ([]byte, [NonceSize]byte, []byte) {
			a2 := append([]byte(nil), a...)
			a2[0] ^= 0x01
			return s, n, a2
		},
		"flipped nonce byte": func(s []byte, n [NonceSize]byte, a []byte) ([]byte, [NonceSize]byte, []byte) {
			n2 := n
			n2[0] ^= 0x01
			return s, n2, a
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s2, n2, a2 := mutate(sealed, nonce, []byte("aad"))
			if _, err := c.Open(n2, s2, a2); err != ErrAuthFailed {
				t.Fatalf("Open with %s: got err=%v, want ErrAuthFailed", name, err)
			}
		})
	}

	t.Run("flipped key", func(t *testing.T) {
		var key2 [KeySize]byte
		key2[0] = 1
		c2 := New(key2)
		if _, err := c2.Open(nonce, sealed, []byte("aad")); err != ErrAuthFailed {
			t.Fatalf("Open with different key: got err=%v, want ErrAuthFailed", err)
		}
	})
}

func TestEmptyPlaintext(t *testing.T) {
	var key [KeySize]byte
	var nonce [NonceSize]byte
	c := New(key)
	sealed := c.Seal(nonce, nil, []byte("only aad"))
	if len(sealed) != TagSize {
		t.Fatalf("len(sealed) = %d, want %d (tag only)", len(sealed), TagSize)
	}
	plain, err := c.Open(nonce, sealed, []byte("only aad"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(plain) != 0 {
		t.Fatalf("plain = %x, want empty", plain)
	}
}
