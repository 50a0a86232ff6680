package hmac

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSum256RFC4231Case1(t *testing.T) {
	// RFC 4231 test case 1, adapted to HMAC-SHA256.
	key := bytes.Repeat([]byte{0x0b}, 20)
	data := []byte("Hi There")
	want := "b0344c61d8db38535ca8afceaf0bf12b881dc200c9833da726e9376c2e32cff7"

	got := Sum256(key, data)
	gotHex := hex.EncodeToString(got[:])
	if gotHex != want {
		t.Errorf("Sum256 = %s, want %s", gotHex, want)
	}
}

func TestEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}
	if !Equal(a, b) {
		t.Error("expected equal")
	}
	if Equal(a, c) {
		t.Error("expected not equal")
	}
	if Equal(a, []byte{1, 2}) {
		t.Error("expected length mismatch to be unequal")
	}
}
