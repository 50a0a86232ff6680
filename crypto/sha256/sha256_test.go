package sha256

import (
	"encoding/hex"
	"testing"
)

func TestSum256(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "abc",
			in:   "abc",
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name: "two-block",
			in:   "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			want: "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum256([]byte(tt.in))
			gotHex := hex.EncodeToString(got[:])
			if gotHex != tt.want {
				t.Errorf("Sum256(%q) = %s, want %s", tt.in, gotHex, tt.want)
			}
		})
	}
}

func TestIncrementalWrite(t *testing.T) {
	full := Sum256([]byte("hello world, this is a longer message than one block so we exercise the streaming path"))

	d := New()
	msg := "hello world, this is a longer message than one block so we exercise the streaming path"
	for i := 0; i < len(msg); i += 7 {
		end := i + 7
		if end > len(msg) {
			end = len(msg)
		}
		d.Write([]byte(msg[i:end]))
	}
	var got [Size]byte
	copy(got[:], d.Sum(nil))

	if got != full {
		t.Errorf("incremental Sum256 mismatch: got %x, want %x", got, full)
	}
}
