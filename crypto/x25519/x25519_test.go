package x25519

import (
	"encoding/hex"
	"testing"
)

func mustHex32(t *testing.T, s string) [32]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(b))
	}
	var out [32]byte
	copy(out[:], b)
	return out
}

// RFC 7748 section 5.2 Diffie-Hellman test vectors.
func TestRFC7748DiffieHellman(t *testing.T) {
	alicePriv := mustHex32(t, "77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a")
	alicePubWant := "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a"
	bobPriv := mustHex32(t, "5dab087e624a8a4b79e17f8b83800ee66f3bb1292618b6fd1c2f8b27ff88e0eb")
	bobPubWant := "de9edb7d7b7dc1b4d35b61c2ece435373f8343c85b78674dadfc7e146f882b4f"
	sharedWant := "4a5d9d5ba4ce2de1728e3bf480350f25e07e21c947d19e3376f09b3c1e161742"

	alicePub := PublicKey(alicePriv)
	if got := hex.EncodeToString(alicePub[:]); got != alicePubWant {
		t.Fatalf("Alice public = %s, want %s", got, alicePubWant)
	}

	bobPub := PublicKey(bobPriv)
	if got := hex.EncodeToString(bobPub[:]); got != bobPubWant {
		t.Fatalf("Bob public = %s, want %s", got, bobPubWant)
	}

	sharedFromAlice := ScalarMult(alicePriv, bobPub)
	if got := hex.EncodeToString(sharedFromAlice[:]); got != sharedWant {
		t.Fatalf("shared (Alice side) = %s, want %s", got, sharedWant)
	}

	sharedFromBob := ScalarMult(bobPriv, alicePub)
	if got := hex.EncodeToString(sharedFromBob[:]); got != sharedWant {
		t.Fatalf("shared (Bob side) = %s, want %s", got, sharedWant)
	}
}

func TestSmallScalarProducesNonZeroPublicKey(t *testing.T) {
	var raw [32]byte
	raw[0] = 10
	pub := PublicKey(raw)
	if pub == ([32]byte{}) {
		t.Fatal("unexpected all-zero public key for small scalar")
	}
}
