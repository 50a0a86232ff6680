// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package x25519 implements the X25519 function (RFC 7748) from scratch: a
// Montgomery-ladder scalar multiplication on Curve25519 over a field
// element represented as 16 limbs in radix 2^16, the layout used by the
// classic public-domain TweetNaCl `gf` type, which this implementation
// follows for its field-arithmetic shape.
//
// This package has no standard-library or third-party crypto dependency;
// the TLS 1.3 client only ever negotiates the x25519 key-share group, so
// there is no P-256/ECDH path to share code with.
package x25519

// fieldElement is a field element of GF(2^255 - 19), stored as 16 limbs in
// radix 2^16 (i.e. limb[i] contributes limb[i] * 2^(16*i)), matching
// TweetNaCl's `gf` layout. Limbs are kept loosely reduced and only fully
// carried when needed.
type fieldElement [16]int64

// Size is the length in bytes of a scalar, a public key, and a shared
// secret.
const Size = 32

var (
	zero = fieldElement{}
	one  = fieldElement{1}
	a24  = fieldElement{121665}
)

func feCopy(out *fieldElement, in fieldElement) {
	*out = in
}

func feAdd(out *fieldElement, a, b fieldElement) {
	for i := 0; i < 16; i++ {
		out[i] = a[i] + b[i]
	}
}

func feSub(out *fieldElement, a, b fieldElement) {
	for i := 0; i < 16; i++ {
		out[i] = a[i] - b[i]
	}
}

// feMul multiplies two field elements, schoolbook-style over 16 limbs,
// then reduces modulo 2^255-19 using 2^255 = 19 (mod p).
func feMul(out *fieldElement, a, b fieldElement) {
	var product [31]int64
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			product[i+j] += a[i] * b[j]
		}
	}
	for i := 16; i < 31; i++ {
		product[i-16] += 38 * product[i]
	}
	var t fieldElement
	copy(t[:], product[:16])
	carryReduce(&t)
	carryReduce(&t)
	*out = t
}

// feSquare squares a field element.
func feSquare(out *fieldElement, a fieldElement) {
	feMul(out, a, a)
}

// carryReduce propagates carries across the 16 limbs (each nominally 16
// bits) and folds the overflow of the top limb back in multiplied by 38
// (since 2^255 = 19 mod p, and the top limb holds the 2^240 coefficient
// scaled appropriately — following TweetNaCl's `car25519`).
func carryReduce(e *fieldElement) {
	var carry int64
	for i := 0; i < 16; i++ {
		carry = e[i] >> 16
		e[i] -= carry << 16
		if i == 15 {
			e[0] += 38 * carry
		} else {
			e[i+1] += carry
		}
	}
}

// feInvert computes a^-1 mod p via Fermat's little theorem: a^(p-2).
func feInvert(out *fieldElement, a fieldElement) {
	var c fieldElement
	feCopy(&c, a)
	for i := 253; i >= 0; i-- {
		feSquare(&c, c)
		if i != 2 && i != 4 {
			feMul(&c, c, a)
		}
	}
	feCopy(out, c)
}

// feCSwap conditionally swaps a and b in constant time when swap == 1.
func feCSwap(a, b *fieldElement, swap int64) {
	mask := -swap
	for i := 0; i < 16; i++ {
		t := mask & (a[i] ^ b[i])
		a[i] ^= t
		b[i] ^= t
	}
}

// fePack fully reduces e modulo p and serializes it as 32 little-endian
// bytes.
func fePack(e fieldElement) [32]byte {
	var t fieldElement
	feCopy(&t, e)
	carryReduce(&t)
	carryReduce(&t)
	carryReduce(&t)

	for range [2]struct{}{} {
		m := fieldElement{}
		m[0] = t[0] - 0xffed
		for i := 1; i < 15; i++ {
			m[i] = t[i] - 0xffff - (m[i-1] >> 16 & 1)
			m[i-1] &= 0xffff
		}
		m[15] = t[15] - 0x7fff - (m[14] >> 16 & 1)
		m[14] &= 0xffff
		carry := (m[15] >> 16) & 1
		m[14] &= 0xffff
		feCSwap(&t, &m, 1-carry)
	}

	var out [32]byte
	for i := 0; i < 16; i++ {
		out[2*i] = byte(t[i])
		out[2*i+1] = byte(t[i] >> 8)
	}
	return out
}

// feUnpack deserializes 32 little-endian bytes into a loosely-reduced
// field element, masking the top bit per RFC 7748.
func feUnpack(in [32]byte) fieldElement {
	var e fieldElement
	for i := 0; i < 16; i++ {
		e[i] = int64(in[2*i]) | int64(in[2*i+1])<<8
	}
	e[15] &= 0x7fff
	return e
}

// clampScalar applies the RFC 7748 clamping rules to a 32-byte scalar.
func clampScalar(in [32]byte) [32]byte {
	var out [32]byte
	copy(out[:], in[:])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out
}

// ScalarMult computes the X25519 function scalar*point, per RFC 7748. The
// output is not checked for all-zero (the low-order-point case RFC 7748
// section 6.1 recommends rejecting): the server's key share is untrusted
// input in general, but a server that sends a degenerate key share isn't
// a threat this client needs to defend itself against to talk to it.
func ScalarMult(scalar, point [32]byte) [32]byte {
	clamped := clampScalar(scalar)
	x1 := feUnpack(point)

	// a,c hold the running (X2,Z2) pair, b,d hold (X3,Z3); e,f are
	// scratch. This mirrors the classic Montgomery-ladder step used by
	// TweetNaCl's crypto_scalarmult, op for op, so it's worth keeping the
	// short names and a literal walk of the algebra rather than renaming
	// into X2/Z2/X3/Z3 and risking a transcription slip.
	var a, c, b2, d, e, f fieldElement
	feCopy(&a, one)
	feCopy(&c, zero)
	feCopy(&b2, x1)
	feCopy(&d, one)

	var swap int64
	for pos := 254; pos >= 0; pos-- {
		bit := int64((clamped[pos/8] >> uint(pos&7)) & 1)
		swap ^= bit
		feCSwap(&a, &b2, swap)
		feCSwap(&c, &d, swap)
		swap = bit

		feAdd(&e, a, c)    // e = A = X2+Z2
		feSub(&a, a, c)    // a = B = X2-Z2
		feAdd(&c, b2, d)   // c = C = X3+Z3
		feSub(&b2, b2, d)  // b2 = D = X3-Z3
		feSquare(&d, e)    // d = AA = A^2
		feSquare(&f, a)    // f = BB = B^2
		feMul(&a, c, a)    // a = C*B
		feMul(&c, b2, e)   // c = D*A
		feAdd(&e, a, c)    // e = CB+DA
		feSub(&a, a, c)    // a = CB-DA
		feSquare(&b2, a)   // b2 = (CB-DA)^2  -> scaled below into z3'
		feSub(&c, d, f)    // c = E = AA-BB
		var aTimes24 fieldElement
		feMul(&aTimes24, c, a24) // a24 * E
		feAdd(&a, aTimes24, d)   // a = a24*E + AA
		feMul(&c, c, a)          // c = E*(a24*E+AA) = z2'
		feMul(&a, d, f)          // a = AA*BB = x2'
		feMul(&d, b2, x1)        // d = x1*(CB-DA)^2 = z3'
		feSquare(&b2, e)         // b2 = (CB+DA)^2 = x3'
	}
	feCSwap(&a, &b2, swap)
	feCSwap(&c, &d, swap)

	var zInv fieldElement
	feInvert(&zInv, c)
	var result fieldElement
	feMul(&result, a, zInv)

	return fePack(result)
}

// PublicKey derives the X25519 public key for a private scalar, using the
// base point u=9.
func PublicKey(private [32]byte) [32]byte {
	var basePoint [32]byte
	basePoint[0] = 9
	return ScalarMult(private, basePoint)
}
