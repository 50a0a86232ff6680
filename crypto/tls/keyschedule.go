// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package tls

import (
	"github.com/grahamking/ort-go/crypto/hkdf"
	"github.com/grahamking/ort-go/crypto/hmac"
	"github.com/grahamking/ort-go/crypto/sha256"
)

// directionKeys is the key/iv pair derived for one traffic direction at one
// stage of the handshake (handshake traffic or application traffic).
type directionKeys struct {
	key [16]byte
	iv  [12]byte
}

// handshakeSecrets holds every secret and derived key the RFC 8446 section
// 7.1 key schedule produces, in the order it produces them, for exactly one
// connection using TLS_AES_128_GCM_SHA256 and x25519.
type handshakeSecrets struct {
	clientHandshakeTrafficSecret [32]byte
	serverHandshakeTrafficSecret [32]byte
	clientHandshakeKeys          directionKeys
	serverHandshakeKeys          directionKeys

	masterSecret                 [32]byte
	clientApplicationTrafficSecret [32]byte
	serverApplicationTrafficSecret [32]byte
	clientApplicationKeys          directionKeys
	serverApplicationKeys          directionKeys
}

var zeroHash32 = sha256.Sum256(nil)

// deriveHandshakeSecrets runs the key schedule from the x25519 shared
// secret and the ClientHello..ServerHello transcript hash, producing the
// handshake traffic secrets and keys for both directions.
func deriveHandshakeSecrets(sharedSecret [32]byte, helloTranscriptHash [32]byte) *handshakeSecrets {
	earlySecret := hkdf.Extract(nil, make([]byte, sha256.Size))
	derivedSecret := hkdf.ExpandLabel32(earlySecret[:], "derived", zeroHash32[:])

	handshakeSecret := hkdf.Extract(derivedSecret[:], sharedSecret[:])

	hs := &handshakeSecrets{}
	hs.clientHandshakeTrafficSecret = hkdf.ExpandLabel32(handshakeSecret[:], "c hs traffic", helloTranscriptHash[:])
	hs.serverHandshakeTrafficSecret = hkdf.ExpandLabel32(handshakeSecret[:], "s hs traffic", helloTranscriptHash[:])

	hs.clientHandshakeKeys = trafficKeys(hs.clientHandshakeTrafficSecret)
	hs.serverHandshakeKeys = trafficKeys(hs.serverHandshakeTrafficSecret)

	// The master secret only needs the handshake secret, not the later
	// transcript; stash it via a second derived secret computed now so the
	// caller doesn't need to hold handshakeSecret around separately.
	derived2 := hkdf.ExpandLabel32(handshakeSecret[:], "derived", zeroHash32[:])
	masterSecret := hkdf.Extract(derived2[:], make([]byte, sha256.Size))
	hs.masterSecret = masterSecret

	return hs
}

// deriveApplicationSecrets completes the key schedule once the full
// handshake transcript (through the server's Finished message) is known,
// deriving the application traffic secrets and keys for both directions.
func deriveApplicationSecrets(hs *handshakeSecrets, fullTranscriptHash [32]byte) {
	hs.clientApplicationTrafficSecret = hkdf.ExpandLabel32(hs.masterSecret[:], "c ap traffic", fullTranscriptHash[:])
	hs.serverApplicationTrafficSecret = hkdf.ExpandLabel32(hs.masterSecret[:], "s ap traffic", fullTranscriptHash[:])
	hs.clientApplicationKeys = trafficKeys(hs.clientApplicationTrafficSecret)
	hs.serverApplicationKeys = trafficKeys(hs.serverApplicationTrafficSecret)
}

// trafficKeys derives the record-protection key and iv for a traffic
// secret, per RFC 8446 section 7.3.
func trafficKeys(secret [32]byte) directionKeys {
	var dk directionKeys
	copy(dk.key[:], hkdf.ExpandLabel(secret[:], "key", nil, 16))
	copy(dk.iv[:], hkdf.ExpandLabel(secret[:], "iv", nil, 12))
	return dk
}

// finishedKey derives the MAC key used to compute or verify a Finished
// message, per RFC 8446 section 4.4.4.
func finishedKey(trafficSecret [32]byte) []byte {
	return hkdf.ExpandLabel(trafficSecret[:], "finished", nil, sha256.Size)
}

// verifyData computes the Finished message's verify_data: an HMAC over the
// transcript hash, keyed by the direction's finished key.
func verifyData(trafficSecret [32]byte, transcriptHash [32]byte) []byte {
	key := finishedKey(trafficSecret)
	d := hmac.New(key)
	d.Write(transcriptHash[:])
	return d.Sum(nil)
}
