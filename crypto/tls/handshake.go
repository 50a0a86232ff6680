// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package tls

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/grahamking/ort-go/crypto/x25519"
	"github.com/grahamking/ort-go/errs"
)

var bo = binary.BigEndian

// clientHello holds everything the handshake needs from the ClientHello we
// construct: its wire bytes (for the transcript) and the private key we
// generated for it.
type clientHello struct {
	wire       []byte
	privateKey [32]byte
}

// buildClientHello constructs a complete ClientHello handshake message
// (4-byte handshake header included) offering exactly one cipher suite,
// one group, and the given server name for SNI.
func buildClientHello(serverName string) (*clientHello, error) {
	var privateKey [32]byte
	if _, err := rand.Read(privateKey[:]); err != nil {
		return nil, errs.Wrap(errs.Other, "generate client private key", err)
	}

	var random [32]byte
	if _, err := rand.Read(random[:]); err != nil {
		return nil, errs.Wrap(errs.Other, "generate client random", err)
	}

	var sessionID [32]byte
	if _, err := rand.Read(sessionID[:]); err != nil {
		return nil, errs.Wrap(errs.Other, "generate legacy session id", err)
	}

	clientPub := x25519.PublicKey(privateKey)

	var body []byte
	body = append(body, 0x03, 0x03) // legacy_version
	body = append(body, random[:]...)
	body = append(body, byte(len(sessionID)))
	body = append(body, sessionID[:]...)

	// cipher_suites
	body = appendUint16LenPrefixed(body, func(b []byte) []byte {
		return bo.AppendUint16(b, uint16(CipherSuiteAES128GCMSHA256))
	})

	body = append(body, 1, 0x00) // compression_methods: null only

	extensions := buildClientExtensions(serverName, clientPub)
	body = appendUint16LenPrefixed(body, func(b []byte) []byte {
		return append(b, extensions...)
	})

	wire := appendHandshakeHeader(HandshakeTypeClientHello, body)
	return &clientHello{wire: wire, privateKey: privateKey}, nil
}

// buildClientExtensions builds the extensions block of a ClientHello: SNI,
// supported_versions (TLS 1.3 only), supported_groups (x25519 only),
// signature_algorithms (a minimal plausible list, never checked by this
// client since it performs no certificate validation), and key_share.
func buildClientExtensions(serverName string, clientPub [32]byte) []byte {
	var exts []byte

	if serverName != "" {
		exts = appendExtension(exts, ExtensionServerName, func(b []byte) []byte {
			return appendUint16LenPrefixed(b, func(b []byte) []byte {
				b = append(b, 0x00) // name_type: host_name
				return appendUint16LenPrefixed(b, func(b []byte) []byte {
					return append(b, serverName...)
				})
			})
		})
	}

	exts = appendExtension(exts, ExtensionSupportedVersions, func(b []byte) []byte {
		b = append(b, 2)
		return bo.AppendUint16(b, ProtocolVersionTLS13)
	})

	exts = appendExtension(exts, ExtensionSupportedGroups, func(b []byte) []byte {
		return appendUint16LenPrefixed(b, func(b []byte) []byte {
			return bo.AppendUint16(b, uint16(GroupX25519))
		})
	})

	exts = appendExtension(exts, ExtensionSignatureAlgs, func(b []byte) []byte {
		return appendUint16LenPrefixed(b, func(b []byte) []byte {
			// rsa_pkcs1_sha256, ecdsa_secp256r1_sha256, rsa_pss_rsae_sha256,
			// ed25519: a plausible, unused list. This client never verifies a
			// certificate, so the server's choice here is never checked.
			for _, v := range []uint16{0x0401, 0x0403, 0x0804, 0x0807} {
				b = bo.AppendUint16(b, v)
			}
			return b
		})
	})

	exts = appendExtension(exts, ExtensionKeyShare, func(b []byte) []byte {
		return appendUint16LenPrefixed(b, func(b []byte) []byte {
			b = bo.AppendUint16(b, uint16(GroupX25519))
			return appendUint16LenPrefixed(b, func(b []byte) []byte {
				return append(b, clientPub[:]...)
			})
		})
	})

	return exts
}

// appendExtension appends one TLS extension (2-byte type, 2-byte length,
// body) to b, where body is produced by writeBody into a fresh slice.
func appendExtension(b []byte, typ ExtensionType, writeBody func([]byte) []byte) []byte {
	b = bo.AppendUint16(b, uint16(typ))
	return appendUint16LenPrefixed(b, writeBody)
}

// appendUint16LenPrefixed appends a 2-byte big-endian length followed by
// whatever writeBody appends, back-patching the length once known.
func appendUint16LenPrefixed(b []byte, writeBody func([]byte) []byte) []byte {
	lenPos := len(b)
	b = bo.AppendUint16(b, 0)
	b = writeBody(b)
	bo.PutUint16(b[lenPos:], uint16(len(b)-lenPos-2))
	return b
}

// appendHandshakeHeader prepends the 4-byte handshake header (1-byte type,
// 3-byte big-endian length) to body and returns the full message.
func appendHandshakeHeader(typ HandshakeType, body []byte) []byte {
	out := make([]byte, 0, 4+len(body))
	out = append(out, byte(typ))
	out = append(out, byte(len(body)>>16), byte(len(body)>>8), byte(len(body)))
	out = append(out, body...)
	return out
}

// serverHelloKeys is what we need out of a parsed ServerHello: the
// negotiated cipher suite and the server's x25519 public key.
type serverHelloKeys struct {
	cipherSuite CipherSuite
	serverKey   [32]byte
}

// parseServerHello extracts the cipher suite and key_share public key from
// a ServerHello body (the bytes after the 4-byte handshake header),
// validating that the server selected TLS 1.3 and x25519.
func parseServerHello(body []byte) (*serverHelloKeys, error) {
	if len(body) < 2+32+1 {
		return nil, errs.New(errs.TLSServerHelloTooShort, "server_hello truncated before session id")
	}
	pos := 2 // legacy_version
	pos += 32 // random

	sessIDLen := int(body[pos])
	pos++
	if len(body) < pos+sessIDLen+2+1+2 {
		return nil, errs.New(errs.TLSServerHelloTooShort, "server_hello truncated at session id")
	}
	pos += sessIDLen

	cipherSuite := CipherSuite(bo.Uint16(body[pos:]))
	pos += 2

	pos++ // compression_method

	if len(body) < pos+2 {
		return nil, errs.New(errs.TLSServerHelloTooShort, "server_hello missing extensions block")
	}
	extLen := int(bo.Uint16(body[pos:]))
	pos += 2
	if len(body) < pos+extLen {
		return nil, errs.New(errs.TLSServerHelloExtTooShort, "server_hello extensions length overruns message")
	}
	extensions := body[pos : pos+extLen]

	result := &serverHelloKeys{cipherSuite: cipherSuite}
	var sawVersion, sawKey bool

	for len(extensions) > 0 {
		if len(extensions) < 4 {
			return nil, errs.New(errs.TLSExtensionHeaderTooShort, "extension header truncated")
		}
		extType := ExtensionType(bo.Uint16(extensions))
		extBodyLen := int(bo.Uint16(extensions[2:]))
		extensions = extensions[4:]
		if len(extensions) < extBodyLen {
			return nil, errs.New(errs.TLSExtensionLengthInvalid, "extension body overruns extensions block")
		}
		extBody := extensions[:extBodyLen]
		extensions = extensions[extBodyLen:]

		switch extType {
		case ExtensionSupportedVersions:
			if len(extBody) < 2 {
				return nil, errs.New(errs.TLSExtensionLengthInvalid, "supported_versions extension too short")
			}
			if bo.Uint16(extBody) != ProtocolVersionTLS13 {
				return nil, errs.New(errs.TLSServerNotTLS13, "server selected a non-TLS-1.3 version")
			}
			sawVersion = true

		case ExtensionKeyShare:
			if len(extBody) < 4 {
				return nil, errs.New(errs.TLSKeyShareServerHelloInvalid, "key_share extension too short")
			}
			group := NamedGroup(bo.Uint16(extBody))
			keyLen := int(bo.Uint16(extBody[2:]))
			if group != GroupX25519 {
				return nil, errs.New(errs.TLSServerGroupUnsupported, "server key_share did not select x25519")
			}
			if keyLen != 32 || len(extBody) < 4+32 {
				return nil, errs.New(errs.TLSKeyShareServerHelloInvalid, "server x25519 key_share is not 32 bytes")
			}
			copy(result.serverKey[:], extBody[4:4+32])
			sawKey = true
		}
	}

	if cipherSuite != CipherSuiteAES128GCMSHA256 {
		return nil, errs.Newf(errs.TLSUnsupportedCipher, "server selected unsupported cipher suite %s", cipherSuite)
	}
	if !sawVersion {
		return nil, errs.New(errs.TLSServerNotTLS13, "server_hello missing supported_versions extension")
	}
	if !sawKey {
		return nil, errs.New(errs.TLSMissingServerKey, "server_hello missing key_share extension")
	}

	return result, nil
}
