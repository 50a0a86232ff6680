// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package tls implements a from-scratch TLS 1.3 client restricted to the
// single cipher suite TLS_AES_128_GCM_SHA256 over the x25519 key-exchange
// group. It never imports the standard library's crypto/tls, crypto/aes,
// crypto/cipher, or crypto/ecdh, or any third-party crypto library: every
// primitive comes from this module's crypto/sha256, crypto/hmac,
// crypto/hkdf, crypto/x25519, and crypto/aesgcm packages.
//
// There is no certificate validation, no session resumption, no 0-RTT,
// no renegotiation, and no other cipher suite or key-exchange group. This
// client only ever talks to a server willing to negotiate exactly the one
// suite it offers.
package tls

import "fmt"

// ContentType is a record layer outer content type.
type ContentType uint8

// Record layer content types.
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

func (ct ContentType) String() string {
	switch ct {
	case ContentTypeChangeCipherSpec:
		return "change_cipher_spec"
	case ContentTypeAlert:
		return "alert"
	case ContentTypeHandshake:
		return "handshake"
	case ContentTypeApplicationData:
		return "application_data"
	default:
		return fmt.Sprintf("{ContentType %d}", uint8(ct))
	}
}

// HandshakeType is a handshake message type.
type HandshakeType uint8

// Handshake message types this client emits or parses.
const (
	HandshakeTypeClientHello HandshakeType = 1
	HandshakeTypeServerHello HandshakeType = 2
	HandshakeTypeFinished    HandshakeType = 20
)

func (ht HandshakeType) String() string {
	switch ht {
	case HandshakeTypeClientHello:
		return "client_hello"
	case HandshakeTypeServerHello:
		return "server_hello"
	case HandshakeTypeFinished:
		return "finished"
	default:
		return fmt.Sprintf("{HandshakeType %d}", uint8(ht))
	}
}

// CipherSuite identifies a TLS 1.3 cipher suite. This client advertises
// and accepts exactly one.
type CipherSuite uint16

// CipherSuiteAES128GCMSHA256 is the only cipher suite this client speaks.
const CipherSuiteAES128GCMSHA256 CipherSuite = 0x1301

func (cs CipherSuite) String() string {
	if cs == CipherSuiteAES128GCMSHA256 {
		return "TLS_AES_128_GCM_SHA256"
	}
	return fmt.Sprintf("{CipherSuite 0x%04x}", uint16(cs))
}

// NamedGroup identifies a key-exchange group. This client advertises and
// accepts exactly one.
type NamedGroup uint16

// GroupX25519 is the only key-exchange group this client speaks.
const GroupX25519 NamedGroup = 0x001d

func (g NamedGroup) String() string {
	if g == GroupX25519 {
		return "x25519"
	}
	return fmt.Sprintf("{NamedGroup 0x%04x}", uint16(g))
}

// ExtensionType identifies a ClientHello/ServerHello extension.
type ExtensionType uint16

// Extension types this client sends or reads.
const (
	ExtensionServerName        ExtensionType = 0
	ExtensionSupportedGroups   ExtensionType = 10
	ExtensionSignatureAlgs     ExtensionType = 13
	ExtensionSupportedVersions ExtensionType = 43
	ExtensionKeyShare          ExtensionType = 51
)

// ProtocolVersionTLS13 is the supported_versions value this client
// requires the server to select.
const ProtocolVersionTLS13 uint16 = 0x0304

// legacyRecordVersion is the record-layer version field value TLS 1.3
// still sends for middlebox compatibility.
const legacyRecordVersion uint16 = 0x0303

// AlertDescription is the one-byte alert description field.
type AlertDescription uint8

func (d AlertDescription) String() string {
	return fmt.Sprintf("alert(%d)", uint8(d))
}

// aeadTagSize is the GCM authentication tag length.
const aeadTagSize = 16
