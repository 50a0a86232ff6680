// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package tls

import (
	"net"
	"testing"
	"time"

	"github.com/grahamking/ort-go/crypto/aesgcm"
	"github.com/grahamking/ort-go/crypto/hmac"
	"github.com/grahamking/ort-go/crypto/sha256"
	"github.com/grahamking/ort-go/crypto/x25519"
	"github.com/grahamking/ort-go/errs"
)

// fakeServer performs the server side of one TLS 1.3 handshake by hand over
// conn, using the same primitives as the client (this is test-only code: a
// throwaway in-memory peer, not a second implementation of the protocol).
// When corruptFinished is true, it flips a bit in its own Finished
// verify_data before sending it, to exercise the client's rejection path.
func fakeServer(t *testing.T, conn net.Conn, corruptFinished bool) {
	t.Helper()

	transcript := sha256.New()

	chType, chBody, chWire, err := readHandshakeMessage(conn)
	if err != nil {
		t.Errorf("server: read client_hello: %v", err)
		return
	}
	if chType != HandshakeTypeClientHello {
		t.Errorf("server: expected client_hello, got %v", chType)
		return
	}
	transcript.Write(chWire)

	clientPub, ok := extractClientKeyShare(chBody)
	if !ok {
		t.Errorf("server: client_hello missing key_share")
		return
	}

	var serverPriv [32]byte
	serverPriv[0] = 7 // fixed, deterministic test key
	serverPub := x25519.PublicKey(serverPriv)

	shWire := buildTestServerHello(serverPub)
	if err := writeRecordPlain(conn, ContentTypeHandshake, shWire); err != nil {
		t.Errorf("server: write server_hello: %v", err)
		return
	}
	transcript.Write(shWire)

	if err := writeRecordPlain(conn, ContentTypeChangeCipherSpec, []byte{0x01}); err != nil {
		t.Errorf("server: write change_cipher_spec: %v", err)
		return
	}

	sharedSecret := x25519.ScalarMult(serverPriv, clientPub)
	helloHash := sumTranscript(transcript)
	hs := deriveHandshakeSecrets(sharedSecret, helloHash)
	serverCipher := aesgcm.New(hs.serverHandshakeKeys.key)
	clientCipher := aesgcm.New(hs.clientHandshakeKeys.key)

	preFinishedHash := sumTranscript(transcript)
	finishedData := verifyData(hs.serverHandshakeTrafficSecret, preFinishedHash)
	if corruptFinished {
		finishedData[0] ^= 0x01
	}
	finishedMsg := appendHandshakeHeader(HandshakeTypeFinished, finishedData)

	if err := writeRecordCipher(conn, serverCipher, hs.serverHandshakeKeys.iv, 0, ContentTypeHandshake, finishedMsg); err != nil {
		t.Errorf("server: write server finished: %v", err)
		return
	}
	transcript.Write(finishedMsg)

	if corruptFinished {
		// The client will reject our Finished and close without replying;
		// nothing more to do.
		return
	}

	fullHash := sumTranscript(transcript)
	deriveApplicationSecrets(hs, fullHash)

	// Verify the client's own Finished, then switch to application keys and
	// echo back one application-data record so Read() has something to see.
	_, clientFinishedPlaintext, err := readRecordCipher(conn, clientCipher, hs.clientHandshakeKeys.iv, 0)
	if err != nil {
		t.Errorf("server: read client finished: %v", err)
		return
	}
	expected := verifyData(hs.clientHandshakeTrafficSecret, fullHash)
	if !hmac.Equal(expected, clientFinishedPlaintext[4:]) {
		t.Errorf("server: client finished verify_data mismatch")
		return
	}

	appServerCipher := aesgcm.New(hs.serverApplicationKeys.key)
	appClientCipher := aesgcm.New(hs.clientApplicationKeys.key)

	innerType, payload, err := readRecordCipher(conn, appClientCipher, hs.clientApplicationKeys.iv, 0)
	if err != nil {
		t.Errorf("server: read application data: %v", err)
		return
	}
	if innerType != ContentTypeApplicationData {
		t.Errorf("server: expected application_data, got %v", innerType)
		return
	}

	echo := append([]byte("echo:"), payload...)
	if err := writeRecordCipher(conn, appServerCipher, hs.serverApplicationKeys.iv, 0, ContentTypeApplicationData, echo); err != nil {
		t.Errorf("server: write echo: %v", err)
		return
	}
}

// extractClientKeyShare pulls the x25519 client public key out of a
// client_hello body, for the test server's own use.
func extractClientKeyShare(body []byte) ([32]byte, bool) {
	var zero [32]byte
	pos := 2 + 32
	sessIDLen := int(body[pos])
	pos++
	pos += sessIDLen
	csLen := int(bo.Uint16(body[pos:]))
	pos += 2 + csLen
	compLen := int(body[pos])
	pos++
	pos += compLen
	extLen := int(bo.Uint16(body[pos:]))
	pos += 2
	extensions := body[pos : pos+extLen]
	for len(extensions) > 0 {
		extType := ExtensionType(bo.Uint16(extensions))
		extBodyLen := int(bo.Uint16(extensions[2:]))
		extensions = extensions[4:]
		extBody := extensions[:extBodyLen]
		extensions = extensions[extBodyLen:]
		if extType == ExtensionKeyShare {
			// client_shares list length (2), group (2), key length (2), key.
			keLen := int(bo.Uint16(extBody[4:]))
			var pub [32]byte
			copy(pub[:], extBody[6:6+keLen])
			return pub, true
		}
	}
	return zero, false
}

// buildTestServerHello constructs a minimal well-formed server_hello
// selecting TLS_AES_128_GCM_SHA256 and x25519, carrying serverPub.
func buildTestServerHello(serverPub [32]byte) []byte {
	var body []byte
	body = append(body, 0x03, 0x03)
	var random [32]byte
	body = append(body, random[:]...)
	body = append(body, 0) // empty legacy session id
	body = bo.AppendUint16(body, uint16(CipherSuiteAES128GCMSHA256))
	body = append(body, 0) // compression method: null

	var exts []byte
	exts = appendExtension(exts, ExtensionSupportedVersions, func(b []byte) []byte {
		return bo.AppendUint16(b, ProtocolVersionTLS13)
	})
	exts = appendExtension(exts, ExtensionKeyShare, func(b []byte) []byte {
		b = bo.AppendUint16(b, uint16(GroupX25519))
		return appendUint16LenPrefixed(b, func(b []byte) []byte {
			return append(b, serverPub[:]...)
		})
	})
	body = appendUint16LenPrefixed(body, func(b []byte) []byte {
		return append(b, exts...)
	})

	return appendHandshakeHeader(HandshakeTypeServerHello, body)
}

func TestConnectFullHandshakeAndApplicationData(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeServer(t, serverConn, false)
	}()

	clientConn.SetDeadline(time.Now().Add(5 * time.Second))
	serverConn.SetDeadline(time.Now().Add(5 * time.Second))

	tlsConn, err := Connect(clientConn, "example.com")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := tlsConn.Write([]byte("hi")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 64)
	n, err := tlsConn.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got, want := string(buf[:n]), "echo:hi"; got != want {
		t.Fatalf("Read returned %q, want %q", got, want)
	}

	<-done
}

func TestConnectRejectsBadServerFinished(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeServer(t, serverConn, true)
	}()

	clientConn.SetDeadline(time.Now().Add(5 * time.Second))
	serverConn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err := Connect(clientConn, "example.com")
	if errs.KindOf(err) != errs.TLSFinishedVerifyFailed {
		t.Fatalf("expected TLSFinishedVerifyFailed, got %v", err)
	}

	<-done
}
