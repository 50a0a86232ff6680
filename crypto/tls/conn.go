// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package tls

import (
	"io"

	"github.com/grahamking/ort-go/crypto/aesgcm"
	"github.com/grahamking/ort-go/crypto/hmac"
	"github.com/grahamking/ort-go/crypto/sha256"
	"github.com/grahamking/ort-go/crypto/x25519"
	"github.com/grahamking/ort-go/errs"
)

// Conn is a client-side TLS 1.3 connection layered over a raw byte stream
// (a net.Conn in production, an io.ReadWriter in tests). Once Connect
// returns a Conn, callers use it as an io.Reader/io.Writer for application
// data exactly as they would net.Conn.
type Conn struct {
	raw io.ReadWriter

	clientCipher *aesgcm.Cipher
	serverCipher *aesgcm.Cipher
	clientIV     [12]byte
	serverIV     [12]byte
	clientSeq    uint64
	serverSeq    uint64

	readBuf []byte
}

// Connect performs a full TLS 1.3 client handshake over raw, offering SNI
// name serverName, and returns a Conn ready for application data. raw must
// already be a connected transport (typically a net.Conn dialed to the
// target host:443).
func Connect(raw io.ReadWriter, serverName string) (*Conn, error) {
	transcript := sha256.New()

	hello, err := buildClientHello(serverName)
	if err != nil {
		return nil, err
	}
	if err := writeRecordPlain(raw, ContentTypeHandshake, hello.wire); err != nil {
		return nil, err
	}
	transcript.Write(hello.wire)

	shType, shBody, shWire, err := readHandshakeMessage(raw)
	if err != nil {
		return nil, err
	}
	if shType != HandshakeTypeServerHello {
		return nil, errs.Newf(errs.TLSExpectedServerHello, "expected server_hello, got handshake type %d", shType)
	}
	transcript.Write(shWire)

	serverKeys, err := parseServerHello(shBody)
	if err != nil {
		return nil, err
	}

	sharedSecret := x25519.ScalarMult(hello.privateKey, serverKeys.serverKey)
	helloHash := sumTranscript(transcript)

	hs := deriveHandshakeSecrets(sharedSecret, helloHash)
	clientHSCipher := aesgcm.New(hs.clientHandshakeKeys.key)
	serverHSCipher := aesgcm.New(hs.serverHandshakeKeys.key)

	if err := expectChangeCipherSpec(raw); err != nil {
		return nil, err
	}

	preFinishedHash, serverFinishedVerifyData, err := receiveServerFlight(raw, serverHSCipher, hs.serverHandshakeKeys.iv, transcript)
	if err != nil {
		return nil, err
	}

	expected := verifyData(hs.serverHandshakeTrafficSecret, preFinishedHash)
	if !hmac.Equal(expected, serverFinishedVerifyData) {
		return nil, errs.New(errs.TLSFinishedVerifyFailed, "server Finished verify_data mismatch")
	}

	// receiveServerFlight has already folded the server's Finished message
	// into transcript by the time it returns, so this hash covers
	// CH..ServerFinished and is what application secrets and the client
	// Finished are derived over.
	fullHash := sumTranscript(transcript)
	deriveApplicationSecrets(hs, fullHash)

	clientFinished := verifyData(hs.clientHandshakeTrafficSecret, fullHash)
	finishedMsg := appendHandshakeHeader(HandshakeTypeFinished, clientFinished)
	if err := writeRecordCipher(raw, clientHSCipher, hs.clientHandshakeKeys.iv, 0, ContentTypeHandshake, finishedMsg); err != nil {
		return nil, err
	}

	conn := &Conn{
		raw:          raw,
		clientCipher: aesgcm.New(hs.clientApplicationKeys.key),
		serverCipher: aesgcm.New(hs.serverApplicationKeys.key),
		clientIV:     hs.clientApplicationKeys.iv,
		serverIV:     hs.serverApplicationKeys.iv,
	}
	return conn, nil
}

// sumTranscript reads the running transcript digest without disturbing it
// (Digest.Sum already hashes a private copy), since the handshake needs
// the hash at several points while continuing to feed the same digest
// afterwards.
func sumTranscript(transcript *sha256.Digest) [32]byte {
	var out [32]byte
	copy(out[:], transcript.Sum(nil))
	return out
}

// expectChangeCipherSpec reads and discards the middlebox-compatibility
// dummy ChangeCipherSpec record TLS 1.3 servers still send.
func expectChangeCipherSpec(r io.Reader) error {
	ct, _, err := readRecordPlain(r)
	if err != nil {
		return err
	}
	if ct != ContentTypeChangeCipherSpec {
		return errs.Newf(errs.TLSExpectedChangeCipherSpec, "expected change_cipher_spec, got content type %d", ct)
	}
	return nil
}

// readHandshakeMessage reads one plaintext handshake record containing
// exactly one handshake message and returns its type, body, and full wire
// bytes (header included, for the transcript).
func readHandshakeMessage(r io.Reader) (HandshakeType, []byte, []byte, error) {
	ct, payload, err := readRecordPlain(r)
	if err != nil {
		return 0, nil, nil, err
	}
	if ct != ContentTypeHandshake {
		return 0, nil, nil, errs.Newf(errs.TLSExpectedHandshakeRecord, "expected handshake record, got content type %d", ct)
	}
	if len(payload) < 4 {
		return 0, nil, nil, errs.New(errs.TLSHandshakeHeaderTooShort, "handshake message header truncated")
	}
	typ := HandshakeType(payload[0])
	length := int(payload[1])<<16 | int(payload[2])<<8 | int(payload[3])
	if len(payload) < 4+length {
		return 0, nil, nil, errs.New(errs.TLSHandshakeBodyTooShort, "handshake message body shorter than declared length")
	}
	return typ, payload[4 : 4+length], payload[:4+length], nil
}

// receiveServerFlight reads and decrypts the server's encrypted handshake
// flight (EncryptedExtensions, Certificate, CertificateVerify, Finished —
// in any combination, since this client validates none of them beyond
// Finished), feeding every message into transcript, until it sees the
// Finished message. It returns the transcript hash as of just before that
// message (what the server's own verify_data was computed over) alongside
// the message's verify_data, unverified, for the caller to compare. The
// Finished message itself is folded into transcript before this returns,
// so callers that need the hash including it (application key derivation,
// the client's own Finished) must call sumTranscript again afterwards.
func receiveServerFlight(r io.Reader, cipher *aesgcm.Cipher, iv [12]byte, transcript *sha256.Digest) ([32]byte, []byte, error) {
	var seq uint64
	var pending []byte

	for {
		innerType, plaintext, err := readRecordCipher(r, cipher, iv, seq)
		seq++
		if err != nil {
			return [32]byte{}, nil, err
		}
		if innerType == ContentTypeAlert {
			return [32]byte{}, nil, describeAlert(plaintext)
		}
		if innerType != ContentTypeHandshake {
			continue
		}
		pending = append(pending, plaintext...)

		for len(pending) >= 4 {
			length := int(pending[1])<<16 | int(pending[2])<<8 | int(pending[3])
			if len(pending) < 4+length {
				break // message spans multiple records; wait for more
			}
			msg := pending[:4+length]
			msgType := HandshakeType(pending[0])
			pending = pending[4+length:]

			if msgType == HandshakeTypeFinished {
				preFinishedHash := sumTranscript(transcript)
				transcript.Write(msg)
				return preFinishedHash, msg[4:], nil
			}
			transcript.Write(msg)
		}
	}
}

// describeAlert turns a 2-byte TLS alert record body into an error.
func describeAlert(body []byte) error {
	if len(body) < 2 {
		return errs.New(errs.TLSAlertReceived, "alert record shorter than 2 bytes")
	}
	level, desc := body[0], AlertDescription(body[1])
	return errs.Newf(errs.TLSAlertReceived, "level %d %s", level, desc)
}

// Close closes the underlying transport, if it supports that.
func (c *Conn) Close() error {
	if closer, ok := c.raw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Write encrypts and sends application data.
func (c *Conn) Write(p []byte) (int, error) {
	const maxChunk = maxRecordPayload - 1
	total := 0
	for len(p) > 0 {
		n := len(p)
		if n > maxChunk {
			n = maxChunk
		}
		if err := writeRecordCipher(c.raw, c.clientCipher, c.clientIV, c.clientSeq, ContentTypeApplicationData, p[:n]); err != nil {
			return total, err
		}
		c.clientSeq++
		total += n
		p = p[n:]
	}
	return total, nil
}

// Read serves decrypted application data, transparently skipping
// non-application outer records, dropping post-handshake handshake
// messages (NewSessionTicket and the like), and erroring on an alert.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.readBuf) == 0 {
		innerType, plaintext, err := readRecordCipher(c.raw, c.serverCipher, c.serverIV, c.serverSeq)
		c.serverSeq++
		if err != nil {
			return 0, err
		}
		switch innerType {
		case ContentTypeApplicationData:
			if len(plaintext) == 0 {
				continue
			}
			c.readBuf = plaintext
		case ContentTypeHandshake:
			continue
		case ContentTypeAlert:
			return 0, describeAlert(plaintext)
		default:
			continue
		}
	}
	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}
