// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package tls

import (
	"io"

	"github.com/grahamking/ort-go/crypto/aesgcm"
	"github.com/grahamking/ort-go/errs"
)

// recordHeaderSize is the 5-byte TLS record layer header: 1-byte content
// type, 2-byte legacy version, 2-byte length.
const recordHeaderSize = 5

// maxRecordPayload bounds a single record's plaintext length (payload plus
// inner content type byte). An encrypted record on the wire may exceed it
// by up to 256 bytes of AEAD expansion (RFC 8446 section 5.2), which
// readRecordPlain allows for.
const maxRecordPayload = 1 << 14

// writeRecordPlain writes one unencrypted record: used only for the
// ClientHello and for the dummy ChangeCipherSpec this client never
// actually reads meaning from.
func writeRecordPlain(w io.Writer, ct ContentType, payload []byte) error {
	header := recordHeader(ct, len(payload))
	if _, err := w.Write(header); err != nil {
		return errs.Wrap(errs.SocketWriteFailed, "write record header", err)
	}
	if _, err := w.Write(payload); err != nil {
		return errs.Wrap(errs.SocketWriteFailed, "write record payload", err)
	}
	return nil
}

// readRecordPlain reads one record without decryption, returning its
// content type and payload.
func readRecordPlain(r io.Reader) (ContentType, []byte, error) {
	var header [recordHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, errs.Wrap(errs.SocketReadFailed, "read record header", err)
	}
	ct := ContentType(header[0])
	length := int(bo.Uint16(header[3:5]))
	if length > maxRecordPayload+256 {
		return 0, nil, errs.Newf(errs.TLSRecordTooShort, "record length %d exceeds maximum", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, errs.Wrap(errs.SocketReadFailed, "read record payload", err)
	}
	return ct, payload, nil
}

// recordHeader builds the 5-byte outer record header for a record carrying
// a payload of the given length.
func recordHeader(ct ContentType, payloadLen int) []byte {
	header := make([]byte, recordHeaderSize)
	header[0] = byte(ct)
	bo.PutUint16(header[1:3], legacyRecordVersion)
	bo.PutUint16(header[3:5], uint16(payloadLen))
	return header
}

// recordNonce computes the per-record AEAD nonce: the direction's
// fixed iv XORed with the big-endian 64-bit sequence number, left-padded
// with zeros to the iv's length, per RFC 8446 section 5.3.
func recordNonce(iv [12]byte, seq uint64) [12]byte {
	var seqBytes [12]byte
	bo.PutUint64(seqBytes[4:], seq)
	var nonce [12]byte
	for i := range nonce {
		nonce[i] = iv[i] ^ seqBytes[i]
	}
	return nonce
}

// writeRecordCipher seals innerContent (the TLSInnerPlaintext: the real
// content type appended as one extra byte after the payload) and writes it
// as a single record with outer type application_data, per RFC 8446
// section 5.2.
func writeRecordCipher(w io.Writer, cipher *aesgcm.Cipher, iv [12]byte, seq uint64, innerType ContentType, payload []byte) error {
	inner := make([]byte, 0, len(payload)+1)
	inner = append(inner, payload...)
	inner = append(inner, byte(innerType))

	ciphertextLen := len(inner) + aeadTagSize
	aad := recordHeader(ContentTypeApplicationData, ciphertextLen)

	nonce := recordNonce(iv, seq)
	sealed := cipher.Seal(nonce, inner, aad)

	if _, err := w.Write(aad); err != nil {
		return errs.Wrap(errs.SocketWriteFailed, "write encrypted record header", err)
	}
	if _, err := w.Write(sealed); err != nil {
		return errs.Wrap(errs.SocketWriteFailed, "write encrypted record payload", err)
	}
	return nil
}

// readRecordCipher reads one outer record and, if it is application_data,
// opens it and returns the inner content type and plaintext payload with
// the inner type byte stripped. Non-application_data outer records (an
// interleaved alert, say) are returned with their outer type and raw
// payload, since they were never encrypted under this key.
func readRecordCipher(r io.Reader, cipher *aesgcm.Cipher, iv [12]byte, seq uint64) (ContentType, []byte, error) {
	outerType, raw, err := readRecordPlain(r)
	if err != nil {
		return 0, nil, err
	}
	if outerType != ContentTypeApplicationData {
		return outerType, raw, nil
	}
	if len(raw) < aeadTagSize {
		return 0, nil, errs.New(errs.TLSRecordTooShort, "encrypted record shorter than the AEAD tag")
	}

	aad := recordHeader(ContentTypeApplicationData, len(raw))
	nonce := recordNonce(iv, seq)
	plain, err := cipher.Open(nonce, raw, aad)
	if err != nil {
		return 0, nil, errs.Wrap(errs.TLSAes128GcmDecryptFailed, "open encrypted record", err)
	}

	// Strip trailing zero-padding (none generated by this client's peer
	// path, but RFC 8446 permits it) by walking back to the first non-zero
	// byte, which is the real inner content type.
	i := len(plain) - 1
	for i >= 0 && plain[i] == 0 {
		i--
	}
	if i < 0 {
		return 0, nil, errs.New(errs.TLSRecordTooShort, "encrypted record plaintext is all zero padding")
	}
	innerType := ContentType(plain[i])
	return innerType, plain[:i], nil
}
