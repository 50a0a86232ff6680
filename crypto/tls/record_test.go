// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package tls

import (
	"bytes"
	"testing"

	"github.com/grahamking/ort-go/crypto/aesgcm"
	"github.com/grahamking/ort-go/errs"
)

func TestRecordRoundTripWithMatchingSequence(t *testing.T) {
	var key [16]byte
	var iv [12]byte
	for i := range key {
		key[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(i + 100)
	}
	cipher := aesgcm.New(key)

	var buf bytes.Buffer
	payload := []byte("application data")
	if err := writeRecordCipher(&buf, cipher, iv, 3, ContentTypeApplicationData, payload); err != nil {
		t.Fatalf("writeRecordCipher: %v", err)
	}

	innerType, plaintext, err := readRecordCipher(&buf, cipher, iv, 3)
	if err != nil {
		t.Fatalf("readRecordCipher with matching sequence: %v", err)
	}
	if innerType != ContentTypeApplicationData {
		t.Fatalf("inner type = %v, want application_data", innerType)
	}
	if !bytes.Equal(plaintext, payload) {
		t.Fatalf("plaintext = %q, want %q", plaintext, payload)
	}
}

func TestRecordWrongSequenceFailsToDecrypt(t *testing.T) {
	var key [16]byte
	var iv [12]byte
	for i := range key {
		key[i] = byte(i)
	}
	cipher := aesgcm.New(key)

	var buf bytes.Buffer
	if err := writeRecordCipher(&buf, cipher, iv, 0, ContentTypeApplicationData, []byte("hello")); err != nil {
		t.Fatalf("writeRecordCipher: %v", err)
	}

	_, _, err := readRecordCipher(&buf, cipher, iv, 1)
	if errs.KindOf(err) != errs.TLSAes128GcmDecryptFailed {
		t.Fatalf("expected decrypt failure with wrong sequence, got %v", err)
	}
}

func TestRecordTamperedCiphertextFailsToDecrypt(t *testing.T) {
	var key [16]byte
	var iv [12]byte
	cipher := aesgcm.New(key)

	var buf bytes.Buffer
	if err := writeRecordCipher(&buf, cipher, iv, 0, ContentTypeApplicationData, []byte("hello")); err != nil {
		t.Fatalf("writeRecordCipher: %v", err)
	}

	wire := buf.Bytes()
	wire[len(wire)-1] ^= 0x01 // flip a bit inside the sealed ciphertext+tag

	_, _, err := readRecordCipher(bytes.NewReader(wire), cipher, iv, 0)
	if errs.KindOf(err) != errs.TLSAes128GcmDecryptFailed {
		t.Fatalf("expected decrypt failure with tampered ciphertext, got %v", err)
	}
}
