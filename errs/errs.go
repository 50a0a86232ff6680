// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package errs defines the error taxonomy shared across ort's networking,
// TLS, and prompt-orchestration layers, and the wrapping conventions used
// to attach caller context to a Kind.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the level callers actually branch on:
// cancellation vs. a protocol violation vs. an I/O error, etc. Argument
// parsing errors are handled by the cobra layer directly and don't need a
// Kind of their own.
type Kind uint8

// Error kinds, grouped by the subsystem that raises them.
const (
	Other Kind = iota

	// Configuration & history.
	MissingAPIKey
	ConfigParseFailed
	ConfigReadFailed
	MissingHomeDir
	HistoryMissing
	HistoryParseFailed
	HistoryReadFailed

	// Output & streaming.
	QueueDesync
	MissingUsageStats
	ResponseStreamError
	LastWriterError
	FormatError

	// Networking.
	DNSResolveFailed
	SocketConnectFailed
	SocketReadFailed
	SocketWriteFailed
	UnexpectedEOF

	// HTTP chunked transfer decoding.
	ChunkedEOFInSize
	ChunkedInvalidSize
	ChunkedDataReadError

	// HTTP / higher-level protocol.
	HTTPStatusError
	HTTPConnectError

	// TLS handshake / record processing.
	TLSExpectedHandshakeRecord
	TLSExpectedServerHello
	TLSExpectedChangeCipherSpec
	TLSExpectedEncryptedRecords
	TLSBadHandshakeFragment
	TLSFinishedVerifyFailed
	TLSUnsupportedCipher
	TLSAlertReceived
	TLSRecordTooShort
	TLSHandshakeHeaderTooShort
	TLSHandshakeBodyTooShort
	TLSServerHelloTooShort
	TLSServerHelloExtTooShort
	TLSExtensionHeaderTooShort
	TLSExtensionLengthInvalid
	TLSKeyShareServerHelloInvalid
	TLSServerGroupUnsupported
	TLSServerNotTLS13
	TLSMissingServerKey
	TLSAes128GcmDecryptFailed

	// Cancellation.
	Interrupted
)

var kindNames = map[Kind]string{
	Other:                         "other",
	MissingAPIKey:                 "missing_api_key",
	ConfigParseFailed:             "config_parse_failed",
	ConfigReadFailed:              "config_read_failed",
	MissingHomeDir:                "missing_home_dir",
	HistoryMissing:                "history_missing",
	HistoryParseFailed:            "history_parse_failed",
	HistoryReadFailed:             "history_read_failed",
	QueueDesync:                   "queue_desync",
	MissingUsageStats:             "missing_usage_stats",
	ResponseStreamError:           "response_stream_error",
	LastWriterError:               "last_writer_error",
	FormatError:                   "format_error",
	DNSResolveFailed:              "dns_resolve_failed",
	SocketConnectFailed:           "socket_connect_failed",
	SocketReadFailed:              "socket_read_failed",
	SocketWriteFailed:             "socket_write_failed",
	UnexpectedEOF:                 "unexpected_eof",
	ChunkedEOFInSize:              "chunked_eof_in_size",
	ChunkedInvalidSize:            "chunked_invalid_size",
	ChunkedDataReadError:          "chunked_data_read_error",
	HTTPStatusError:               "http_status_error",
	HTTPConnectError:              "http_connect_error",
	TLSExpectedHandshakeRecord:    "tls_expected_handshake_record",
	TLSExpectedServerHello:        "tls_expected_server_hello",
	TLSExpectedChangeCipherSpec:   "tls_expected_change_cipher_spec",
	TLSExpectedEncryptedRecords:   "tls_expected_encrypted_records",
	TLSBadHandshakeFragment:       "tls_bad_handshake_fragment",
	TLSFinishedVerifyFailed:       "tls_finished_verify_failed",
	TLSUnsupportedCipher:          "tls_unsupported_cipher",
	TLSAlertReceived:              "tls_alert_received",
	TLSRecordTooShort:             "tls_record_too_short",
	TLSHandshakeHeaderTooShort:    "tls_handshake_header_too_short",
	TLSHandshakeBodyTooShort:      "tls_handshake_body_too_short",
	TLSServerHelloTooShort:        "tls_server_hello_too_short",
	TLSServerHelloExtTooShort:     "tls_server_hello_ext_too_short",
	TLSExtensionHeaderTooShort:    "tls_extension_header_too_short",
	TLSExtensionLengthInvalid:     "tls_extension_length_invalid",
	TLSKeyShareServerHelloInvalid: "tls_key_share_server_hello_invalid",
	TLSServerGroupUnsupported:     "tls_server_group_unsupported",
	TLSServerNotTLS13:             "tls_server_not_tls13",
	TLSMissingServerKey:           "tls_missing_server_key",
	TLSAes128GcmDecryptFailed:     "tls_aes128_gcm_decrypt_failed",
	Interrupted:                   "interrupted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error pairs a Kind with the context a caller attached, layered over
// Go's standard error wrapping so errors.Is/errors.As keep working
// through fmt.Errorf("%w").
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind with a context message.
func New(kind Kind, context string) error {
	return &Error{Kind: kind, Context: context}
}

// Newf is New with a formatted context message.
func Newf(kind Kind, format string, a ...any) error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, a...)}
}

// Wrap attaches kind and context to an existing error, preserving it as
// the wrapped cause.
func Wrap(kind Kind, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Context: context, Err: err}
}

// Wrapf is Wrap with a formatted context message.
func Wrapf(kind Kind, err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Context: fmt.Sprintf(format, a...), Err: err}
}

// Is reports whether the first *Error in err's chain carries the given
// Kind. Kinds of *Errors wrapped further down that chain are not checked.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of the first *Error in err's chain, returning
// Other if neither err nor any error it wraps is an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}
