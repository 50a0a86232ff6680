// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

// Package httpstream builds the two literal HTTP/1.1 requests this client
// ever sends, parses the response status line and headers, reassembles a
// chunked-transfer body, and decodes it as a server-sent-event stream — all
// directly over a bufreader.Reader, with no net/http import: our transport
// is crypto/tls.Conn, which net/http's client cannot run over, and a
// stdlib-or-third-party HTTP client would just replace the layer this
// module exists to implement.
package httpstream

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/grahamking/ort-go/bufreader"
	"github.com/grahamking/ort-go/errs"
)

const userAgent = "ort/0.1"

const expectedStatusLine = "HTTP/1.1 200 OK"
const chunkedHeader = "Transfer-Encoding: chunked"

// BuildChatCompletionsRequest builds the literal request bytes for a
// streaming chat completion POST to path (e.g. "/api/v1/chat/completions").
func BuildChatCompletionsRequest(host, path, apiKey string, jsonBody []byte) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "POST %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Content-Type: application/json\r\n")
	fmt.Fprintf(&b, "Accept: text/event-stream\r\n")
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	fmt.Fprintf(&b, "Authorization: Bearer %s\r\n", apiKey)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", userAgent)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(jsonBody))
	fmt.Fprintf(&b, "\r\n")
	b.Write(jsonBody)
	return b.Bytes()
}

// BuildListModelsRequest builds the literal request bytes for the model
// listing GET to path (e.g. "/api/v1/models").
func BuildListModelsRequest(host, path, apiKey string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Accept: application/json\r\n")
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	fmt.Fprintf(&b, "Authorization: Bearer %s\r\n", apiKey)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", userAgent)
	fmt.Fprintf(&b, "\r\n")
	return b.Bytes()
}

// trimLine strips a trailing \n and then any trailing \r, the way the
// original's String::trim effectively does for CRLF line endings, without
// also trimming interior whitespace callers might care about.
func trimLine(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line
}

// SkipHeader reads the HTTP status line and headers off r, leaving r
// positioned at the first line of the body. It returns whether the
// response declared Transfer-Encoding: chunked, and fails with
// HTTPStatusError (carrying the status line and, if available, one line
// of body for context) when the status line isn't exactly "HTTP/1.1 200
// OK".
func SkipHeader(r *bufreader.Reader) (chunked bool, err error) {
	statusLine, err := r.ReadLine(nil)
	if err != nil {
		return false, errs.Wrap(errs.HTTPStatusError, "read status line", err)
	}
	if len(statusLine) == 0 {
		return false, errs.New(errs.HTTPStatusError, "missing initial status line")
	}
	status := string(trimLine(statusLine))

	for {
		headerLine, err := r.ReadLine(nil)
		if err != nil {
			return false, errs.Wrap(errs.HTTPStatusError, "read response header", err)
		}
		header := string(trimLine(headerLine))
		if header == "" {
			break
		}
		if header == chunkedHeader {
			chunked = true
		}
	}

	if status != expectedStatusLine {
		var bodyLine []byte
		if chunked {
			// Even an error response respects the transfer encoding it
			// declared: skip the chunk-size line before the body line.
			r.ReadLine(nil)
		}
		bodyLine, _ = r.ReadLine(nil)
		return chunked, errs.Newf(errs.HTTPStatusError, "%s: %s", status, trimLine(bodyLine))
	}

	return chunked, nil
}

// chunkedReader decodes an HTTP chunked-transfer body into a plain byte
// stream, reading chunk-size lines and chunk data off the same
// bufreader.Reader the caller used for the headers. It's an incremental
// io.Reader rather than a read-everything-then-return helper, so callers
// can consume server-sent events line by line as they arrive instead of
// waiting for the whole response.
type chunkedReader struct {
	r         *bufreader.Reader
	remaining int
	done      bool
}

// newChunkedReader wraps r so Read serves successive chunk payloads,
// transparently skipping chunk-size lines, until the terminal zero-size
// chunk, after which Read reports io.EOF.
func newChunkedReader(r *bufreader.Reader) *chunkedReader {
	return &chunkedReader{r: r}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.done {
		return 0, io.EOF
	}
	if c.remaining == 0 {
		if err := c.nextChunkSize(); err != nil {
			return 0, err
		}
		if c.done {
			return 0, io.EOF
		}
	}

	n := len(p)
	if n > c.remaining {
		n = c.remaining
	}
	if err := c.r.ReadExact(p[:n]); err != nil {
		return 0, errs.Wrap(errs.ChunkedDataReadError, "read chunk data", err)
	}
	c.remaining -= n
	return n, nil
}

// nextChunkSize reads (and skips) size lines until it finds a non-blank
// one, to tolerate the CRLF trailing the previous chunk's data.
func (c *chunkedReader) nextChunkSize() error {
	for {
		sizeLine, err := c.r.ReadLine(nil)
		if err != nil {
			return errs.Wrap(errs.ChunkedEOFInSize, "read chunk size line", err)
		}
		sizeStr := string(trimLine(sizeLine))
		if sizeStr == "" {
			if len(sizeLine) == 0 {
				return errs.New(errs.ChunkedEOFInSize, "EOF while reading chunk size")
			}
			continue
		}
		size, err := strconv.ParseInt(sizeStr, 16, 64)
		if err != nil {
			return errs.Wrapf(errs.ChunkedInvalidSize, err, "invalid chunk size %q", sizeStr)
		}
		if size == 0 {
			c.done = true
			return nil
		}
		c.remaining = int(size)
		return nil
	}
}

// Body is the decoded HTTP response body: either the chunked-transfer
// stream reassembled transparently, or the underlying reader used
// directly when the response wasn't chunked.
type Body struct {
	lines *bufreader.Reader
}

// NewBody wraps r (already positioned at the start of the body by
// SkipHeader) according to whether the response was chunked.
func NewBody(r *bufreader.Reader, chunked bool) *Body {
	if !chunked {
		return &Body{lines: r}
	}
	return &Body{lines: bufreader.New(newChunkedReader(r))}
}

// ReadLine returns the next line of the decoded body, CRLF included, or a
// nil, nil result at a clean end of stream.
func (b *Body) ReadLine() ([]byte, error) {
	return b.lines.ReadLine(nil)
}

// Frame is one decoded server-sent-event data frame.
type Frame struct {
	Data string
	Done bool
}

// DecodeSSELine classifies one line of an SSE body: blank lines and
// comment lines (leading ':') are skipped (ok=false); a "data: [DONE]"
// line reports Done; any other "data: " line reports its JSON payload.
// Lines without a "data: " prefix (stray headers, unrecognized fields)
// are also skipped.
func DecodeSSELine(line []byte) (frame Frame, ok bool) {
	trimmed := bytes.TrimRight(trimLine(line), " \t")
	if len(trimmed) == 0 || trimmed[0] == ':' {
		return Frame{}, false
	}
	const prefix = "data: "
	if !bytes.HasPrefix(trimmed, []byte(prefix)) {
		return Frame{}, false
	}
	data := string(trimmed[len(prefix):])
	if data == "[DONE]" {
		return Frame{Done: true}, true
	}
	return Frame{Data: data}, true
}
