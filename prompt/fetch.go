// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	"log/slog"
	"net"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sys/unix"

	"github.com/grahamking/ort-go/bufreader"
	"github.com/grahamking/ort-go/crypto/tls"
	"github.com/grahamking/ort-go/errs"
	"github.com/grahamking/ort-go/httpstream"
	"github.com/grahamking/ort-go/queue"
	"github.com/grahamking/ort-go/site"
)

const connectTimeout = 2 * time.Second

// dial connects to the first reachable address in addrs (host:port pairs),
// enabling TCP_FASTOPEN on the winning socket.
func dial(addrs []string) (net.Conn, error) {
	var failures string
	for _, addr := range addrs {
		conn, err := net.DialTimeout("tcp", addr, connectTimeout)
		if err != nil {
			if failures != "" {
				failures += "; "
			}
			failures += "connecting to " + addr + ": " + err.Error()
			continue
		}
		setTCPFastOpen(conn)
		return conn, nil
	}
	return nil, errs.New(errs.SocketConnectFailed, failures)
}

func setTCPFastOpen(conn net.Conn) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	raw, err := tcpConn.SyscallConn()
	if err != nil {
		return
	}
	raw.Control(func(fd uintptr) {
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN, 1)
	})
}

// resolveAddrs turns a list of dotted-quad IPs from config (or nil) into
// "host:443" dial targets, falling back to the site's own hostname when
// none are configured — the system resolver then handles it.
func resolveAddrs(s site.Site, dns []string) []string {
	if len(dns) == 0 {
		return []string{net.JoinHostPort(s.Host, "443")}
	}
	addrs := make([]string, len(dns))
	for i, ip := range dns {
		addrs[i] = net.JoinHostPort(ip, "443")
	}
	return addrs
}

func connectTLS(s site.Site, dns []string) (*tls.Conn, error) {
	addrs := resolveAddrs(s, dns)
	slog.Debug("dialing", "host", s.Host, "addrs", addrs)
	conn, err := dial(addrs)
	if err != nil {
		return nil, err
	}
	tlsConn, err := tls.Connect(conn, s.Host)
	if err != nil {
		conn.Close()
		return nil, errs.Wrap(errs.HTTPConnectError, "TLS handshake", err)
	}
	slog.Debug("tls handshake complete", "host", s.Host)
	return tlsConn, nil
}

// chatCompletionsResponse is one OpenAI-streaming-format SSE data chunk.
type chatCompletionsResponse struct {
	Model    string   `json:"model,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Choices  []choice `json:"choices,omitempty"`
	Usage    *usage   `json:"usage,omitempty"`
}

type choice struct {
	Delta delta `json:"delta"`
}

type delta struct {
	Content   *string `json:"content,omitempty"`
	Reasoning *string `json:"reasoning,omitempty"`
}

type usage struct {
	Cost float64 `json:"cost"`
}

// Fetch runs one streaming chat-completions request against s and emits
// Response values to q until the stream ends, is cancelled, or an error
// occurs. It's intended to run in its own goroutine, with q already shared
// with the renderer goroutines via q.Consumer().
func Fetch(s site.Site, apiKey string, dns []string, cancel *CancelToken, opts PromptOpts, messages []Message, q *queue.Queue[Response]) {
	defer q.Close()

	body, err := BuildBody(opts, messages)
	if err != nil {
		q.Add(Response{Kind: RespError, Err: err.Error()})
		return
	}

	start := time.Now()

	tlsConn, err := connectTLS(s, dns)
	if err != nil {
		q.Add(Response{Kind: RespError, Err: err.Error()})
		return
	}
	defer tlsConn.Close()

	req := httpstream.BuildChatCompletionsRequest(s.Host, s.ChatCompletionsPath, apiKey, body)
	if _, err := tlsConn.Write(req); err != nil {
		q.Add(Response{Kind: RespError, Err: errs.Wrap(errs.SocketWriteFailed, "send request", err).Error()})
		return
	}
	slog.Debug("request sent", "model", opts.Model, "bytes", len(body))

	r := bufreader.New(tlsConn)
	chunked, err := httpstream.SkipHeader(r)
	if err != nil {
		q.Add(Response{Kind: RespError, Err: err.Error()})
		return
	}
	respBody := httpstream.NewBody(r, chunked)

	var stats Stats
	var tokenStreamStart time.Time
	var numTokens int64
	isStart := true
	isFirstReasoning := true
	isFirstContent := true

	for {
		if cancel.Cancelled() {
			break
		}

		line, err := respBody.ReadLine()
		if err != nil {
			q.Add(Response{Kind: RespError, Err: errs.Wrapf(errs.UnexpectedEOF, err, "stream read error").Error()})
			return
		}
		if line == nil {
			break
		}

		if isStart {
			q.Add(Response{Kind: RespStart})
			isStart = false
		}

		frame, ok := httpstream.DecodeSSELine(line)
		if !ok {
			continue
		}
		if frame.Done {
			break
		}

		var v chatCompletionsResponse
		if err := json.Unmarshal([]byte(frame.Data), &v); err != nil {
			// Ignore malformed server-sent diagnostics; keep streaming.
			continue
		}
		if len(v.Choices) == 0 {
			continue
		}
		d := v.Choices[len(v.Choices)-1].Delta

		hasReasoning := d.Reasoning != nil && *d.Reasoning != ""
		hasContent := d.Content != nil && *d.Content != ""
		hasUsage := v.Usage != nil
		if !hasReasoning && !hasContent && !hasUsage {
			continue
		}

		if stats.TimeToFirstToken == 0 {
			stats.TimeToFirstToken = time.Since(start)
			tokenStreamStart = time.Now()
		}

		if hasReasoning {
			numTokens++
			if isFirstReasoning {
				if isBlank(*d.Reasoning) {
					continue
				}
				q.Add(Response{Kind: RespThink, Think: ThinkEvent{Kind: ThinkStart}})
				isFirstReasoning = false
			}
			q.Add(Response{Kind: RespThink, Think: ThinkEvent{Kind: ThinkContent, Text: *d.Reasoning}})
		}

		if hasContent {
			numTokens++
			if isFirstContent && isBlank(*d.Content) {
				continue
			}
			if !isFirstReasoning && isFirstContent {
				q.Add(Response{Kind: RespThink, Think: ThinkEvent{Kind: ThinkStop}})
			}
			isFirstContent = false
			q.Add(Response{Kind: RespContent, Text: *d.Content})
		}

		if hasUsage {
			stats.CostInCents = v.Usage.Cost * 100.0
			stats.Provider = v.Provider
			stats.UsedModel = v.Model
		}
	}

	if cancel.Cancelled() {
		q.Add(Response{Kind: RespError, Err: "Interrupted"})
		return
	}

	stats.ElapsedTime = time.Since(start)
	if !tokenStreamStart.IsZero() {
		tokens := numTokens
		if tokens < 1 {
			tokens = 1
		}
		stats.InterTokenLatencyMs = time.Since(tokenStreamStart).Milliseconds() / tokens
	}
	slog.Debug("stream finished", "tokens", numTokens, "elapsed", stats.ElapsedTime)
	q.Add(Response{Kind: RespStats, Stats: stats})
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
	}
	return true
}

// ListModels issues a non-streaming GET for the provider's model list and
// returns the raw JSON body.
func ListModels(s site.Site, apiKey string, dns []string) ([]byte, error) {
	tlsConn, err := connectTLS(s, dns)
	if err != nil {
		return nil, err
	}
	defer tlsConn.Close()

	req := httpstream.BuildListModelsRequest(s.Host, s.ModelsPath, apiKey)
	if _, err := tlsConn.Write(req); err != nil {
		return nil, errs.Wrap(errs.SocketWriteFailed, "send request", err)
	}

	r := bufreader.New(tlsConn)
	chunked, err := httpstream.SkipHeader(r)
	if err != nil {
		return nil, err
	}
	body := httpstream.NewBody(r, chunked)

	var out []byte
	for {
		line, err := body.ReadLine()
		if err != nil {
			return nil, errs.Wrap(errs.UnexpectedEOF, "reading models body", err)
		}
		if line == nil {
			break
		}
		out = append(out, line...)
	}
	return out, nil
}
