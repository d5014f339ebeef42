// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webengine

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// TransportResponse is the sink a transport hands to NewResponse. It
// supplies the two primitives the engine is allowed to invoke: Send
// (transmit a status line, headers, and body) and End (release/close the
// underlying connection machinery). Both are expected to be idempotent at
// the transport's own discretion; Response enforces idempotency above this
// layer regardless.
type TransportResponse interface {
	Send(status int, reason string, headers []HeaderField, body []byte) error
	End() error
}

const (
	defaultStatus = 200
	defaultReason = "OK"
)

// Response is a buffered status/headers/body wrapper around a
// transport-owned response object. All header/body mutation goes through a
// single mutex; Send and End are each guarded by their own idempotency
// latch (sent, ended) so that, regardless of how many times a handler
// calls them, the transport's Send/End primitives fire at most once each.
//
// A *Response is handed to exactly one worker for the lifetime of a
// request; do not copy it (it embeds mutexes and atomics).
type Response struct {
	mu sync.Mutex // guards status, reason, headers, body

	status  int
	reason  string
	headers []HeaderField
	body    []byte

	sent  atomic.Bool
	ended atomic.Bool

	sendMu sync.Mutex
	endMu  sync.Mutex

	transport TransportResponse
	logger    Logger
}

// NewResponse constructs a Response wrapping sink, with the default
// status 200/"OK" applied per spec.md §3.
func NewResponse(sink TransportResponse) *Response {
	return &Response{
		status:    defaultStatus,
		reason:    defaultReason,
		transport: sink,
		logger:    NoopLogger(),
	}
}

// SetLogger installs the logger used to report swallowed send/end errors.
// Called by the server when it constructs a Response; a nil logger is
// replaced with the package no-op logger.
func (resp *Response) SetLogger(logger Logger) {
	if logger == nil {
		logger = NoopLogger()
	}
	resp.mu.Lock()
	resp.logger = logger
	resp.mu.Unlock()
}

// SetStatus sets the status code and reason phrase.
func (resp *Response) SetStatus(code int, reason string) {
	resp.mu.Lock()
	resp.status = code
	resp.reason = reason
	resp.mu.Unlock()
}

// Status returns the currently set status code.
func (resp *Response) Status() int {
	resp.mu.Lock()
	defer resp.mu.Unlock()
	return resp.status
}

// SetBody replaces the response body.
func (resp *Response) SetBody(body []byte) {
	resp.mu.Lock()
	resp.body = body
	resp.mu.Unlock()
}

// Header returns the first header value matching name (case-insensitive),
// or "" if absent.
func (resp *Response) Header(name string) string {
	resp.mu.Lock()
	defer resp.mu.Unlock()
	for _, h := range resp.headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Body returns a copy of the current response body.
func (resp *Response) Body() []byte {
	resp.mu.Lock()
	defer resp.mu.Unlock()
	out := make([]byte, len(resp.body))
	copy(out, resp.body)
	return out
}

// SetContentType sets the Content-Type header, replacing any existing
// value.
func (resp *Response) SetContentType(contentType string) {
	resp.mu.Lock()
	resp.setHeaderLocked("Content-Type", contentType)
	resp.mu.Unlock()
}

// AddHeader appends a header entry. Unlike SetContentType this does not
// replace an existing value of the same name: repeated calls with the
// same name produce multiple header lines (e.g. for Set-Cookie-like
// use cases via AddCookie).
func (resp *Response) AddHeader(name, value string) {
	resp.mu.Lock()
	resp.headers = append(resp.headers, HeaderField{Name: name, Value: value})
	resp.mu.Unlock()
}

// AddTrailer appends a trailer entry. Streaming and chunked trailers are
// out of scope (spec.md §1 Non-goals); the trailer is appended to the
// header set immediately, exactly like AddHeader, and is sent with the
// other headers rather than as a literal HTTP/1.1 trailer section.
func (resp *Response) AddTrailer(name, value string) {
	resp.AddHeader(name, value)
}

// AddCookie appends a "Set-Cookie: name=value[; attrs...]" header. Cookies
// are not deduplicated; each call produces its own Set-Cookie line.
func (resp *Response) AddCookie(name, value string, attrs ...string) {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
	for _, attr := range attrs {
		b.WriteString("; ")
		b.WriteString(attr)
	}
	resp.AddHeader("Set-Cookie", b.String())
}

// setHeaderLocked replaces the first header matching name (case-
// insensitive), or appends a new one if none exists. Caller must hold mu.
func (resp *Response) setHeaderLocked(name, value string) {
	for i := range resp.headers {
		if strings.EqualFold(resp.headers[i].Name, name) {
			resp.headers[i].Value = value
			return
		}
	}
	resp.headers = append(resp.headers, HeaderField{Name: name, Value: value})
}

func (resp *Response) hasHeaderLocked(name string) bool {
	for _, h := range resp.headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// Send transmits the response exactly once. On the first call it inserts
// default Connection/Content-Length headers for any that are missing,
// then invokes the transport's Send primitive under the send lock. Any
// error from the transport is logged and swallowed; End is still invoked
// afterwards. Subsequent calls are no-ops.
func (resp *Response) Send() {
	if !resp.sent.CompareAndSwap(false, true) {
		return
	}

	resp.mu.Lock()
	if !resp.hasHeaderLocked("Connection") {
		resp.setHeaderLocked("Connection", "close")
	}
	if !resp.hasHeaderLocked("Content-Length") {
		resp.setHeaderLocked("Content-Length", FormatContentLength(len(resp.body)))
	}
	status, reason := resp.status, resp.reason
	headers := make([]HeaderField, len(resp.headers))
	copy(headers, resp.headers)
	body := make([]byte, len(resp.body))
	copy(body, resp.body)
	logger := resp.logger
	resp.mu.Unlock()

	resp.sendMu.Lock()
	err := resp.transport.Send(status, reason, headers, body)
	resp.sendMu.Unlock()

	if err != nil && logger != nil {
		logger.Error(fmt.Sprintf("webengine: response send failed: %v", err))
	}

	resp.End()
}

// End releases the underlying connection exactly once, regardless of how
// many times it is called. Errors from the transport's End primitive are
// logged and swallowed.
func (resp *Response) End() {
	if !resp.ended.CompareAndSwap(false, true) {
		return
	}

	resp.endMu.Lock()
	err := resp.transport.End()
	resp.endMu.Unlock()

	if err != nil {
		resp.mu.Lock()
		logger := resp.logger
		resp.mu.Unlock()
		if logger != nil {
			logger.Error(fmt.Sprintf("webengine: response end failed: %v", err))
		}
	}
}

// IsSent reports whether Send has already fired (successfully entered its
// critical section), regardless of transport outcome.
func (resp *Response) IsSent() bool { return resp.sent.Load() }

// IsEnded reports whether End has already fired.
func (resp *Response) IsEnded() bool { return resp.ended.Load() }

const (
	mimeJSON = "application/json"
	mimeHTML = "text/html"
	mimeText = "text/plain"
)

// sendTyped is the shared implementation behind SendJSON/SendHTML/SendText:
// set Content-Type, set the body, then Send. All header/body mutation
// here happens under the same lock as every other write operation.
func (resp *Response) sendTyped(code int, contentType string, body []byte) {
	resp.mu.Lock()
	resp.status = code
	resp.setHeaderLocked("Content-Type", contentType)
	resp.body = body
	resp.mu.Unlock()
	resp.Send()
}

// SendJSON sets Content-Type: application/json, sets the body, and sends.
func (resp *Response) SendJSON(code int, body []byte) { resp.sendTyped(code, mimeJSON, body) }

// SendHTML sets Content-Type: text/html, sets the body, and sends.
func (resp *Response) SendHTML(code int, body string) {
	resp.sendTyped(code, mimeHTML, []byte(body))
}

// SendText sets Content-Type: text/plain, sets the body, and sends.
func (resp *Response) SendText(code int, body string) {
	resp.sendTyped(code, mimeText, []byte(body))
}
