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
	"os"
	"path/filepath"
	"testing"
)

// writeFile writes contents to name under dir, for tests that need a real
// file on disk (static serving).
func writeFile(t *testing.T, dir, name, contents string) error {
	t.Helper()
	return os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)
}

// fakeTransportRequest is a minimal TransportRequest for tests that don't
// need a real transport.
type fakeTransportRequest struct {
	method  string
	uri     string
	version string
	body    []byte
	headers []HeaderField
}

func (f *fakeTransportRequest) Method() string         { return f.method }
func (f *fakeTransportRequest) URI() string            { return f.uri }
func (f *fakeTransportRequest) Version() string        { return f.version }
func (f *fakeTransportRequest) Body() []byte           { return f.body }
func (f *fakeTransportRequest) Headers() []HeaderField { return f.headers }

// fakeTransportResponse records every Send/End call it receives, so tests
// can assert exactly-once delivery and inspect what was sent.
type fakeTransportResponse struct {
	sendCount int
	endCount  int

	status  int
	reason  string
	headers []HeaderField
	body    []byte

	sendErr error
	endErr  error
}

func (f *fakeTransportResponse) Send(status int, reason string, headers []HeaderField, body []byte) error {
	f.sendCount++
	f.status = status
	f.reason = reason
	f.headers = headers
	f.body = body
	return f.sendErr
}

func (f *fakeTransportResponse) End() error {
	f.endCount++
	return f.endErr
}

// newTestRequest builds a *Request for method/path with no headers or body,
// via the same NewRequest constructor the server uses.
func newTestRequest(t *testing.T, method, path string) *Request {
	t.Helper()
	return NewRequest(&fakeTransportRequest{method: method, uri: path, version: "HTTP/1.1"})
}

// newTestResponse builds a *Response wired to a fresh fakeTransportResponse,
// discarding the sink (use newTestResponseWithSink to inspect it).
func newTestResponse(t *testing.T) *Response {
	t.Helper()
	return NewResponse(&fakeTransportResponse{})
}

// newTestResponseWithSink is newTestResponse but also returns the sink so
// the test can assert on what was actually sent.
func newTestResponseWithSink(t *testing.T) (*Response, *fakeTransportResponse) {
	t.Helper()
	sink := &fakeTransportResponse{}
	return NewResponse(sink), sink
}

// fakeTransport is a no-op Transport for tests that construct a Server but
// never actually call Listen.
type fakeTransport struct {
	listenErr  error
	stopErr    error
	listenedWith RequestReceiver
}

func (f *fakeTransport) Listen(receiver RequestReceiver) error {
	f.listenedWith = receiver
	return f.listenErr
}

func (f *fakeTransport) Stop() error { return f.stopErr }
