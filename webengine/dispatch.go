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
	"context"
	"fmt"
)

// OnRequestReceived is the transport callback entry point. It runs on the
// transport's own thread and must do only O(1) work before handing off to
// the worker pool: construct the wrapper objects, validate the method, and
// enqueue.
func (s *Server) OnRequestReceived(tr TransportRequest, tw TransportResponse) {
	req := NewRequest(tr)
	resp := NewResponse(tw)
	resp.SetLogger(s.logger)

	if !ValidMethod(req.Method()) {
		resp.SetStatus(405, "Method Not Allowed")
		resp.SetBody([]byte("405 Method Not Allowed"))
		resp.Send()
		return
	}

	if err := s.pool.Submit(func() { s.requestHandler(req, resp) }); err != nil {
		herr := NewHTTPError("failed to enqueue request: "+err.Error(), WithStatus(500, "Internal Server Error"))
		s.errorHook(req, resp, herr)
		resp.Send()
	}
}

// OnHeadersReceived is a pure pass-through to the installed hook, if any.
func (s *Server) OnHeadersReceived(conn Connection, headers []HeaderField, method, uri, version string, partialBody []byte) {
	s.mu.RLock()
	hook := s.headersHook
	s.mu.RUnlock()
	if hook != nil {
		hook(conn, headers, method, uri, version, partialBody)
	}
}

// OnListenSuccess runs the Listen-supplied onListen callback, if any.
func (s *Server) OnListenSuccess() {
	if s.onListen != nil {
		s.onListen()
	}
}

// OnExceptionOccurred logs a transport-level error and forwards it to the
// Listen-supplied onError callback, if any. The core never attempts to
// recover a transport failure itself.
func (s *Server) OnExceptionOccurred(err error) {
	s.logger.Error(fmt.Sprintf("webengine: transport error: %v", err))
	if s.onTransportError != nil {
		s.onTransportError(err)
	}
}

// requestHandler runs on a worker goroutine. It decides between static
// serving, router dispatch, and the unmatched-route fallback, catches
// anything a route/middleware panicked with, and guarantees exactly one
// Send (which itself guarantees exactly one End).
func (s *Server) requestHandler(req *Request, resp *Response) {
	ctx, state := s.recorder.OnRequestStart(context.Background(), req)
	routePattern := "_unmatched"

	defer func() {
		if r := recover(); r != nil {
			herr := NewHTTPError(fmt.Sprintf("panic in request handler: %v", r))
			s.errorHook(req, resp, herr)
		}
		resp.Send()
		s.recorder.OnRequestEnd(ctx, state, resp, routePattern)
	}()

	s.mu.RLock()
	staticRoots := make([]string, len(s.staticRoots))
	copy(staticRoots, s.staticRoots)
	routers := make([]*Router, len(s.routers))
	copy(routers, s.routers)
	unmatched := s.unmatched
	s.mu.RUnlock()

	if IsStaticAsset(req.Path()) && len(staticRoots) > 0 {
		routePattern = "_static"
		s.serveStatic(req, resp, staticRoots)
		return
	}

	for _, rt := range routers {
		matched, pattern, err := rt.Handle(req, resp)
		if !matched {
			continue
		}
		if pattern != "" {
			routePattern = pattern
		} else {
			routePattern = "_middleware"
		}
		if err != nil {
			s.errorHook(req, resp, AsHTTPError(err))
		}
		return
	}

	if _, err := unmatched(req, resp); err != nil {
		s.errorHook(req, resp, AsHTTPError(err))
	}
}

// defaultUnmatchedHandler implements the spec's default 404.
func (s *Server) defaultUnmatchedHandler(_ *Request, resp *Response) (FlowCode, error) {
	resp.SetStatus(404, "Not Found")
	resp.SetBody([]byte("404 Not Found"))
	return Exit, nil
}

// defaultErrorHook implements the spec's default unhandled-exception
// rendering: status/reason from the HTTPError, a short generic body, and a
// log line. It never calls Send itself; the caller always does.
func (s *Server) defaultErrorHook(req *Request, resp *Response, herr *HTTPError) {
	s.logger.Error(fmt.Sprintf("webengine: request %s %s failed: %v", req.Method(), req.Path(), herr))
	resp.SetStatus(herr.Code(), herr.Reason())
	resp.SetBody([]byte(fmt.Sprintf("%d %s", herr.Code(), herr.Reason())))
}
