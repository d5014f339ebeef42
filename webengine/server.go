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
	"sync"
	"sync/atomic"
)

// Connection is the minimal handle a transport exposes to the
// headers-received hook, allowing a handler to reject a connection before
// its body has fully arrived.
type Connection interface {
	Close() error
}

// HeadersReceivedHook is invoked by a transport once it has parsed a
// request's headers but before the body is necessarily complete.
// partialBody is whatever the transport has buffered so far; it must not
// be assumed complete.
type HeadersReceivedHook func(conn Connection, headers []HeaderField, method, uri, version string, partialBody []byte)

// ErrorHook renders a response for an error that reached the server layer
// (an *HTTPError from a handler/router, or anything else wrapped into one).
// It is responsible for status, reason, and body; the server always calls
// resp.Send() afterward regardless of what the hook did.
type ErrorHook func(req *Request, resp *Response, herr *HTTPError)

// RequestReceiver is the callback surface a Transport drives. Server
// implements it; transports are handed a RequestReceiver at Listen time
// and call back into it as I/O events occur.
type RequestReceiver interface {
	OnRequestReceived(tr TransportRequest, tw TransportResponse)
	OnHeadersReceived(conn Connection, headers []HeaderField, method, uri, version string, partialBody []byte)
	OnListenSuccess()
	OnExceptionOccurred(err error)
}

// Transport is the external I/O driver the engine is handed at
// construction. It owns the socket/event loop and HTTP parsing; the engine
// never touches either. Listen blocks (or returns immediately and runs in
// the background, at the transport's discretion) until Stop is called.
type Transport interface {
	Listen(receiver RequestReceiver) error
	Stop() error
}

// Server is the dispatcher: it adapts transport callbacks, owns the
// registered routers and static directories, serves static files,
// dispatches work onto its worker pool, and invokes the unhandled-error
// hook for anything a router didn't already render.
type Server struct {
	transport Transport

	mu           sync.RWMutex
	routers      []*Router
	staticRoots  []string
	sniffStatic  bool
	unmatched    HandlerFunc
	errorHook    ErrorHook
	headersHook  HeadersReceivedHook
	recorder     ObservabilityRecorder
	diagnostics  DiagnosticHandler
	logger       Logger
	pool         *WorkerPool
	poolWorkers  int
	poolQueue    int

	onListen          func()
	onTransportError  func(error)

	frozen atomic.Bool
}

// defaultRouterIndex is where Get/Post/Put/Delete register: the first
// router created alongside the server.
const defaultRouterIndex = 0

// NewServer constructs a Server around transport. A primary router is
// created automatically so Get/Post/Put/Delete have somewhere to register
// without requiring a prior UseRouter call. Options are applied, then the
// configuration is validated eagerly (functional-options-with-validate,
// matching how this codebase has always constructed its core types).
func NewServer(transport Transport, opts ...Option) (*Server, error) {
	s := &Server{
		transport:   transport,
		routers:     []*Router{NewRouter()},
		sniffStatic: true,
		recorder:    NoopRecorder(),
		logger:      NoopLogger(),
	}
	s.unmatched = s.defaultUnmatchedHandler
	s.errorHook = s.defaultErrorHook
	s.routers[defaultRouterIndex].SetDiagnostics(s.emit)

	for _, opt := range opts {
		opt(s)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("webengine: invalid server configuration: %w", err)
	}

	s.pool = NewWorkerPool(s.poolWorkers, s.poolQueue, s.logger)
	s.pool.SetDiagnostics(s.emit)

	return s, nil
}

// MustNewServer is NewServer but panics on error, for callers that treat
// misconfiguration as a startup bug rather than a recoverable condition.
func MustNewServer(transport Transport, opts ...Option) *Server {
	s, err := NewServer(transport, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Server) validate() error {
	if s.transport == nil {
		return ErrNoTransport
	}
	for _, root := range s.staticRoots {
		if root == "" {
			return ErrStaticDirEmpty
		}
	}
	return nil
}

func (s *Server) emit(kind DiagnosticKind, message string, fields map[string]any) {
	s.mu.RLock()
	handler := s.diagnostics
	s.mu.RUnlock()
	if handler == nil {
		return
	}
	handler.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: message, Fields: fields})
}

// UseRouter appends an additional router. Routers are tried in
// registration order; the implicit primary router created by NewServer is
// always first.
func (s *Server) UseRouter(r *Router) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	r.SetDiagnostics(s.emit)
	s.mu.Lock()
	s.routers = append(s.routers, r)
	s.mu.Unlock()
	return nil
}

// UseStatic appends dir to the ordered list of static-asset roots.
func (s *Server) UseStatic(dir string) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	if dir == "" {
		return ErrStaticDirEmpty
	}
	s.mu.Lock()
	s.staticRoots = append(s.staticRoots, dir)
	s.mu.Unlock()
	return nil
}

// UseDefault replaces the unmatched-route handler (default: 404).
func (s *Server) UseDefault(handler HandlerFunc) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	s.mu.Lock()
	s.unmatched = handler
	s.mu.Unlock()
	return nil
}

// UseHeadersReceived installs the headers-received pass-through hook.
func (s *Server) UseHeadersReceived(hook HeadersReceivedHook) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	s.mu.Lock()
	s.headersHook = hook
	s.mu.Unlock()
	return nil
}

// UseError replaces the unhandled-error hook (default: the error's own
// status and reason, with a short "<code> <reason>" body).
func (s *Server) UseError(hook ErrorHook) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	s.mu.Lock()
	s.errorHook = hook
	s.mu.Unlock()
	return nil
}

func (s *Server) primaryRouter() *Router {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routers[defaultRouterIndex]
}

// Get registers a GET route on the primary router.
func (s *Server) Get(pattern string, handlers ...HandlerFunc) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	return s.primaryRouter().AddRoute("GET", pattern, handlers...)
}

// Post registers a POST route on the primary router.
func (s *Server) Post(pattern string, handlers ...HandlerFunc) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	return s.primaryRouter().AddRoute("POST", pattern, handlers...)
}

// Put registers a PUT route on the primary router.
func (s *Server) Put(pattern string, handlers ...HandlerFunc) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	return s.primaryRouter().AddRoute("PUT", pattern, handlers...)
}

// Delete registers a DELETE route on the primary router.
func (s *Server) Delete(pattern string, handlers ...HandlerFunc) error {
	if s.frozen.Load() {
		return ErrServerFrozen
	}
	return s.primaryRouter().AddRoute("DELETE", pattern, handlers...)
}

// Use appends middleware to the primary router's chain. Panics if called
// after Listen, via the underlying Router's own frozen check.
func (s *Server) Use(middleware ...HandlerFunc) {
	s.primaryRouter().Use(middleware...)
}

// Listen freezes the server's configuration and starts the transport.
// onListen and onError are invoked from OnListenSuccess/OnExceptionOccurred
// respectively; either may be nil.
func (s *Server) Listen(onListen func(), onError func(error)) error {
	if !s.frozen.CompareAndSwap(false, true) {
		return ErrServerFrozen
	}
	s.onListen = onListen
	s.onTransportError = onError

	s.mu.RLock()
	routers := make([]*Router, len(s.routers))
	copy(routers, s.routers)
	s.mu.RUnlock()
	for _, rt := range routers {
		rt.Freeze()
	}

	return s.transport.Listen(s)
}

// Stop shuts down the transport and drains the worker pool.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.transport.Stop(); err != nil {
		return err
	}
	return s.pool.Shutdown(ctx)
}
