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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/webengine-go/webengine/webengine/compiler"
)

const (
	defaultBloomFilterSize    = 1024
	defaultBloomHashFunctions = 3
)

// Router holds an ordered middleware chain and an ordered set of routes. It
// does not own a transport or a worker pool; Server composes a Router with
// those concerns.
type Router struct {
	mu         sync.RWMutex
	middleware []HandlerFunc
	routes     []*Route

	frozen   atomic.Bool
	compiled *compiler.StaticTable[*Route]

	diag func(DiagnosticKind, string, map[string]any)
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{}
}

// SetDiagnostics installs the diagnostic sink used to report route
// registration and shadowing events. Called by Server when a Router is
// attached to it; a Router with no sink installed simply drops events.
func (rt *Router) SetDiagnostics(emit func(DiagnosticKind, string, map[string]any)) {
	rt.mu.Lock()
	rt.diag = emit
	rt.mu.Unlock()
}

// Use appends middleware to the chain that runs ahead of every route, in
// registration order. Panics if called after Freeze, mirroring the
// frozen-after-listen invariant documented for Server.
func (rt *Router) Use(middleware ...HandlerFunc) {
	if rt.frozen.Load() {
		panic("webengine: Use called on a router frozen by Server.Listen")
	}
	rt.mu.Lock()
	rt.middleware = append(rt.middleware, middleware...)
	rt.mu.Unlock()
}

// AddRoute registers a route. Returns the same construction errors as
// NewRoute (ErrEmptyRoutePattern, ErrEmptyHandlerChain). Panics if called
// after Freeze, mirroring the frozen-after-listen invariant documented for
// Server.
func (rt *Router) AddRoute(method, pattern string, handlers ...HandlerFunc) error {
	if rt.frozen.Load() {
		panic("webengine: AddRoute called on a router frozen by Server.Listen")
	}
	route, err := NewRoute(method, pattern, handlers...)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	shadowed := false
	for _, existing := range rt.routes {
		if existing.Method() == route.Method() && existing.Pattern() == route.Pattern() {
			shadowed = true
			break
		}
	}
	rt.routes = append(rt.routes, route)
	diag := rt.diag
	rt.mu.Unlock()

	if diag == nil {
		return nil
	}
	if shadowed {
		diag(DiagRouteShadowed, "route shadowed by an earlier identical registration", map[string]any{
			"method": method, "pattern": pattern,
		})
	} else {
		diag(DiagRouteRegistered, "route registered", map[string]any{
			"method": method, "pattern": pattern,
		})
	}
	return nil
}

// RouteExists reports whether any registered route's pattern matches path
// for the given method, independent of whether it would actually be
// selected first (SPEC_FULL.md §9: introspection helper, no side effects
// on req since there is no req here).
func (rt *Router) RouteExists(method, path string) bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for _, route := range rt.routes {
		if route.Method() != method {
			continue
		}
		if ok, _ := MatchPath(route.Pattern(), path); ok {
			return true
		}
	}
	return false
}

// isLiteralPattern reports whether pattern contains no named-parameter or
// wildcard segments, i.e. MatchPath's fast path (exact normalized-string
// equality) is the entirety of its matching behavior.
func isLiteralPattern(pattern string) bool {
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "*" || strings.HasPrefix(seg, ":") {
			return false
		}
	}
	return true
}

// Freeze compiles a static lookup table for any HTTP method whose routes
// are entirely literal (no ":" or "*" segments), so that requests to those
// methods resolve in O(1) instead of a linear scan. Methods that mix
// literal and parameterized routes are left out of the table entirely and
// keep using the always-correct linear scan in Handle, since a compiled
// shortcut could otherwise let a later-registered literal route win over
// an earlier-registered parameterized one that also matches the same path.
//
// Freeze is idempotent and safe to call multiple times; only the first
// call has effect. Server calls it for every router during Listen.
func (rt *Router) Freeze() {
	if !rt.frozen.CompareAndSwap(false, true) {
		return
	}

	rt.mu.RLock()
	routes := make([]*Route, len(rt.routes))
	copy(routes, rt.routes)
	rt.mu.RUnlock()

	dynamicMethods := make(map[string]bool)
	for _, route := range routes {
		if !isLiteralPattern(route.Pattern()) {
			dynamicMethods[route.Method()] = true
		}
	}

	table := compiler.NewStaticTable[*Route](defaultBloomFilterSize, defaultBloomHashFunctions)
	for _, route := range routes {
		if dynamicMethods[route.Method()] || !isLiteralPattern(route.Pattern()) {
			continue
		}
		table.Add(route.Method(), NormalizePath(route.Pattern()), route)
	}
	table.Freeze()

	rt.mu.Lock()
	rt.compiled = table
	rt.mu.Unlock()
}

// Handle runs the middleware chain followed by the first matching route,
// per spec.md §4.6:
//  1. Run every middleware in registration order. CONTINUE advances; EXIT
//     stops the whole pipeline successfully (the middleware itself is
//     responsible for any response it wants sent); ERROR stops the pipeline
//     and is returned as the error.
//  2. If all middleware continued, scan routes in registration order and
//     dispatch the first one whose Match(req) succeeds.
//  3. If no route matches, Handle returns (false, nil): the caller (Server)
//     is responsible for the unmatched-route fallback.
//
// Handle never calls resp.Send/End itself; that is the handler chain's and
// the caller's responsibility. pattern identifies which route handled the
// request (empty if middleware short-circuited, or no route matched).
func (rt *Router) Handle(req *Request, resp *Response) (matched bool, pattern string, err error) {
	rt.mu.RLock()
	middleware := make([]HandlerFunc, len(rt.middleware))
	copy(middleware, rt.middleware)
	routes := make([]*Route, len(rt.routes))
	copy(routes, rt.routes)
	compiled := rt.compiled
	rt.mu.RUnlock()

	for _, mw := range middleware {
		flow, mwErr := mw(req, resp)
		switch flow {
		case Continue:
			continue
		case Exit:
			return true, "", nil
		case ErrorFlow:
			if mwErr == nil {
				mwErr = NewHTTPError("middleware reported an error with no diagnostic")
			}
			return true, "", mwErr
		default:
			return true, "", ErrInvalidFlowCode
		}
	}

	if compiled != nil {
		if route, ok := compiled.Lookup(req.Method(), req.Path()); ok {
			_, handleErr := route.Handle(req, resp)
			return true, route.Pattern(), handleErr
		}
	}

	for _, route := range routes {
		if !route.Match(req) {
			continue
		}
		_, handleErr := route.Handle(req, resp)
		return true, route.Pattern(), handleErr
	}

	return false, "", nil
}
