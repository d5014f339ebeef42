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

// DiagnosticEvent is an informational engine event. Diagnostics never
// affect control flow: the engine behaves identically whether or not a
// DiagnosticHandler is installed.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagRouteRegistered fires once per successful AddRoute call.
	DiagRouteRegistered DiagnosticKind = "route_registered"
	// DiagRouteShadowed fires when a newly added route's (method, pattern)
	// exactly duplicates an already-registered route; first-match
	// semantics mean the earlier route always wins.
	DiagRouteShadowed DiagnosticKind = "route_shadowed"
	// DiagMethodNotAllowed names the case of a request whose path matches
	// at least one route pattern but no route for that method. No engine
	// component emits it: such a request falls through to the
	// unmatched-route handler without a diagnostic.
	DiagMethodNotAllowed DiagnosticKind = "method_not_allowed"
	// DiagStaticTraversalBlocked fires when a static request's resolved
	// path would have escaped the configured static root.
	DiagStaticTraversalBlocked DiagnosticKind = "static_traversal_blocked"
	// DiagPoolSaturated fires when Submit rejects a task with
	// ErrPoolSaturated because the worker pool's queue was full.
	DiagPoolSaturated DiagnosticKind = "pool_saturated"
)

// DiagnosticHandler receives diagnostic events emitted by a Server. If no
// handler is installed, diagnostics are silently dropped.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a plain function to DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

// OnDiagnostic calls f.
func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }
