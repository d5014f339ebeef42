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

import "strings"

// FlowCode is the three-valued control signal returned by every middleware
// and handler in a chain.
type FlowCode int

const (
	// Continue advances to the next handler in the chain.
	Continue FlowCode = iota
	// Exit stops the chain and reports success.
	Exit
	// ErrorFlow stops the chain and reports failure. Handlers returning
	// ErrorFlow should also return a non-nil error (ideally an
	// *HTTPError); a nil error is synthesized into a generic 500.
	ErrorFlow
)

// String renders the flow code for logs and diagnostic messages.
func (f FlowCode) String() string {
	switch f {
	case Continue:
		return "CONTINUE"
	case Exit:
		return "EXIT"
	case ErrorFlow:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// HandlerFunc is both a route handler and a middleware function: given a
// request/response pair, it returns a FlowCode and, for ErrorFlow, an
// associated error (typically an *HTTPError).
type HandlerFunc func(*Request, *Response) (FlowCode, error)

// Route is one (method, pattern, handler chain) binding. Constructing a
// route with an empty handler chain or an empty pattern fails with an
// invalid-argument error (ErrEmptyHandlerChain / ErrEmptyRoutePattern).
type Route struct {
	method   string
	pattern  string
	handlers []HandlerFunc
}

// NewRoute constructs a Route. method is upper-cased; pattern must be
// non-empty; handlers must be non-empty.
func NewRoute(method, pattern string, handlers ...HandlerFunc) (*Route, error) {
	if pattern == "" {
		return nil, ErrEmptyRoutePattern
	}
	if len(handlers) == 0 {
		return nil, ErrEmptyHandlerChain
	}
	return &Route{
		method:   strings.ToUpper(method),
		pattern:  pattern,
		handlers: handlers,
	}, nil
}

// Method returns the route's HTTP method.
func (rt *Route) Method() string { return rt.method }

// Pattern returns the route's path expression.
func (rt *Route) Pattern() string { return rt.pattern }

// Match runs the path-pattern matcher against req.Path(). On a path match
// it stores the captured parameters onto req regardless of whether the
// method also matches (spec.md §4.5's documented, intentional behavior:
// "this is intentional and harmless"). Match returns true only when both
// the method and the pattern match.
func (rt *Route) Match(req *Request) bool {
	ok, params := MatchPath(rt.pattern, req.Path())
	if !ok {
		return false
	}
	req.setPathParams(params)
	return req.Method() == rt.method
}

// Handle runs the handler chain in order. CONTINUE advances to the next
// handler; EXIT or ERROR stop the chain immediately. An unrecognized flow
// code is an invariant violation (ErrInvalidFlowCode), distinct from an
// HTTPError. If the chain runs to completion without an explicit EXIT or
// ERROR, Handle returns (Exit, nil).
func (rt *Route) Handle(req *Request, resp *Response) (FlowCode, error) {
	for _, h := range rt.handlers {
		flow, err := h(req, resp)
		switch flow {
		case Continue:
			continue
		case Exit:
			return Exit, nil
		case ErrorFlow:
			if err == nil {
				err = NewHTTPError("handler reported an error with no diagnostic")
			}
			return ErrorFlow, err
		default:
			return ErrorFlow, ErrInvalidFlowCode
		}
	}
	return Exit, nil
}
