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

// Package webengine is an embeddable HTTP request-routing and dispatch
// engine. It accepts already-parsed requests from an external transport,
// matches them against registered routes, runs a middleware/handler chain
// with three-valued flow control, and finalizes the response exactly once.
//
// The engine never opens a socket, parses an HTTP message, or performs TLS;
// those are the Transport implementation's job. webengine's only side
// effects are populating a Response and invoking the Transport's Send/End
// primitives.
//
// # Key pieces
//
//   - Request / Response: one-shot wrappers constructed by copying data out
//     of a transport-owned message, handed to exactly one worker goroutine.
//   - Route / Router: a (method, pattern, handler chain) binding and the
//     ordered middleware-then-first-match-route pipeline around it.
//   - WorkerPool: the bounded FIFO queue that decouples the transport
//     thread from handler execution.
//   - Server: wires a Transport, one or more Routers, static-asset roots,
//     and the worker pool together, and owns the unhandled-error and
//     unmatched-route fallbacks.
//
// A minimal server looks like:
//
//	s, err := webengine.NewServer(myTransport)
//	if err != nil {
//		log.Fatal(err)
//	}
//	s.Get("/users/:id", func(req *webengine.Request, resp *webengine.Response) (webengine.FlowCode, error) {
//		id, _ := req.PathParam("id")
//		resp.SendJSON(200, []byte(`{"id":"`+id+`"}`))
//		return webengine.Exit, nil
//	})
//	if err := s.Listen(nil, nil); err != nil {
//		log.Fatal(err)
//	}
package webengine
