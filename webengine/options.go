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

// Option configures a Server at construction time, applied in NewServer
// before validate() runs.
type Option func(*Server)

// WithWorkerPool sets the worker pool's goroutine count and queue depth.
// workers <= 0 means host hardware parallelism; queueDepth <= 0 means
// defaultQueueDepth.
//
// Example:
//
//	s, err := webengine.NewServer(transport, webengine.WithWorkerPool(16, 4096))
func WithWorkerPool(workers, queueDepth int) Option {
	return func(s *Server) {
		s.poolWorkers = workers
		s.poolQueue = queueDepth
	}
}

// WithStaticMIMESniffing toggles content-sniffing fallback for static
// assets whose extension is unrecognized (default: enabled). When
// disabled, unrecognized extensions are always served as
// application/octet-stream.
func WithStaticMIMESniffing(enabled bool) Option {
	return func(s *Server) {
		s.sniffStatic = enabled
	}
}

// WithObservabilityRecorder installs the lifecycle recorder used for
// tracing/metrics. The default is NoopRecorder(); combine multiple
// recorders with CombineRecorders.
func WithObservabilityRecorder(recorder ObservabilityRecorder) Option {
	return func(s *Server) {
		if recorder == nil {
			recorder = NoopRecorder()
		}
		s.recorder = recorder
	}
}

// WithDiagnostics installs a handler for informational diagnostic events.
// Diagnostics never affect request handling; the default is to drop them.
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(s *Server) {
		s.diagnostics = handler
	}
}

// WithLogger installs the Logger used for internal error/info messages.
// The default is NoopLogger(); pass NewDefaultLogger() or NewSlogLogger
// for real output.
func WithLogger(logger Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = NoopLogger()
		}
		s.logger = logger
	}
}

// WithErrorHook installs the unhandled-error hook at construction time.
// Equivalent to calling UseError after NewServer, except it also applies
// before the first validate() pass.
func WithErrorHook(hook ErrorHook) Option {
	return func(s *Server) {
		if hook != nil {
			s.errorHook = hook
		}
	}
}

// WithDefaultHandler installs the unmatched-route handler at construction
// time. Equivalent to UseDefault.
func WithDefaultHandler(handler HandlerFunc) Option {
	return func(s *Server) {
		if handler != nil {
			s.unmatched = handler
		}
	}
}

// WithStaticRoot appends a static-asset root directory at construction
// time. Equivalent to UseStatic, usable before the server exists.
func WithStaticRoot(dir string) Option {
	return func(s *Server) {
		s.staticRoots = append(s.staticRoots, dir)
	}
}
