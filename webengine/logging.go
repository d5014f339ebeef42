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
	"log/slog"
	"os"
	"sync"
)

// Logger is the logging seam every engine component writes through. It is
// deliberately small: most call sites only need a leveled message, not a
// structured key/value API, so adapters are free to format however they
// like.
type Logger interface {
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Error(msg string)
	Fatal(msg string)
}

// slogLogger adapts Logger onto log/slog. Trace has no slog equivalent and
// is logged at the custom level slog.LevelDebug-4 with a "trace" marker
// attribute; Fatal logs at the custom level slog.LevelError+4 with a
// "fatal" marker attribute and does not terminate the process - callers that want
// process-exit semantics call os.Exit themselves, since a library should
// never unilaterally kill its host process.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing *slog.Logger. A nil logger falls back to
// slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

// NewDefaultLogger builds a Logger backed by a JSON slog handler writing to
// stderr, matching the teacher's own default wiring.
func NewDefaultLogger() Logger {
	handler := slog.NewJSONHandler(os.Stderr, nil)
	return &slogLogger{logger: slog.New(handler)}
}

func (l *slogLogger) Trace(msg string) {
	l.logger.Log(context.Background(), slog.LevelDebug-4, msg, "level", "trace")
}

func (l *slogLogger) Debug(msg string) { l.logger.Debug(msg) }
func (l *slogLogger) Info(msg string)  { l.logger.Info(msg) }
func (l *slogLogger) Error(msg string) { l.logger.Error(msg) }
func (l *slogLogger) Fatal(msg string) { l.logger.Log(context.Background(), slog.LevelError+4, msg, "level", "fatal") }

// noopLogger discards everything. Used as the zero-value default so that
// Request/Response/Server never need a nil check before logging.
type noopLogger struct{}

func (noopLogger) Trace(string) {}
func (noopLogger) Debug(string) {}
func (noopLogger) Info(string)  {}
func (noopLogger) Error(string) {}
func (noopLogger) Fatal(string) {}

var (
	noopLoggerInstance Logger = &noopLogger{}
	noopLoggerOnce     sync.Once
)

// NoopLogger returns the shared no-op Logger singleton.
func NoopLogger() Logger {
	noopLoggerOnce.Do(func() {
		if noopLoggerInstance == nil {
			noopLoggerInstance = &noopLogger{}
		}
	})
	return noopLoggerInstance
}
