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
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// task is a unit of queued work. It never returns an error: a panicking or
// misbehaving task must not take down a worker, let alone the pool.
type task func()

// WorkerPool is a bounded, FIFO task queue serviced by a fixed number of
// long-lived worker goroutines. It is the dispatch mechanism between a
// transport's request-received callback and route handling: enqueueing a
// task never blocks the transport thread; a full queue rejects the task.
type WorkerPool struct {
	tasks chan task

	workers int
	logger  Logger
	diag    func(DiagnosticKind, string, map[string]any)

	group  *errgroup.Group
	cancel context.CancelFunc

	closed    atomic.Bool
	active    atomic.Int64
	submitted atomic.Int64
}

// defaultQueueDepth bounds the FIFO queue when callers do not specify one.
const defaultQueueDepth = 1024

// NewWorkerPool starts a pool with workers goroutines (host parallelism if
// workers <= 0) and a bounded queue of depth queueDepth (defaultQueueDepth
// if queueDepth <= 0). Workers start immediately and run until Shutdown.
func NewWorkerPool(workers, queueDepth int, logger Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}
	if logger == nil {
		logger = NoopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &WorkerPool{
		tasks:   make(chan task, queueDepth),
		workers: workers,
		logger:  logger,
		group:   group,
		cancel:  cancel,
	}

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			p.run(ctx)
			return nil
		})
	}

	return p
}

func (p *WorkerPool) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.exec(t)
		}
	}
}

// exec runs t with panic recovery: a task that panics is logged and
// discarded rather than propagated, matching spec.md §4.7's "no task
// exception propagates out of the pool" invariant.
func (p *WorkerPool) exec(t task) {
	p.active.Add(1)
	defer p.active.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("webengine: worker pool task panicked and was discarded")
		}
	}()

	t()
}

// SetDiagnostics installs the diagnostic sink used to report queue
// saturation. Called by Server once, right after the pool is constructed; a
// pool with no sink installed simply drops the event.
func (p *WorkerPool) SetDiagnostics(emit func(DiagnosticKind, string, map[string]any)) {
	p.diag = emit
}

// Submit enqueues t for execution by some worker. Submit never blocks the
// caller: a full queue is rejected immediately with ErrPoolSaturated rather
// than applying backpressure by blocking, since Submit runs on the
// transport's own callback goroutine and must stay O(1). Returns
// ErrPoolClosed once Shutdown has been called.
func (p *WorkerPool) Submit(t task) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- t:
		p.submitted.Add(1)
		return nil
	default:
		if p.diag != nil {
			p.diag(DiagPoolSaturated, "worker pool queue is full, rejecting task", map[string]any{
				"queue_depth": cap(p.tasks),
			})
		}
		return ErrPoolSaturated
	}
}

// Len reports the number of tasks currently queued but not yet started.
func (p *WorkerPool) Len() int { return len(p.tasks) }

// Active reports the number of tasks currently executing.
func (p *WorkerPool) Active() int64 { return p.active.Load() }

// Submitted reports the cumulative count of tasks ever submitted.
func (p *WorkerPool) Submitted() int64 { return p.submitted.Load() }

// Shutdown stops accepting new tasks, lets already-queued tasks drain, and
// waits for every worker to exit. It is idempotent: a second call returns
// immediately. ctx bounds how long Shutdown waits for drain before
// cancelling remaining workers outright.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.tasks)

	done := make(chan error, 1)
	go func() {
		done <- p.group.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
