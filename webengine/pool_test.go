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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolExecutesSubmittedTasks(t *testing.T) {
	t.Parallel()

	p := NewWorkerPool(2, 16, NoopLogger())
	defer p.Shutdown(context.Background())

	var wg sync.WaitGroup
	var counter int64
	var mu sync.Mutex
	const n = 50
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			counter++
			mu.Unlock()
		}))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.EqualValues(t, n, counter)
	assert.EqualValues(t, n, p.Submitted())
}

func TestWorkerPoolSingleWorkerPreservesFIFOOrder(t *testing.T) {
	t.Parallel()

	p := NewWorkerPool(1, 16, NoopLogger())
	defer p.Shutdown(context.Background())

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, order, "a single worker must service the queue in submission order")
}

func TestWorkerPoolRecoversPanickingTask(t *testing.T) {
	t.Parallel()

	p := NewWorkerPool(1, 4, NoopLogger())
	defer p.Shutdown(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(func() {
		panic("boom")
	}))
	require.NoError(t, p.Submit(func() {
		wg.Done()
	}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover from panic and continue processing")
	}
}

func TestWorkerPoolSubmitAfterShutdownFails(t *testing.T) {
	t.Parallel()

	p := NewWorkerPool(1, 4, NoopLogger())
	require.NoError(t, p.Shutdown(context.Background()))

	err := p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPoolSubmitRejectsWhenQueueFull(t *testing.T) {
	t.Parallel()

	// No workers actually drain the queue here: the single worker is kept
	// busy on a blocking task so the queue of depth 1 fills and stays full.
	p := NewWorkerPool(1, 1, NoopLogger())
	defer p.Shutdown(context.Background())

	var events []DiagnosticEvent
	var mu sync.Mutex
	p.SetDiagnostics(func(kind DiagnosticKind, msg string, fields map[string]any) {
		mu.Lock()
		events = append(events, DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
		mu.Unlock()
	})

	started := make(chan struct{})
	block := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-block
	}))
	defer close(block)
	<-started // wait until the worker has dequeued task 1, so the queue is genuinely empty before task 2

	require.NoError(t, p.Submit(func() {}))

	err := p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolSaturated, "Submit must reject immediately rather than block the caller")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, DiagPoolSaturated, events[0].Kind)
}

func TestWorkerPoolShutdownIsIdempotent(t *testing.T) {
	t.Parallel()

	p := NewWorkerPool(1, 4, NoopLogger())
	require.NoError(t, p.Shutdown(context.Background()))
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestWorkerPoolShutdownDrainsQueuedTasks(t *testing.T) {
	t.Parallel()

	p := NewWorkerPool(1, 16, NoopLogger())

	var ran atomic32
	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, p.Submit(func() {
			ran.add(1)
			time.Sleep(time.Millisecond)
		}))
	}

	require.NoError(t, p.Shutdown(context.Background()))
	assert.EqualValues(t, n, ran.load())
}

// atomic32 is a tiny test-local counter to avoid importing sync/atomic's
// Int64 twice for a single assertion.
type atomic32 struct {
	mu sync.Mutex
	n  int
}

func (a *atomic32) add(d int) {
	a.mu.Lock()
	a.n += d
	a.mu.Unlock()
}

func (a *atomic32) load() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}
