// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package executor implements C3, the executor registry: a lookup from
// plan-node kind to executor constructor (spec section 4.3). Executors
// receive a borrowed plan node and execution context and expose a single
// execute() -> Future<Status> operation; the future is cold - returned
// eagerly, resolved when the work completes - in the style of
// util/parallel's GoCaptureError, generalized to many-to-many fan-out
// (a future can be awaited more than once, and more than one continuation
// can be chained onto it, which parallel.GoCaptureError's single wait()
// closure doesn't need to support).
package executor

import (
	"sync"

	"github.com/jyz0309/nebula/status"
	"github.com/jyz0309/nebula/util/parallel"
)

// Future is a cold, cancellation-safe handle to a Status that resolves
// exactly once. Chaining a continuation with Then after it has already
// resolved invokes the continuation immediately (on the caller's
// goroutine), so scheduler code doesn't need to special-case the
// already-done case.
type Future struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	result   status.Status
}

// NewFuture returns a pending Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a Future that has already completed with s, for
// executors whose work is synchronous (e.g. Start, PassThrough).
func Resolved(s status.Status) *Future {
	f := &Future{done: make(chan struct{})}
	f.Resolve(s)
	return f
}

// Resolve fulfills the future with s. Only the first call has any effect;
// later calls are silently ignored, so a node racing a cancellation signal
// can resolve its future without coordinating with whoever else might also
// try.
func (f *Future) Resolve(s status.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return
	}
	f.resolved = true
	f.result = s
	close(f.done)
}

// Await blocks until the future resolves and returns its Status. Used by
// the scheduler's top-level wait on the root's terminal future and by
// tests; ordinary node-to-node continuations should prefer Then so they
// never block a worker goroutine on a suspended node.
func (f *Future) Await() status.Status {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Then registers cb to run once f resolves, passing the resolved Status.
// cb runs on its own goroutine (or, if f has already resolved, immediately
// on the calling goroutine) - it must not block.
func (f *Future) Then(cb func(status.Status)) {
	f.mu.Lock()
	if f.resolved {
		result := f.result
		f.mu.Unlock()
		cb(result)
		return
	}
	f.mu.Unlock()
	parallel.Go(func() {
		<-f.done
		f.mu.Lock()
		result := f.result
		f.mu.Unlock()
		cb(result)
	})
}
