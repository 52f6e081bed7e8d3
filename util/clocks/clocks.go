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

// Package clocks provides a mockable way to measure elapsed time. It backs
// the scoped optimizer timer and the per-query latency/slow-query
// accounting described in spec sections 4.5 and 5; tests substitute Mock
// so latency-threshold assertions (P8) don't depend on real wall time.
package clocks

import (
	"sync"
	"time"
)

// Time is a convenient alias for time.Time.
type Time = time.Time

// A Source tells the passage of time. This package provides two sources:
// Wall and Mock.
type Source interface {
	// Now returns the current time.
	Now() Time
}

type wallClock struct{}

// Wall is the normal clock, as provided by time.Now().
var Wall Source = wallClock{}

func (wallClock) Now() Time {
	return time.Now()
}

// Mock is a Source that does not advance on its own. It is used to control a
// clock for unit tests that assert on elapsed-microsecond fields (optimizer
// latency, query latency, slow-query latency).
type Mock struct {
	lock sync.Mutex
	now  Time
}

var _ Source = NewMock()

// NewMock returns a new mock clock initialized to the Unix epoch. Note that
// this is not the zero value for time.Time.
func NewMock() *Mock {
	return &Mock{now: time.Unix(0, 0)}
}

// Now implements Source.
func (c *Mock) Now() Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Advance moves the clock forward by the given amount.
func (c *Mock) Advance(amount time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(amount)
}

// ScopedTimer records the elapsed time between its creation and the call to
// Stop into *outUs, in microseconds. It is used to implement spec 5's
// "scoped acquisitions" requirement: the optimize phase records elapsed
// microseconds to the plan's optimizer-latency field on every exit path,
// success or error.
type ScopedTimer struct {
	clock  Source
	start  Time
	outUs  *int64
	stopped bool
}

// NewScopedTimer starts a timer against clock that will write the elapsed
// microseconds into *outUs when Stop is called. Callers typically `defer
// timer.Stop()` immediately after construction so every exit path (including
// panics and early error returns) records elapsed time.
func NewScopedTimer(clock Source, outUs *int64) *ScopedTimer {
	return &ScopedTimer{clock: clock, start: clock.Now(), outUs: outUs}
}

// Stop records the elapsed time. It is safe to call multiple times; only the
// first call has an effect.
func (t *ScopedTimer) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	*t.outUs = t.clock.Now().Sub(t.start).Microseconds()
}
