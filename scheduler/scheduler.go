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

// Package scheduler implements C4, the async message-notify scheduler
// that walks a plan and drives it to completion (spec section 4.4). It is
// the heart of the query execution core: everything else either feeds it
// a plan (C1, C5) or gets consulted by it (C2, C3).
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/jyz0309/nebula/execctx"
	"github.com/jyz0309/nebula/executor"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/status"
	"github.com/jyz0309/nebula/util/clocks"
)

// Scheduler drives a plan to completion using an Executor Registry and a
// shared variable store. One Scheduler instance is stateless and safe for
// concurrent use across many queries; all per-query state lives in the
// run it creates for each Schedule call.
type Scheduler struct {
	registry *executor.Registry
}

// New creates a Scheduler that looks up executors in registry.
func New(registry *executor.Registry) *Scheduler {
	return &Scheduler{registry: registry}
}

// Schedule walks the data-dependency subgraph rooted at root (spec
// section 4.4 steps 1-6) and returns a cold Future that resolves with the
// terminal Status: OK once root's node task completes, or the first error
// observed from any node (first-error-latch semantics, spec section 4.4
// step 3b / "Failure semantics"). Control-flow nodes (Select, Loop) are
// handled natively - see select_loop.go - so Schedule only ever sees a
// "main line" graph; Select's then/otherwise and Loop's body are scheduled
// by nested, independent Schedule calls when those nodes fire.
func (s *Scheduler) Schedule(ctx context.Context, root plan.Node, vars *execctx.Context) *executor.Future {
	return s.schedule(ctx, root, vars, nil)
}

// ScheduleProfiled is Schedule plus per-node row-count/execution-time
// collection (SPEC_FULL supplement 3, "PROFILE runtime stats"): every node
// dispatched during this run, including ones reached through a nested
// Select/Loop branch schedule, is timed and recorded into profile. Use
// profile.Results() once the returned future resolves OK to decorate an
// EXPLAIN PROFILE response via plan.AttachProfile.
func (s *Scheduler) ScheduleProfiled(ctx context.Context, root plan.Node, vars *execctx.Context, profile *Profile) *executor.Future {
	return s.schedule(ctx, root, vars, profile)
}

func (s *Scheduler) schedule(ctx context.Context, root plan.Node, vars *execctx.Context, profile *Profile) *executor.Future {
	r := &run{
		ctx:      ctx,
		sched:    s,
		vars:     vars,
		tasks:    make(map[plan.Handle]*nodeTask),
		terminal: executor.NewFuture(),
		rootID:   root.ID(),
		profile:  profile,
	}
	r.build(root)
	r.seedFrontier()
	return r.terminal
}

// Profile collects per-node runtime stats across one top-level Schedule
// call and every nested Select/Loop branch schedule it spawns (they share
// the same Profile instance, passed through by runSelect/runLoop).
type Profile struct {
	clock clocks.Source

	mu    sync.Mutex
	stats map[plan.Handle]plan.ProfileStats
}

// NewProfile creates an empty Profile that times node execution with clock.
func NewProfile(clock clocks.Source) *Profile {
	return &Profile{clock: clock, stats: make(map[plan.Handle]plan.ProfileStats)}
}

func (p *Profile) record(id plan.Handle, rows int, elapsedUs int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[id] = plan.ProfileStats{Rows: rows, ExecutionTime: elapsedUs}
}

// Results returns a snapshot of every node recorded so far, keyed by handle.
func (p *Profile) Results() map[plan.Handle]plan.ProfileStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[plan.Handle]plan.ProfileStats, len(p.stats))
	for id, stats := range p.stats {
		out[id] = stats
	}
	return out
}

// nodeTask is one node's bookkeeping within a run: a pending-predecessors
// counter and the list of successors to notify on completion (spec
// section 4.4: "each node is represented by a node task holding (i) a
// pending-predecessors counter ... (ii) ... (iii) a list of successor
// promises to notify").
type nodeTask struct {
	node       plan.Node
	pending    int32
	successors []*nodeTask
}

// run is the per-Schedule-call state: the task graph for one subgraph
// walk, plus the shared abort latch.
type run struct {
	ctx      context.Context
	sched    *Scheduler
	vars     *execctx.Context
	tasks    map[plan.Handle]*nodeTask
	rootID   plan.Handle
	terminal *executor.Future
	profile  *Profile

	mu        sync.Mutex
	aborted   bool
	errStatus status.Status
}

// build walks n's data-dependency inputs (and nothing else - branch
// references are out of scope here, spec section 4.4 step 1) and
// populates r.tasks with one nodeTask per reachable node plus reverse
// successor edges.
func (r *run) build(n plan.Node) *nodeTask {
	id := n.ID()
	if t, ok := r.tasks[id]; ok {
		return t
	}
	t := &nodeTask{node: n}
	r.tasks[id] = t
	for _, in := range n.Inputs() {
		pred := r.build(in)
		pred.successors = append(pred.successors, t)
		t.pending++
	}
	return t
}

// seedFrontier dispatches every indegree-0 task (Start and Argument
// nodes, spec section 4.4 step 2).
func (r *run) seedFrontier() {
	if len(r.tasks) == 0 {
		r.terminal.Resolve(status.OKStatus)
		return
	}
	for _, t := range r.tasks {
		if atomic.LoadInt32(&t.pending) == 0 {
			r.dispatch(t)
		}
	}
}

// isAborted reports whether the run's terminal promise has already been
// fulfilled by an error, per the termination guarantee in spec section
// 4.4 step 6 ("no new node dispatches occur after the terminal promise is
// fulfilled").
func (r *run) isAborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// dispatch starts one node task, wrapped in a child span tagged with the
// node's kind and output variable (SPEC_FULL's [AMBIENT] Tracing: "one
// child span per dispatched plan node"), the way query.q.go tags each
// phase of a top-level query with its own span.
func (r *run) dispatch(t *nodeTask) {
	if r.isAborted() {
		return
	}
	span, execCtx := opentracing.StartSpanFromContext(r.ctx, "exec node")
	span.SetTag("kind", string(t.node.Kind()))
	span.SetTag("outputVar", t.node.OutputVar())
	logrus.WithFields(logrus.Fields{
		"kind":      t.node.Kind(),
		"outputVar": t.node.OutputVar(),
	}).Debug("dispatching node")

	var start clocks.Time
	if r.profile != nil {
		start = r.profile.clock.Now()
	}

	if handler, ok := controlFlowHandlers[t.node.Kind()]; ok {
		handler(r, t)
		r.recordProfile(t, start)
		span.Finish()
		return
	}

	ex, err := r.sched.registry.New(t.node, r.vars)
	if err != nil {
		span.Finish()
		r.onNodeDone(t, status.Wrap(err))
		return
	}
	var fut *executor.Future
	var panicValue interface{}
	func() {
		defer func() { panicValue = recover() }()
		fut = ex.Execute(execCtx)
	}()
	if panicValue != nil {
		span.Finish()
		logrus.WithField("kind", t.node.Kind()).Errorf("recovered panic from executor: %v", panicValue)
		r.onNodeDone(t, status.New(status.Error, "executor panic: %v", panicValue))
		return
	}
	fut.Then(func(st status.Status) {
		span.Finish()
		r.recordProfile(t, start)
		r.onNodeDone(t, st)
	})
}

// recordProfile fills in one node's row count and elapsed time, reading the
// row count back from whatever the node just published under its own
// output var. A no-op when this run isn't profiled, or when the node never
// published anything (the error path).
func (r *run) recordProfile(t *nodeTask, start clocks.Time) {
	if r.profile == nil {
		return
	}
	elapsedUs := r.profile.clock.Now().Sub(start).Microseconds()
	rows := 0
	if ds, err := r.vars.GetValue(t.node.OutputVar()); err == nil {
		rows = len(ds.Rows)
	}
	r.profile.record(t.node.ID(), rows, elapsedUs)
}

// onNodeDone implements spec section 4.4 step 3: on OK, decrement every
// successor's pending counter and dispatch any that reach zero; on error,
// latch the first error and fulfill the terminal promise - in-flight
// tasks are allowed to finish, their results simply have nowhere left to
// go because isAborted() now short-circuits dispatch.
func (r *run) onNodeDone(t *nodeTask, st status.Status) {
	if !st.Ok() {
		if r.isAborted() {
			logrus.WithFields(logrus.Fields{
				"kind":      t.node.Kind(),
				"outputVar": t.node.OutputVar(),
				"status":    st.String(),
			}).Warn("dropping error from node after first-error latch")
			return
		}
		r.abort(st)
		return
	}
	if t.node.ID() == r.rootID {
		r.terminal.Resolve(status.OKStatus)
	}
	for _, succ := range t.successors {
		if atomic.AddInt32(&succ.pending, -1) == 0 {
			r.dispatch(succ)
		}
	}
}

func (r *run) abort(st status.Status) {
	r.mu.Lock()
	if r.aborted {
		r.mu.Unlock()
		return
	}
	r.aborted = true
	r.errStatus = st
	r.mu.Unlock()
	r.terminal.Resolve(st)
}
