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

package executor

import (
	"context"
	"fmt"

	"github.com/jyz0309/nebula/execctx"
	"github.com/jyz0309/nebula/plan"
)

// Executor is the contract every plan-node kind binds to (spec section
// 4.3). Implementations must not outlive the Query Context whose
// execctx.Context and plan.Node they were constructed with - they hold
// borrowed references, never owning ones.
type Executor interface {
	// Execute runs the node against its already-evaluated inputs and
	// returns a cold Future<Status>. Execute itself must return promptly;
	// a long-running operation resolves its Future from another
	// goroutine instead of blocking the caller.
	Execute(ctx context.Context) *Future
}

// Constructor builds an Executor bound to one node and its query's
// variable store.
type Constructor func(n plan.Node, vars *execctx.Context) Executor

// Registry is a pure lookup from plan-node kind to executor constructor
// (spec section 4.3). It is built once at startup and read concurrently
// by every in-flight query's scheduler thereafter, so mutation after
// construction is intentionally not exposed as a public API.
type Registry struct {
	ctors map[plan.Kind]Constructor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[plan.Kind]Constructor)}
}

// Register binds kind to ctor. Re-registering a kind overwrites the prior
// binding; callers assemble a Registry once, at startup, before handing it
// to any scheduler.
func (r *Registry) Register(kind plan.Kind, ctor Constructor) {
	r.ctors[kind] = ctor
}

// New builds an Executor for n via its kind's registered constructor. It
// is the only lookup operation the scheduler needs from the registry.
func (r *Registry) New(n plan.Node, vars *execctx.Context) (Executor, error) {
	ctor, ok := r.ctors[n.Kind()]
	if !ok {
		return nil, fmt.Errorf("executor: no executor registered for kind %q", n.Kind())
	}
	return ctor(n, vars), nil
}

// NewDefaultRegistry builds a Registry with every executor this module
// gives a concrete body to (spec section 6's open leaf/relational family,
// restricted to what NewProject/NewDescTag/NewDescribeListeners can
// produce - see builtin.go). Select and Loop are not registered here:
// their executors are scheduler-aware (spec section 4.4 step 4) and are
// constructed directly by package scheduler, which has the branch-dispatch
// context a generic registry entry can't.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plan.KindStart, func(n plan.Node, vars *execctx.Context) Executor {
		return &startExecutor{node: n.(*plan.Start), vars: vars}
	})
	r.Register(plan.KindPassThrough, func(n plan.Node, vars *execctx.Context) Executor {
		return &passThroughExecutor{node: n.(*plan.PassThrough), vars: vars}
	})
	r.Register(plan.KindArgument, func(n plan.Node, vars *execctx.Context) Executor {
		return &argumentExecutor{node: n.(*plan.Argument), vars: vars}
	})
	r.Register(plan.KindProject, func(n plan.Node, vars *execctx.Context) Executor {
		return &projectExecutor{node: n.(*plan.Project), vars: vars}
	})
	r.Register(plan.KindDescTag, func(n plan.Node, vars *execctx.Context) Executor {
		return &descTagExecutor{node: n.(*plan.DescTag), vars: vars}
	})
	r.Register(plan.KindDescribeListeners, func(n plan.Node, vars *execctx.Context) Executor {
		return &describeListenersExecutor{node: n.(*plan.DescribeListeners), vars: vars}
	})
	return r
}
