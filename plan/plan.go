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

package plan

// Plan is the optimizer's output and the scheduler's input: a rooted DAG
// of Nodes, all owned by one Arena, plus the bookkeeping the rest of the
// query instance lifecycle needs once optimization hands it off (spec
// section 4.3/9: "a Plan owns exactly one Arena for its lifetime").
type Plan struct {
	arena *Arena
	root  Node

	// OptimizeLatencyUs is filled in by the caller's clocks.ScopedTimer
	// around the optimizer.findBestPlan call (spec section 5), regardless
	// of whether optimization succeeded or returned an error - the timer
	// is stopped on every exit path before this field is read.
	OptimizeLatencyUs int64
}

// New wraps root, owned by arena, as a Plan. Both must already be
// populated (NewArena plus whatever Node constructors the optimizer
// called) by the time this is invoked.
func New(arena *Arena, root Node) *Plan {
	return &Plan{arena: arena, root: root}
}

// Root returns the plan's entry point for scheduling.
func (p *Plan) Root() Node { return p.root }

// Arena returns the arena that owns every node reachable from Root.
func (p *Plan) Arena() *Arena { return p.arena }

// Clone produces an independent deep copy of the plan, suitable for a
// fresh Loop iteration (spec section 4.4 step 5: "the loop body subgraph
// is re-instantiated afresh per iteration") or for EXPLAIN PROFILE runs
// that must not mutate the plan a concurrent caller might also be reading.
func (p *Plan) Clone() *Plan {
	into := NewArena()
	root := p.root.Clone(into)
	return &Plan{arena: into, root: root}
}
