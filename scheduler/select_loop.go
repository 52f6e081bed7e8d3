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

package scheduler

import (
	"github.com/jyz0309/nebula/execctx"
	"github.com/jyz0309/nebula/expr"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/status"
)

// controlFlowHandlers dispatches Select and Loop nodes outside the
// ordinary registry-backed path (spec section 4.4 step 4: "their
// executors are scheduler-aware"). Both evaluate a condition and then
// schedule a branch subgraph with a nested, independent Schedule call,
// which is why they live in the scheduler rather than behind the
// executor.Registry - a generic Constructor has no way to recurse back
// into the scheduler that is calling it.
var controlFlowHandlers map[plan.Kind]func(r *run, t *nodeTask)

func init() {
	controlFlowHandlers = map[plan.Kind]func(r *run, t *nodeTask){
		plan.KindSelect: (*run).runSelect,
		plan.KindLoop:   (*run).runLoop,
	}
}

func conditionValue(cond plan.Expression, getter expr.Getter) (bool, error) {
	e, ok := cond.(expr.Expr)
	if !ok {
		return false, status.New(status.SemanticError, "condition %q is not evaluable", cond.String())
	}
	v, err := e.Eval(getter)
	if err != nil {
		return false, status.New(status.Error, "condition: %v", err)
	}
	b, ok := v.Bool()
	if !ok {
		return false, status.New(status.SemanticError, "condition %q did not evaluate to a boolean", cond.String())
	}
	return b, nil
}

// runSelect implements spec section 4.4 step 4's Select semantics: it
// evaluates condition against row 0 of its input, schedules exactly one of
// then/otherwise to completion, and republishes that branch's terminal
// output under the Select node's own OutputVar - the node.ID() edge from
// Select to whatever data-depends on it (typically a PassThrough reusing
// Select's published name, per invariant I3) is what "unifies the
// branches at a join point downstream" in practice: ordinary nodes in
// this run's task graph only ever see Select's single output, never the
// two branches directly, so P5 (mutual exclusion) holds by construction.
func (r *run) runSelect(t *nodeTask) {
	sel := t.node.(*plan.Select)
	input, err := r.vars.GetValue(sel.Inputs()[0].OutputVar())
	if err != nil {
		r.onNodeDone(t, status.Wrap(err))
		return
	}
	if len(input.Rows) == 0 {
		r.onNodeDone(t, status.New(status.Error, "select: input %q has no rows", sel.Inputs()[0].OutputVar()))
		return
	}
	cond, err := conditionValue(sel.Condition(), execctx.RowGetter(input, 0))
	if err != nil {
		r.onNodeDone(t, status.Wrap(err))
		return
	}

	branch := sel.Otherwise()
	if cond {
		branch = sel.Then()
	}
	if branch == nil {
		r.onNodeDone(t, status.New(status.Error, "select: chosen branch is unset"))
		return
	}

	branchStatus := r.sched.schedule(r.ctx, branch, r.vars, r.profile).Await()
	if !branchStatus.Ok() {
		r.onNodeDone(t, branchStatus)
		return
	}
	ds, err := r.vars.GetValue(branch.OutputVar())
	if err != nil {
		r.onNodeDone(t, status.Wrap(err))
		return
	}
	if err := r.vars.SetValue(sel.OutputVar(), ds, true); err != nil {
		r.onNodeDone(t, status.Wrap(err))
		return
	}
	r.onNodeDone(t, status.OKStatus)
}

// runLoop implements spec section 4.4 step 4's Loop semantics: while
// condition evaluates true against the current row-set, re-instantiate
// the body subgraph afresh (a fresh nested Schedule call, so its node
// tasks and pending counters start clean each iteration, spec section 4.4
// step 4) and feed its output back in as the next condition check's input;
// once false, publish the last-seen row-set as the Loop's own output.
func (r *run) runLoop(t *nodeTask) {
	loop := t.node.(*plan.Loop)
	current, err := r.vars.GetValue(loop.Inputs()[0].OutputVar())
	if err != nil {
		r.onNodeDone(t, status.Wrap(err))
		return
	}

	for {
		if len(current.Rows) == 0 {
			r.onNodeDone(t, status.New(status.Error, "loop: current row-set is empty"))
			return
		}
		cond, err := conditionValue(loop.Condition(), execctx.RowGetter(current, 0))
		if err != nil {
			r.onNodeDone(t, status.Wrap(err))
			return
		}
		if !cond {
			break
		}

		body := loop.Body()
		if body == nil {
			r.onNodeDone(t, status.New(status.Error, "loop: body is unset"))
			return
		}
		for _, arg := range findArguments(body) {
			if err := r.vars.SetValue(arg.OutputVar(), current, true); err != nil {
				r.onNodeDone(t, status.Wrap(err))
				return
			}
		}

		bodyStatus := r.sched.schedule(r.ctx, body, r.vars, r.profile).Await()
		if !bodyStatus.Ok() {
			r.onNodeDone(t, bodyStatus)
			return
		}
		current, err = r.vars.GetValue(body.OutputVar())
		if err != nil {
			r.onNodeDone(t, status.Wrap(err))
			return
		}
	}

	if err := r.vars.SetValue(loop.OutputVar(), current, true); err != nil {
		r.onNodeDone(t, status.Wrap(err))
		return
	}
	r.onNodeDone(t, status.OKStatus)
}

// findArguments walks n's data-dependency inputs looking for Argument
// nodes - the scheduler binds the loop's current iteration value under
// each one's alias before dispatching the body (spec section 4.4 step 5).
func findArguments(n plan.Node) []*plan.Argument {
	seen := make(map[plan.Handle]bool)
	var args []*plan.Argument
	var walk func(plan.Node)
	walk = func(n plan.Node) {
		if seen[n.ID()] {
			return
		}
		seen[n.ID()] = true
		if a, ok := n.(*plan.Argument); ok {
			args = append(args, a)
		}
		for _, in := range n.Inputs() {
			walk(in)
		}
	}
	walk(n)
	return args
}
