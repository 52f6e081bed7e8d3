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

	"github.com/jyz0309/nebula/execctx"
	exprpkg "github.com/jyz0309/nebula/expr"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/status"
)

// startExecutor seeds a DAG root (or loop-body root) with a single row of
// Nulls aligned to its declared columns, giving any chain of single-input
// nodes downstream exactly one evaluation pass to run their expressions
// against - the shape the "YIELD 1 AS a" worked scenario needs (spec
// section 8), where there is no actual graph traversal feeding the
// projection. A Start that already has a value published under its
// output var - a Loop's counter, seeded by the caller before Schedule
// runs, or the same Start re-entered on a later loop iteration - is left
// alone: Start only fills in the gap when nothing is there yet, it never
// clobbers a real seed with an empty one.
type startExecutor struct {
	node *plan.Start
	vars *execctx.Context
}

func (e *startExecutor) Execute(ctx context.Context) *Future {
	outVar := e.node.OutputVar()
	if e.vars.Exists(outVar) {
		return Resolved(status.OKStatus)
	}
	columns := e.node.OutputColumns()
	ds := execctx.DataSet{Columns: columns, Rows: [][]exprpkg.Value{make([]exprpkg.Value, len(columns))}}
	if err := e.vars.SetValue(outVar, ds, true); err != nil {
		return Resolved(status.Wrap(err))
	}
	return Resolved(status.OKStatus)
}

// passThroughExecutor forwards its input's value to its own output
// variable unchanged. Per invariant I3, PassThrough may reuse its input's
// output-var name, in which case the value is already published under the
// right name and there is nothing to do.
type passThroughExecutor struct {
	node *plan.PassThrough
	vars *execctx.Context
}

func (e *passThroughExecutor) Execute(ctx context.Context) *Future {
	inVar := e.node.Inputs()[0].OutputVar()
	outVar := e.node.OutputVar()
	if inVar == outVar {
		if !e.vars.Exists(outVar) {
			return Resolved(status.New(status.Error, "passthrough: %q not published by its input", outVar))
		}
		return Resolved(status.OKStatus)
	}
	ds, err := e.vars.GetValue(inVar)
	if err != nil {
		return Resolved(status.Wrap(err))
	}
	if err := e.vars.SetValue(outVar, ds, true); err != nil {
		return Resolved(status.Wrap(err))
	}
	return Resolved(status.OKStatus)
}

// argumentExecutor reads back the value the scheduler bound under this
// node's alias at subgraph entry (spec section 4.4 step 5) and confirms
// it is there; Argument publishes nothing of its own, it just names an
// already-bound variable.
type argumentExecutor struct {
	node *plan.Argument
	vars *execctx.Context
}

func (e *argumentExecutor) Execute(ctx context.Context) *Future {
	if !e.vars.Exists(e.node.OutputVar()) {
		return Resolved(status.New(status.Error, "argument: alias %q was not bound before dispatch", e.node.Alias()))
	}
	return Resolved(status.OKStatus)
}

// projectExecutor evaluates each YieldItem's expression against every row
// of its input and republishes the results under new column aliases.
type projectExecutor struct {
	node *plan.Project
	vars *execctx.Context
}

func (e *projectExecutor) Execute(ctx context.Context) *Future {
	input, err := e.vars.GetValue(e.node.Inputs()[0].OutputVar())
	if err != nil {
		return Resolved(status.Wrap(err))
	}

	items := e.node.Items()
	out := execctx.DataSet{Columns: e.node.OutputColumns(), Rows: make([][]exprpkg.Value, 0, len(input.Rows))}
	numRows := len(input.Rows)
	if numRows == 0 {
		numRows = 1
		input.Rows = [][]exprpkg.Value{{}}
	}
	for i := 0; i < numRows; i++ {
		getter := execctx.RowGetter(input, i)
		row := make([]exprpkg.Value, len(items))
		for j, item := range items {
			ev, ok := item.Expr.(exprpkg.Expr)
			if !ok {
				return Resolved(status.New(status.SemanticError, "project: expression %q is not evaluable", item.Expr.String()))
			}
			v, err := ev.Eval(getter)
			if err != nil {
				return Resolved(status.New(status.Error, "project: %v", err))
			}
			row[j] = v
		}
		out.Rows = append(out.Rows, row)
	}

	if err := e.vars.SetValue(e.node.OutputVar(), out, true); err != nil {
		return Resolved(status.Wrap(err))
	}
	return Resolved(status.OKStatus)
}

// descTagExecutor is the stub body for "DESCRIBE TAG <name>" (SPEC_FULL
// supplement 2). It always fails with NotSupported: a real implementation
// needs a metadata-service client, which is out of scope (spec section 1)
// - the plan-level shape exists so EXPLAIN can still describe the
// statement, but running it surfaces a clear, typed error instead of
// silently returning nothing.
type descTagExecutor struct {
	node *plan.DescTag
	vars *execctx.Context
}

func (e *descTagExecutor) Execute(ctx context.Context) *Future {
	return Resolved(status.New(status.NotSupported, "describe tag %q: no metadata service client wired", e.node.TagName()))
}

// describeListenersExecutor is the stub body for "SHOW LISTENER"
// (SPEC_FULL supplement 1); same rationale as descTagExecutor.
type describeListenersExecutor struct {
	node *plan.DescribeListeners
	vars *execctx.Context
}

func (e *describeListenersExecutor) Execute(ctx context.Context) *Future {
	return Resolved(status.New(status.NotSupported, "show listener for space %q: no metadata service client wired", e.node.SpaceName()))
}
