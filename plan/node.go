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

// Package plan implements C1, the plan node model: a typed DAG of
// operators, including the control-flow nodes (Start, Select, Loop,
// PassThrough, Argument) described in spec sections 3, 4.1, and 9.
//
// Polymorphism is over a closed, kind-tagged variant set: every Node
// exposes a Kind() usable as a dispatch key by both the scheduler and the
// executor registry, the way plandef.Operator's "anOperator()" marker
// method closes that set in the teacher's planner, except here the tag
// itself is introspectable rather than relying purely on a type switch.
package plan

import "fmt"

// Kind identifies a plan node's variant. The control-flow kinds below are
// closed; leaf/relational operator kinds (scans, filters, projections,
// joins, aggregations, schema and DML operators - spec section 6) are an
// open family that this package does not enumerate, so Kind is a string
// rather than a fixed-width enum.
type Kind string

// The closed set of control-flow kinds explicitly in scope (spec section
// 3).
const (
	KindStart       Kind = "Start"
	KindSelect      Kind = "Select"
	KindLoop        Kind = "Loop"
	KindPassThrough Kind = "PassThrough"
	KindArgument    Kind = "Argument"
)

// Columns describes the output schema of a node: the ordered column names
// its output variable's DataSet carries.
type Columns []string

// Node is the contract every plan node satisfies (spec section 4.1):
// kind(), inputs(), outputVar(), outputColumns(), clone(), describe().
type Node interface {
	// Kind returns the node's dispatch tag.
	Kind() Kind
	// Inputs returns the node's data-dependency inputs, in order. Start and
	// Argument return an empty slice (spec invariant I2: every non-Start
	// node has at least one input - Argument is the other zero-input kind,
	// satisfied by the data-dependency edges the scheduler never needs
	// since it's seeded into the ready frontier directly, see scheduler
	// section 4.4 step 2).
	Inputs() []Node
	// OutputVar names the variable this node's executor publishes its
	// result under (spec invariant I3: unique per plan except
	// PassThrough, which may reuse its input's name).
	OutputVar() string
	// OutputColumns describes the schema of the value published to
	// OutputVar.
	OutputColumns() Columns
	// Clone produces a fresh, arena-owned deep copy of the subgraph rooted
	// here. Branch references (Select's then/otherwise, Loop's body) are
	// cloned too, and aliased subplans reachable from more than one place
	// in the original retain their aliasing in the clone (see clone.go).
	Clone(into *Arena) Node
	// Describe serializes the node (not its inputs) for EXPLAIN.
	Describe() *Description
	// ID returns the node's identity within its owning arena. The
	// scheduler keys its per-run task map on this, and the clone
	// machinery uses it as the memo key for identity-preserving aliasing.
	ID() Handle
}

// Description is one row of an EXPLAIN plan dump (spec section 6:
// "planDesc: EXPLAIN tree").
type Description struct {
	ID       Handle
	Name     string
	OutVar   string
	Columns  Columns
	Inputs   []Handle
	Branches map[string]Handle // e.g. {"then": h, "otherwise": h} or {"body": h}
	Detail   string            // kind-specific free-form payload summary
	Profile  *ProfileStats
}

// ProfileStats carries the runtime counters attached to a Description when
// the query ran under EXPLAIN PROFILE rather than plain EXPLAIN (P4,
// SPEC_FULL supplement 3): PROFILE runs the plan and decorates the
// description with what actually happened, plain EXPLAIN never executes
// anything so there is nothing to report.
type ProfileStats struct {
	Rows          int
	ExecutionTime int64 // microseconds
}

func (d *Description) String() string {
	return fmt.Sprintf("#%d %s out=%s cols=%v in=%v detail=%q", d.ID, d.Name, d.OutVar, d.Columns, d.Inputs, d.Detail)
}

// base is embedded by every concrete Node to supply the identity, input,
// and output-variable bookkeeping common to all kinds, the way the
// teacher's plandef types each hand-implement Key()/String() but share the
// same shape.
type base struct {
	arena   *Arena
	self    Handle
	kind    Kind
	inputs  []Node
	outVar  string
	columns Columns
}

func (b *base) Kind() Kind             { return b.kind }
func (b *base) Inputs() []Node         { return b.inputs }
func (b *base) OutputVar() string      { return b.outVar }
func (b *base) OutputColumns() Columns { return b.columns }
func (b *base) ID() Handle             { return b.self }
