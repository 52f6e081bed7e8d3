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

// Expression is the minimal contract plan.go's control-flow nodes need
// from a condition or payload expression. The concrete implementation
// lives in package expr (grounded on github.com/vektah/goparsify); plan
// only needs enough to describe itself for EXPLAIN, not to evaluate
// anything - evaluation is the executor's job once it has an execctx to
// read variables from.
type Expression interface {
	String() string
}

// NewStart creates a Start node: zero inputs, marking a DAG root or a
// loop-body root (spec section 3).
func NewStart(a *Arena, outVar string, columns Columns) *Start {
	n := &Start{base: base{arena: a, kind: KindStart, outVar: outVar, columns: columns}}
	n.self = a.add(n)
	return n
}

// Start is a zero-input plan node.
type Start struct {
	base
}

// Describe implements Node.
func (n *Start) Describe() *Description {
	return &Description{ID: n.self, Name: string(KindStart), OutVar: n.outVar, Columns: n.columns}
}

// Clone implements Node.
func (n *Start) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *Start) shallowClone(into *Arena, newInputs []Node) Node {
	return NewStart(into, n.outVar, append(Columns{}, n.columns...))
}

// singleInput is embedded by every Node with exactly one data-dependency
// input (spec section 3: SingleInputNode, "the common shape").
type singleInput struct {
	base
}

func newSingleInput(a *Arena, kind Kind, input Node, outVar string, columns Columns) singleInput {
	return singleInput{base: base{arena: a, kind: kind, inputs: []Node{input}, outVar: outVar, columns: columns}}
}

// binarySelect is embedded by Select and Loop: a SingleInputNode carrying
// a boolean condition expression (spec section 3: BinarySelect).
type binarySelect struct {
	singleInput
	condition Expression
}

// Condition returns the boolean expression the control-flow node evaluates
// against its input.
func (b *binarySelect) Condition() Expression {
	return b.condition
}

// NewSelect creates a Select node: a BinarySelect with `then`/`otherwise`
// branch references. Either branch may be nil if not yet wired (the
// planner may build a Select before its branches); the scheduler requires
// both to be set by the time it dispatches the node.
func NewSelect(a *Arena, input Node, condition Expression, outVar string, columns Columns) *Select {
	n := &Select{binarySelect: binarySelect{
		singleInput: newSingleInput(a, KindSelect, input, outVar, columns),
		condition:   condition,
	}}
	n.self = a.add(n)
	return n
}

// Select is a control-flow node with two auxiliary branch references,
// `then` and `otherwise` (spec section 3). Neither branch is a
// data-dependency edge: the scheduler's indegree computation skips them
// (spec section 4.4 step 1, section 9 "Control-flow references as
// non-dependencies").
type Select struct {
	binarySelect
	then      Node
	otherwise Node
}

// SetThen wires the `then` branch reference.
func (n *Select) SetThen(then Node) { n.then = then }

// SetOtherwise wires the `otherwise` branch reference.
func (n *Select) SetOtherwise(otherwise Node) { n.otherwise = otherwise }

// Then returns the `then` branch reference, or nil if unset.
func (n *Select) Then() Node { return n.then }

// Otherwise returns the `otherwise` branch reference, or nil if unset.
func (n *Select) Otherwise() Node { return n.otherwise }

// Describe implements Node.
func (n *Select) Describe() *Description {
	d := &Description{
		ID: n.self, Name: string(KindSelect), OutVar: n.outVar, Columns: n.columns,
		Inputs: []Handle{n.inputs[0].ID()}, Branches: map[string]Handle{},
		Detail: "if " + describeExpr(n.condition),
	}
	if n.then != nil {
		d.Branches["then"] = n.then.ID()
	}
	if n.otherwise != nil {
		d.Branches["otherwise"] = n.otherwise.ID()
	}
	return d
}

// Clone implements Node. Per spec section 4.1, a clone() of a Select
// deep-clones its input chain but the then/otherwise branch references are
// cloned by reaching through the arena - see clone.go's cloneInto, which
// this delegates to so identity/aliasing rules are applied uniformly.
func (n *Select) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *Select) shallowClone(into *Arena, newInputs []Node) Node {
	c := NewSelect(into, newInputs[0], n.condition, n.outVar, append(Columns{}, n.columns...))
	return c
}

// NewLoop creates a Loop node: a BinarySelect with one auxiliary `body`
// reference. Semantics (spec section 3): while condition evaluates true on
// the input row-set, re-execute body; otherwise fall through.
func NewLoop(a *Arena, input Node, condition Expression, outVar string, columns Columns) *Loop {
	n := &Loop{binarySelect: binarySelect{
		singleInput: newSingleInput(a, KindLoop, input, outVar, columns),
		condition:   condition,
	}}
	n.self = a.add(n)
	return n
}

// Loop is a control-flow node with one auxiliary `body` reference (spec
// section 3). Like Select's branches, body is a dispatch descriptor, not a
// data-dependency edge - a loop body may legitimately reference a
// PassThrough that data-depends on the Loop itself (spec invariant I1),
// which would be a cycle if body counted toward indegree.
type Loop struct {
	binarySelect
	body Node
}

// SetBody wires the `body` branch reference.
func (n *Loop) SetBody(body Node) { n.body = body }

// Body returns the `body` branch reference, or nil if unset.
func (n *Loop) Body() Node { return n.body }

// Describe implements Node.
func (n *Loop) Describe() *Description {
	d := &Description{
		ID: n.self, Name: string(KindLoop), OutVar: n.outVar, Columns: n.columns,
		Inputs: []Handle{n.inputs[0].ID()}, Branches: map[string]Handle{},
		Detail: "while " + describeExpr(n.condition),
	}
	if n.body != nil {
		d.Branches["body"] = n.body.ID()
	}
	return d
}

// Clone implements Node. Per spec section 4.1, a clone() of a Loop
// deep-clones the body.
func (n *Loop) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *Loop) shallowClone(into *Arena, newInputs []Node) Node {
	c := NewLoop(into, newInputs[0], n.condition, n.outVar, append(Columns{}, n.columns...))
	return c
}

// NewPassThrough creates a PassThrough node: identity, forwards input to
// output unchanged. Used as a deterministic join point where two branches
// must converge (spec section 3) - see scheduler section 4.4 step 4's note
// on unifying Select branches at a PassThrough.
func NewPassThrough(a *Arena, input Node, outVar string) *PassThrough {
	n := &PassThrough{singleInput: newSingleInput(a, KindPassThrough, input, outVar, input.OutputColumns())}
	n.self = a.add(n)
	return n
}

// PassThrough forwards its input to its output unchanged. Per spec
// invariant I3, it is the only kind allowed to reuse its input's output
// variable name.
type PassThrough struct {
	singleInput
}

// Describe implements Node.
func (n *PassThrough) Describe() *Description {
	return &Description{
		ID: n.self, Name: string(KindPassThrough), OutVar: n.outVar, Columns: n.columns,
		Inputs: []Handle{n.inputs[0].ID()},
	}
}

// Clone implements Node.
func (n *PassThrough) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *PassThrough) shallowClone(into *Arena, newInputs []Node) Node {
	return NewPassThrough(into, newInputs[0], n.outVar)
}

// NewArgument creates an Argument node: zero inputs, naming an alias
// produced by an enclosing context - typically a Loop iteration variable or
// a correlated subquery parameter (spec section 3).
func NewArgument(a *Arena, alias string, columns Columns) *Argument {
	n := &Argument{base: base{arena: a, kind: KindArgument, outVar: alias, columns: columns}, alias: alias}
	n.self = a.add(n)
	return n
}

// Argument is a zero-input node satisfied by the scheduler at subgraph
// entry: before scheduling a Loop body, the scheduler binds the iteration
// value into the named variable, which is also the Argument's own output
// variable, and the Argument executor only checks that it is bound (spec
// section 4.4 step 5).
type Argument struct {
	base
	alias string
}

// Alias returns the name of the variable this Argument reads.
func (n *Argument) Alias() string { return n.alias }

// Describe implements Node.
func (n *Argument) Describe() *Description {
	return &Description{ID: n.self, Name: string(KindArgument), OutVar: n.outVar, Columns: n.columns, Detail: "alias=" + n.alias}
}

// Clone implements Node.
func (n *Argument) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *Argument) shallowClone(into *Arena, newInputs []Node) Node {
	return NewArgument(into, n.alias, append(Columns{}, n.columns...))
}

func describeExpr(e Expression) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}
