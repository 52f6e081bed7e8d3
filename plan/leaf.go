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

import "fmt"

// The leaf/relational kind family is open (spec section 6); these are the
// handful this module gives a concrete body to, enough to drive the
// worked E2E scenarios and the two supplemented admin-style statements.
// Everything else (scans, joins, DML, schema operators) is out of scope -
// the optimizer and executor registry treat any Kind they don't recognize
// as a lookup failure, not a special case here.
const (
	KindProject           Kind = "Project"
	KindDescTag           Kind = "DescTag"
	KindDescribeListeners Kind = "DescribeListeners"
)

// YieldItem is one projected column: an expression and the alias it is
// published under (e.g. "YIELD 1 AS a").
type YieldItem struct {
	Expr  Expression
	Alias string
}

// NewProject creates a Project node: evaluates each YieldItem's expression
// against input's current row-set and republishes the results under
// outVar, column-named by each item's alias (spec section 3's "kind-
// specific payload (expressions, ...)").
func NewProject(a *Arena, input Node, items []YieldItem, outVar string) *Project {
	cols := make(Columns, len(items))
	for i, it := range items {
		cols[i] = it.Alias
	}
	n := &Project{singleInput: newSingleInput(a, KindProject, input, outVar, cols), items: items}
	n.self = a.add(n)
	return n
}

// Project is a single-input leaf node that evaluates a fixed list of
// expressions per row and republishes them under new aliases.
type Project struct {
	singleInput
	items []YieldItem
}

// Items returns the projected (expression, alias) pairs, in order.
func (n *Project) Items() []YieldItem { return n.items }

// Describe implements Node.
func (n *Project) Describe() *Description {
	detail := ""
	for i, it := range n.items {
		if i > 0 {
			detail += ", "
		}
		detail += describeExpr(it.Expr) + " AS " + it.Alias
	}
	return &Description{
		ID: n.self, Name: string(KindProject), OutVar: n.outVar, Columns: n.columns,
		Inputs: []Handle{n.inputs[0].ID()}, Detail: detail,
	}
}

// Clone implements Node.
func (n *Project) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *Project) shallowClone(into *Arena, newInputs []Node) Node {
	return NewProject(into, newInputs[0], append([]YieldItem{}, n.items...), n.outVar)
}

// NewDescTag creates a DescTag node: zero inputs, names a tag schema to
// describe. SPEC_FULL supplement 2: the original's DescTagExecutor reads
// one row of tag-schema metadata from the meta client; this module has no
// meta client (out of scope, spec section 1), so the executor registry
// binds KindDescTag to a stub executor that always returns
// status.NotSupported - the plan-level shape is kept so EXPLAIN output for
// "DESCRIBE TAG x" matches what a client expects to see, even though
// running it errors out.
func NewDescTag(a *Arena, tagName string, outVar string, columns Columns) *DescTag {
	n := &DescTag{base: base{arena: a, kind: KindDescTag, outVar: outVar, columns: columns}, tagName: tagName}
	n.self = a.add(n)
	return n
}

// DescTag is the plan-level shape of "DESCRIBE TAG <name>"; see NewDescTag
// for why its executor is a stub.
type DescTag struct {
	base
	tagName string
}

// TagName returns the tag schema name this node was asked to describe.
func (n *DescTag) TagName() string { return n.tagName }

// Describe implements Node.
func (n *DescTag) Describe() *Description {
	return &Description{ID: n.self, Name: string(KindDescTag), OutVar: n.outVar, Columns: n.columns, Detail: fmt.Sprintf("tag=%s", n.tagName)}
}

// Clone implements Node.
func (n *DescTag) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *DescTag) shallowClone(into *Arena, newInputs []Node) Node {
	return NewDescTag(into, n.tagName, n.outVar, append(Columns{}, n.columns...))
}

// NewDescribeListeners creates a DescribeListeners node: zero inputs,
// naming the space whose listener meta keys are to be enumerated.
// SPEC_FULL supplement 1 records the original's slip of querying the
// role-key prefix when collecting those keys; this node carries no key
// prefix of its own, and the executor registry binds
// KindDescribeListeners to a stub that always returns
// status.NotSupported. The includeStalePrefixes flag is payload only:
// Describe shows it, and no executor reads it.
func NewDescribeListeners(a *Arena, spaceName string, includeStalePrefixes bool, outVar string, columns Columns) *DescribeListeners {
	n := &DescribeListeners{
		base:                 base{arena: a, kind: KindDescribeListeners, outVar: outVar, columns: columns},
		spaceName:            spaceName,
		includeStalePrefixes: includeStalePrefixes,
	}
	n.self = a.add(n)
	return n
}

// DescribeListeners is the plan-level shape of "SHOW LISTENER".
type DescribeListeners struct {
	base
	spaceName            string
	includeStalePrefixes bool
}

// SpaceName returns the space this node lists listeners for.
func (n *DescribeListeners) SpaceName() string { return n.spaceName }

// IncludeStalePrefixes returns the includeStalePrefixes flag the node was
// built with (see NewDescribeListeners).
func (n *DescribeListeners) IncludeStalePrefixes() bool { return n.includeStalePrefixes }

// Describe implements Node.
func (n *DescribeListeners) Describe() *Description {
	return &Description{
		ID: n.self, Name: string(KindDescribeListeners), OutVar: n.outVar, Columns: n.columns,
		Detail: fmt.Sprintf("space=%s includeStalePrefixes=%t", n.spaceName, n.includeStalePrefixes),
	}
}

// Clone implements Node.
func (n *DescribeListeners) Clone(into *Arena) Node {
	return cloneInto(n, into, make(map[Handle]Node))
}

func (n *DescribeListeners) shallowClone(into *Arena, newInputs []Node) Node {
	return NewDescribeListeners(into, n.spaceName, n.includeStalePrefixes, n.outVar, append(Columns{}, n.columns...))
}
