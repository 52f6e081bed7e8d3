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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_Clone_PreservesSharedAliasing builds a diamond: Select's then and
// otherwise branches both data-depend on the same shared PassThrough node.
// Cloning the Select must clone that shared node exactly once and point
// both branches' clones at it (spec section 4.1's clone() identity rule).
func Test_Clone_PreservesSharedAliasing(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"x"})
	shared := NewPassThrough(a, start, "$$shared")
	then := NewPassThrough(a, shared, "$$then")
	otherwise := NewPassThrough(a, shared, "$$otherwise")
	sel := NewSelect(a, start, litExpr("x > 0"), "$$sel", Columns{"x"})
	sel.SetThen(then)
	sel.SetOtherwise(otherwise)

	into := NewArena()
	cloned := sel.Clone(into).(*Select)

	clonedThen := cloned.Then().(*PassThrough)
	clonedOtherwise := cloned.Otherwise().(*PassThrough)
	require.Same(t, clonedThen.Inputs()[0], clonedOtherwise.Inputs()[0],
		"then and otherwise must share the same cloned predecessor")
	assert.NotSame(t, shared, clonedThen.Inputs()[0], "clone must be a fresh node, not the original")
	assert.Equal(t, 5, into.Len(), "expects start, sel, shared, then, otherwise each cloned exactly once")
}

// Test_Clone_LoopBody verifies a Loop's body branch is deep-cloned too.
func Test_Clone_LoopBody(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"n"})
	loop := NewLoop(a, start, litExpr("n < 3"), "$$loop", Columns{"n"})
	bodyStart := NewStart(a, "$$bodyStart", Columns{"n"})
	bodyProj := NewProject(a, bodyStart, []YieldItem{{Expr: litExpr("n + 1"), Alias: "n"}}, "$$bodyOut")
	loop.SetBody(bodyProj)

	into := NewArena()
	cloned := loop.Clone(into).(*Loop)

	require.NotNil(t, cloned.Body())
	clonedProj, ok := cloned.Body().(*Project)
	require.True(t, ok)
	assert.NotSame(t, bodyProj, clonedProj)
	assert.Equal(t, "n + 1 AS n", clonedProj.Describe().Detail)
}

// Test_Clone_IsIndependentArena verifies the clone does not share node
// identity or arena with the source plan.
func Test_Clone_IsIndependentArena(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"x"})
	p := New(a, start)

	clone := p.Clone()
	assert.NotSame(t, p.Arena(), clone.Arena())
	assert.NotSame(t, p.Root(), clone.Root())
	assert.Equal(t, p.Root().OutputVar(), clone.Root().OutputVar())
}
