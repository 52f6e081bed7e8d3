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

// litExpr is a trivial Expression stub for tests that don't need real
// expression evaluation, only a String().
type litExpr string

func (l litExpr) String() string { return string(l) }

func Test_Start_ZeroInputs(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", nil)
	assert.Equal(t, KindStart, start.Kind())
	assert.Empty(t, start.Inputs())
}

// Test_Select_BranchesAreNotDataDependencies verifies I1/P5: Select's
// then/otherwise are reachable via Then()/Otherwise() but do not appear in
// Inputs(), which the scheduler's indegree computation walks.
func Test_Select_BranchesAreNotDataDependencies(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"x"})
	sel := NewSelect(a, start, litExpr("x > 0"), "$$sel", Columns{"x"})
	then := NewPassThrough(a, start, "$$then")
	otherwise := NewPassThrough(a, start, "$$otherwise")
	sel.SetThen(then)
	sel.SetOtherwise(otherwise)

	require.Len(t, sel.Inputs(), 1)
	assert.Same(t, start, sel.Inputs()[0])
	assert.Same(t, then, sel.Then())
	assert.Same(t, otherwise, sel.Otherwise())
}

func Test_Loop_BodyIsNotDataDependency(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"n"})
	loop := NewLoop(a, start, litExpr("n < 3"), "$$loop", Columns{"n"})
	bodyStart := NewStart(a, "$$bodyStart", Columns{"n"})
	loop.SetBody(bodyStart)

	require.Len(t, loop.Inputs(), 1)
	assert.Same(t, start, loop.Inputs()[0])
	assert.Same(t, bodyStart, loop.Body())
}

// Test_PassThrough_MayReuseInputOutputVar verifies invariant I3's stated
// exception.
func Test_PassThrough_MayReuseInputOutputVar(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"x"})
	pt := NewPassThrough(a, start, "$$start")
	assert.Equal(t, start.OutputVar(), pt.OutputVar())
	assert.Equal(t, start.OutputColumns(), pt.OutputColumns())
}

func Test_Argument_ZeroInputsNamesAlias(t *testing.T) {
	a := NewArena()
	arg := NewArgument(a, "i", Columns{"i"})
	assert.Empty(t, arg.Inputs())
	assert.Equal(t, "i", arg.Alias())
	assert.Equal(t, "i", arg.OutputVar())
}

func Test_Describe_Select_ListsBranches(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"x"})
	sel := NewSelect(a, start, litExpr("x > 0"), "$$sel", Columns{"x"})
	then := NewPassThrough(a, start, "$$then")
	otherwise := NewPassThrough(a, start, "$$otherwise")
	sel.SetThen(then)
	sel.SetOtherwise(otherwise)

	d := sel.Describe()
	assert.Equal(t, then.ID(), d.Branches["then"])
	assert.Equal(t, otherwise.ID(), d.Branches["otherwise"])
	assert.Contains(t, d.Detail, "x > 0")
}
