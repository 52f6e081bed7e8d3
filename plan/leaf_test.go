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
)

// Test_Project_Yield1AsA grounds the "YIELD 1 AS a" worked scenario
// (spec section 8): a Start feeding a single-column Project.
func Test_Project_Yield1AsA(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", nil)
	proj := NewProject(a, start, []YieldItem{{Expr: litExpr("1"), Alias: "a"}}, "$$yield")

	assert.Equal(t, Columns{"a"}, proj.OutputColumns())
	assert.Equal(t, "1 AS a", proj.Describe().Detail)
}

func Test_DescTag_Describe(t *testing.T) {
	a := NewArena()
	n := NewDescTag(a, "person", "$$descTag", Columns{"Field", "Type"})
	d := n.Describe()
	assert.Equal(t, "tag=person", d.Detail)
}

func Test_DescribeListeners_DefaultExcludesStalePrefixes(t *testing.T) {
	a := NewArena()
	n := NewDescribeListeners(a, "my_space", false, "$$listeners", Columns{"Host", "Port", "Type"})
	assert.False(t, n.IncludeStalePrefixes())
	assert.Contains(t, n.Describe().Detail, "includeStalePrefixes=false")
}
