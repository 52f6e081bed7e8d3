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

func Test_Explain_OneRowPerNode(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", nil)
	proj := NewProject(a, start, []YieldItem{{Expr: litExpr("1"), Alias: "a"}}, "$$yield")
	p := New(a, proj)

	rows := Explain(p)
	require.Len(t, rows, 2)
	assert.Equal(t, start.ID(), rows[0].ID)
	assert.Equal(t, proj.ID(), rows[1].ID)
}

func Test_AttachProfile(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", nil)
	p := New(a, start)

	rows := Explain(p)
	AttachProfile(rows, start.ID(), ProfileStats{Rows: 1, ExecutionTime: 42})
	require.NotNil(t, rows[0].Profile)
	assert.Equal(t, 1, rows[0].Profile.Rows)
	assert.Equal(t, int64(42), rows[0].Profile.ExecutionTime)

	// unknown handle is a no-op, not a panic.
	AttachProfile(rows, Handle(999), ProfileStats{Rows: 9})
}
