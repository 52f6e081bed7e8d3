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

package execctx

import (
	"testing"

	"github.com/jyz0309/nebula/expr"
	"github.com/jyz0309/nebula/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SetValue_GetValue(t *testing.T) {
	c := New()
	ds := DataSet{Columns: plan.Columns{"a"}, Rows: [][]expr.Value{{expr.IntValue(1)}}}
	require.NoError(t, c.SetValue("$$v", ds, false))

	got, err := c.GetValue("$$v")
	require.NoError(t, err)
	assert.Equal(t, ds, got)

	// reading again must not invalidate (spec: "never invalidates").
	got2, err := c.GetValue("$$v")
	require.NoError(t, err)
	assert.Equal(t, ds, got2)
}

func Test_SetValue_FailsWithoutOverwriteFlag(t *testing.T) {
	c := New()
	ds := DataSet{Columns: plan.Columns{"a"}}
	require.NoError(t, c.SetValue("$$v", ds, false))
	assert.Error(t, c.SetValue("$$v", ds, false))
	assert.NoError(t, c.SetValue("$$v", ds, true))
}

func Test_MoveValue_LeavesTombstone(t *testing.T) {
	c := New()
	ds := DataSet{Columns: plan.Columns{"a"}, Rows: [][]expr.Value{{expr.IntValue(1)}}}
	require.NoError(t, c.SetValue("$$v", ds, false))

	moved, err := c.MoveValue("$$v")
	require.NoError(t, err)
	assert.Equal(t, ds, moved)

	_, err = c.GetValue("$$v")
	assert.ErrorIs(t, err, ErrVarConsumed)

	_, err = c.MoveValue("$$v")
	assert.ErrorIs(t, err, ErrVarConsumed)

	assert.False(t, c.Exists("$$v"))
}

func Test_Exists(t *testing.T) {
	c := New()
	assert.False(t, c.Exists("$$v"))
	require.NoError(t, c.SetValue("$$v", DataSet{}, false))
	assert.True(t, c.Exists("$$v"))
}

func Test_RowGetter_ReadsColumnByName(t *testing.T) {
	ds := DataSet{
		Columns: plan.Columns{"age", "name"},
		Rows:    [][]expr.Value{{expr.IntValue(30), expr.StringValue("alice")}},
	}
	g := RowGetter(ds, 0)
	v, ok := g.GetVar("age")
	require.True(t, ok)
	i, _ := v.Int()
	assert.Equal(t, int64(30), i)

	_, ok = g.GetVar("missing")
	assert.False(t, ok)
}

func Test_QueryContext_ArenaAndPlan(t *testing.T) {
	qc := NewQueryContext()
	require.NotNil(t, qc.Arena())
	assert.Nil(t, qc.Plan())

	start := plan.NewStart(qc.Arena(), "$$start", nil)
	p := plan.New(qc.Arena(), start)
	qc.SetPlan(p)
	assert.Same(t, p, qc.Plan())
}
