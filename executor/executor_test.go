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
	"testing"

	"github.com/jyz0309/nebula/execctx"
	"github.com/jyz0309/nebula/expr"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Future_ThenAfterResolve(t *testing.T) {
	f := Resolved(status.OKStatus)
	var got status.Status
	done := make(chan struct{})
	f.Then(func(s status.Status) {
		got = s
		close(done)
	})
	<-done
	assert.True(t, got.Ok())
}

func Test_Future_ThenBeforeResolve(t *testing.T) {
	f := NewFuture()
	done := make(chan struct{})
	var got status.Status
	f.Then(func(s status.Status) {
		got = s
		close(done)
	})
	f.Resolve(status.New(status.Error, "boom"))
	<-done
	assert.Equal(t, status.Error, got.Code())
}

func Test_Future_ResolveIsIdempotent(t *testing.T) {
	f := NewFuture()
	f.Resolve(status.OKStatus)
	f.Resolve(status.New(status.Error, "ignored"))
	assert.True(t, f.Await().Ok())
}

func Test_Registry_UnknownKindErrors(t *testing.T) {
	r := NewRegistry()
	a := plan.NewArena()
	n := plan.NewStart(a, "$$s", nil)
	_, err := r.New(n, execctx.New())
	assert.Error(t, err)
}

func Test_StartExecutor_SeedsOneEmptyRow(t *testing.T) {
	a := plan.NewArena()
	n := plan.NewStart(a, "$$start", nil)
	vars := execctx.New()
	r := NewDefaultRegistry()
	ex, err := r.New(n, vars)
	require.NoError(t, err)

	s := ex.Execute(context.Background()).Await()
	require.True(t, s.Ok())
	ds, err := vars.GetValue("$$start")
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 1)
}

func Test_ProjectExecutor_Yield1AsA(t *testing.T) {
	a := plan.NewArena()
	start := plan.NewStart(a, "$$start", nil)
	proj := plan.NewProject(a, start, []plan.YieldItem{{Expr: expr.MustParse("1"), Alias: "a"}}, "$$yield")

	vars := execctx.New()
	r := NewDefaultRegistry()

	startEx, err := r.New(start, vars)
	require.NoError(t, err)
	require.True(t, startEx.Execute(context.Background()).Await().Ok())

	projEx, err := r.New(proj, vars)
	require.NoError(t, err)
	require.True(t, projEx.Execute(context.Background()).Await().Ok())

	out, err := vars.GetValue("$$yield")
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	i, ok := out.Rows[0][0].Int()
	require.True(t, ok)
	assert.Equal(t, int64(1), i)
}

func Test_PassThroughExecutor_ForwardsValue(t *testing.T) {
	a := plan.NewArena()
	start := plan.NewStart(a, "$$start", plan.Columns{"x"})
	pt := plan.NewPassThrough(a, start, "$$pt")

	vars := execctx.New()
	require.NoError(t, vars.SetValue("$$start", execctx.DataSet{
		Columns: plan.Columns{"x"}, Rows: [][]expr.Value{{expr.IntValue(5)}},
	}, false))

	r := NewDefaultRegistry()
	ex, err := r.New(pt, vars)
	require.NoError(t, err)
	require.True(t, ex.Execute(context.Background()).Await().Ok())

	out, err := vars.GetValue("$$pt")
	require.NoError(t, err)
	i, _ := out.Rows[0][0].Int()
	assert.Equal(t, int64(5), i)
}

func Test_DescTagExecutor_NotSupported(t *testing.T) {
	a := plan.NewArena()
	n := plan.NewDescTag(a, "person", "$$descTag", plan.Columns{"Field"})
	r := NewDefaultRegistry()
	ex, err := r.New(n, execctx.New())
	require.NoError(t, err)
	s := ex.Execute(context.Background()).Await()
	assert.Equal(t, status.NotSupported, s.Code())
}
