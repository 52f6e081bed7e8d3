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

package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyz0309/nebula/classify"
	"github.com/jyz0309/nebula/config"
	"github.com/jyz0309/nebula/execctx"
	"github.com/jyz0309/nebula/executor"
	"github.com/jyz0309/nebula/expr"
	"github.com/jyz0309/nebula/metrics"
	"github.com/jyz0309/nebula/optimizer"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/session"
	"github.com/jyz0309/nebula/status"
	"github.com/jyz0309/nebula/util/clocks"
)

// fakeSentence is the test double for optimizer.Sentence.
type fakeSentence struct {
	explain bool
	profile bool
	count   int
}

func (s fakeSentence) IsExplain() bool { return s.explain }
func (s fakeSentence) IsProfile() bool { return s.profile }
func (s fakeSentence) SentenceCount() int {
	if s.count == 0 {
		return 1
	}
	return s.count
}

// yieldOnePlan builds the "YIELD 1 AS a" plan from spec section 8 scenario 1.
func yieldOnePlan() *plan.Plan {
	a := plan.NewArena()
	start := plan.NewStart(a, "$$start", nil)
	proj := plan.NewProject(a, start, []plan.YieldItem{
		{Expr: expr.MustParse("1"), Alias: "a"},
	}, "$$result")
	return plan.New(a, proj)
}

type optimizerFunc func(ctx context.Context, sentence optimizer.Sentence) (*plan.Plan, status.Status)

func (f optimizerFunc) FindBestPlan(ctx context.Context, sentence optimizer.Sentence) (*plan.Plan, status.Status) {
	return f(ctx, sentence)
}

func okParser(sentence optimizer.Sentence) optimizer.Parser {
	return func(ctx context.Context, rawQuery string) (optimizer.Sentence, status.Status) {
		return sentence, status.OKStatus
	}
}

func okValidator() optimizer.Validator {
	return func(ctx context.Context, sentence optimizer.Sentence) status.Status {
		return status.OKStatus
	}
}

func newTestInstance(id int64, rawQuery string, parser optimizer.Parser, validator optimizer.Validator, opt optimizer.Optimizer, registry *executor.Registry, mg *metrics.Graph, cfg config.Config) (*Instance, *session.Session) {
	sess := session.New(1, "alice")
	return New(id, rawQuery, sess, parser, validator, opt, registry, mg, cfg, clocks.NewMock()), sess
}

// Test_Instance_TrivialPassthrough grounds spec section 8 scenario 1.
func Test_Instance_TrivialPassthrough(t *testing.T) {
	sentence := fakeSentence{}
	opt := optimizerFunc(func(ctx context.Context, s optimizer.Sentence) (*plan.Plan, status.Status) {
		return yieldOnePlan(), status.OKStatus
	})
	mg := metrics.New(prometheus.NewRegistry())
	in, sess := newTestInstance(101, "YIELD 1 AS a", okParser(sentence), okValidator(), opt, executor.NewDefaultRegistry(), mg, config.Default())

	resp := in.Execute(context.Background())
	require.Equal(t, classify.SUCCEEDED, resp.ErrorCode)
	require.NotNil(t, resp.Data)
	assert.Equal(t, plan.Columns{"a"}, resp.Data.Columns)
	require.Len(t, resp.Data.Rows, 1)
	v, ok := resp.Data.Rows[0][0].Int()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, StateDone, in.State())
	assert.Equal(t, 0, sess.NumQueries(), "P9: query must be removed from its session on the terminal transition")
	assert.Equal(t, float64(1), testutil.ToFloat64(mg.NumSentences))
}

// Test_Instance_SyntaxError grounds spec section 8 scenario 2.
func Test_Instance_SyntaxError(t *testing.T) {
	parser := func(ctx context.Context, rawQuery string) (optimizer.Sentence, status.Status) {
		return nil, status.New(status.SyntaxError, "unexpected token %q", "YIEL")
	}
	mg := metrics.New(prometheus.NewRegistry())
	in, sess := newTestInstance(102, "YIEL 1", parser, okValidator(), optimizerFunc(nil), executor.NewDefaultRegistry(), mg, config.Default())

	resp := in.Execute(context.Background())
	assert.Equal(t, classify.ESyntaxError, resp.ErrorCode)
	assert.NotEmpty(t, resp.ErrorMsg)
	assert.Nil(t, resp.Data)
	assert.Equal(t, 0, sess.NumQueries())
}

// Test_Instance_ExplainWithoutProfile grounds spec section 8 scenario 3
// (P3: EXPLAIN purity - no scheduling happens, so the projection's own
// executor never runs and $$result is never written).
func Test_Instance_ExplainWithoutProfile(t *testing.T) {
	sentence := fakeSentence{explain: true}
	p := yieldOnePlan()
	opt := optimizerFunc(func(ctx context.Context, s optimizer.Sentence) (*plan.Plan, status.Status) {
		return p, status.OKStatus
	})
	mg := metrics.New(prometheus.NewRegistry())
	in, _ := newTestInstance(103, "EXPLAIN YIELD 1", okParser(sentence), okValidator(), opt, executor.NewDefaultRegistry(), mg, config.Default())

	resp := in.Execute(context.Background())
	assert.Equal(t, classify.SUCCEEDED, resp.ErrorCode)
	assert.Nil(t, resp.Data)
	assert.NotEmpty(t, resp.PlanDesc)
	assert.Equal(t, StateDone, in.State())
	assert.False(t, in.vars.Exists("$$result"), "EXPLAIN without PROFILE must not execute the plan")
}

// Test_Instance_ExplainProfile grounds spec section 8 scenario 4 (P4).
func Test_Instance_ExplainProfile(t *testing.T) {
	sentence := fakeSentence{explain: true, profile: true}
	opt := optimizerFunc(func(ctx context.Context, s optimizer.Sentence) (*plan.Plan, status.Status) {
		return yieldOnePlan(), status.OKStatus
	})
	mg := metrics.New(prometheus.NewRegistry())
	in, _ := newTestInstance(104, "EXPLAIN PROFILE YIELD 1", okParser(sentence), okValidator(), opt, executor.NewDefaultRegistry(), mg, config.Default())

	resp := in.Execute(context.Background())
	assert.Equal(t, classify.SUCCEEDED, resp.ErrorCode)
	assert.NotNil(t, resp.Data)
	assert.NotEmpty(t, resp.PlanDesc)
}

// leaderChangedExecutor always fails with LeaderChanged, standing in for a
// storage-layer executor whose RPC discovered the partition's leader moved.
type leaderChangedExecutor struct{}

func (leaderChangedExecutor) Execute(ctx context.Context) *executor.Future {
	return executor.Resolved(status.New(status.LeaderChanged, "partition leader changed"))
}

// Test_Instance_LeaderChangedIncrementsCounter grounds spec section 8
// scenario 5: a failing executor maps to E_EXECUTION_ERROR at the wire but
// still bumps the dedicated leader-changed counter.
func Test_Instance_LeaderChangedIncrementsCounter(t *testing.T) {
	a := plan.NewArena()
	failing := plan.NewDescTag(a, "person", "$$tag", plan.Columns{"name"})
	p := plan.New(a, failing)

	registry := executor.NewRegistry()
	registry.Register(plan.KindDescTag, func(n plan.Node, vars *execctx.Context) executor.Executor {
		return leaderChangedExecutor{}
	})

	sentence := fakeSentence{}
	opt := optimizerFunc(func(ctx context.Context, s optimizer.Sentence) (*plan.Plan, status.Status) {
		return p, status.OKStatus
	})
	mg := metrics.New(prometheus.NewRegistry())
	in, sess := newTestInstance(105, "DESC TAG person", okParser(sentence), okValidator(), opt, registry, mg, config.Default())

	resp := in.Execute(context.Background())
	assert.Equal(t, classify.EExecutionError, resp.ErrorCode)
	assert.Equal(t, float64(1), testutil.ToFloat64(mg.NumQueryErrorsLeaderChange))
	assert.Equal(t, float64(1), testutil.ToFloat64(mg.NumQueryErrors))
	assert.Equal(t, 0, sess.NumQueries())
}

// Test_Instance_SpaceLabeledMetrics verifies that space-labeled variants
// only emit when both EnableSpaceLevelMetrics and a non-empty space are
// present (spec section 6).
func Test_Instance_SpaceLabeledMetrics(t *testing.T) {
	sentence := fakeSentence{}
	opt := optimizerFunc(func(ctx context.Context, s optimizer.Sentence) (*plan.Plan, status.Status) {
		return yieldOnePlan(), status.OKStatus
	})
	cfg := config.Default()
	cfg.EnableSpaceLevelMetrics = true
	mg := metrics.New(prometheus.NewRegistry())
	sess := session.New(1, "alice")
	sess.SetSpace("mygraph")
	in := New(106, "YIELD 1 AS a", sess, okParser(sentence), okValidator(), opt, executor.NewDefaultRegistry(), mg, cfg, clocks.NewMock())

	resp := in.Execute(context.Background())
	require.Equal(t, classify.SUCCEEDED, resp.ErrorCode)
	assert.Equal(t, "mygraph", resp.SpaceName)
	assert.Equal(t, float64(1), testutil.ToFloat64(mg.NumSentencesSpace.WithLabelValues("mygraph")))
}
