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

// Package service implements C5, the Query Instance: the state machine
// that owns one request end to end, from raw query text to a client
// Response (spec section 4.5), the way query.Engine.Query drives Parse ->
// Rewrite -> Plan -> Execute for the teacher, one opentracing span per
// phase.
package service

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/jyz0309/nebula/classify"
	"github.com/jyz0309/nebula/config"
	"github.com/jyz0309/nebula/execctx"
	"github.com/jyz0309/nebula/executor"
	"github.com/jyz0309/nebula/metrics"
	"github.com/jyz0309/nebula/optimizer"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/scheduler"
	"github.com/jyz0309/nebula/session"
	"github.com/jyz0309/nebula/status"
	"github.com/jyz0309/nebula/util/clocks"
	"github.com/jyz0309/nebula/util/tracing"
)

// State is one node of the Query Instance's lifecycle state machine (spec
// section 4.5).
type State int

// The full lifecycle, in the order spec section 4.5's diagram lists them.
// Any state can transition to Errored; both ExplainOnly and Executing
// (and Errored) transition to Done.
const (
	StateInit State = iota
	StateParsing
	StateValidating
	StateOptimizing
	StateExplainOnly
	StateExecuting
	StateErrored
	StateDone
)

var stateNames = map[State]string{
	StateInit:        "INIT",
	StateParsing:     "PARSING",
	StateValidating:  "VALIDATING",
	StateOptimizing:  "OPTIMIZING",
	StateExplainOnly: "EXPLAIN_ONLY",
	StateExecuting:   "EXECUTING",
	StateErrored:     "ERRORED",
	StateDone:        "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Response is the client-facing result of one query (spec section 6).
type Response struct {
	ErrorCode   classify.ClientError
	ErrorMsg    string
	SpaceName   string
	LatencyInUs int64
	Data        *execctx.DataSet
	PlanDesc    []*plan.Description
}

// Instance is C5: the owner root for one request's processing, from raw
// query text through parse/validate/optimize/schedule to a filled
// Response. It is created per request and is the sole caller of
// session.Session.AddQuery/RemoveQuery for itself (P9).
type Instance struct {
	id       int64
	rawQuery string
	sess     *session.Session

	parser    optimizer.Parser
	validator optimizer.Validator
	optimizer optimizer.Optimizer
	registry  *executor.Registry
	metrics   *metrics.Graph
	cfg       config.Config
	clock     clocks.Source

	vars *execctx.Context
	log  *logrus.Entry

	state    State
	sentence optimizer.Sentence
	plan     *plan.Plan
	response Response
}

// New constructs a Query Instance for one request. id should come from
// util/random.SecureInt64 so concurrent requests never collide.
func New(
	id int64,
	rawQuery string,
	sess *session.Session,
	parser optimizer.Parser,
	validator optimizer.Validator,
	opt optimizer.Optimizer,
	registry *executor.Registry,
	mg *metrics.Graph,
	cfg config.Config,
	clock clocks.Source,
) *Instance {
	return &Instance{
		id:        id,
		rawQuery:  rawQuery,
		sess:      sess,
		parser:    parser,
		validator: validator,
		optimizer: opt,
		registry:  registry,
		metrics:   mg,
		cfg:       cfg,
		clock:     clock,
		vars:      execctx.New(),
		log:       logrus.WithFields(logrus.Fields{"query_id": id}),
		state:     StateInit,
	}
}

// ID implements session.Query.
func (in *Instance) ID() int64 { return in.id }

// State returns the instance's current lifecycle state.
func (in *Instance) State() State { return in.state }

// Explain renders the instance's plan, if one has been produced yet, for
// the "/debug/plan/:id" handler (SPEC_FULL's [AMBIENT] Metrics) to dump a
// still-live query. Returns nil before OPTIMIZING completes.
func (in *Instance) Explain() []*plan.Description {
	if in.plan == nil {
		return nil
	}
	return plan.Explain(in.plan)
}

// Execute drives the state machine to completion (spec section 4.5) and
// returns the filled Response. It blocks until the query reaches DONE,
// mirroring query.Engine.Query's synchronous-to-the-caller shape (the
// teacher fans results out over a channel instead, since AkutanQL streams
// rows; this core's result sets are bounded so one Response suffices).
func (in *Instance) Execute(ctx context.Context) *Response {
	in.sess.AddQuery(in)
	start := in.clock.Now()

	span, ctx := opentracing.StartSpanFromContext(ctx, "execute query")
	tracing.UpdateMetric(span, in.metrics.QueryLatencyUs)
	defer span.Finish()

	sentence, st := in.parse(ctx)
	if !st.Ok() {
		return in.fail(start, st)
	}
	in.sentence = sentence

	if st := in.validate(ctx, sentence); !st.Ok() {
		return in.fail(start, st)
	}

	p, st := in.optimize(ctx, sentence)
	if !st.Ok() {
		return in.fail(start, st)
	}
	in.plan = p

	if sentence.IsExplain() && !sentence.IsProfile() {
		in.state = StateExplainOnly
		in.response.PlanDesc = plan.Explain(p)
		return in.finish(start)
	}

	var profile *scheduler.Profile
	if sentence.IsProfile() {
		profile = scheduler.NewProfile(in.clock)
	}
	if st := in.schedule(ctx, p, profile); !st.Ok() {
		return in.fail(start, st)
	}
	if sentence.IsProfile() {
		desc := plan.Explain(p)
		for id, stats := range profile.Results() {
			plan.AttachProfile(desc, id, stats)
		}
		in.response.PlanDesc = desc
	}
	return in.finish(start)
}

func (in *Instance) parse(ctx context.Context) (optimizer.Sentence, status.Status) {
	in.state = StateParsing
	span, ctx := opentracing.StartSpanFromContext(ctx, "parse query")
	defer span.Finish()
	sentence, st := in.parser(ctx, in.rawQuery)
	if !st.Ok() {
		return nil, st
	}
	count := float64(sentence.SentenceCount())
	in.metrics.NumSentences.Add(count)
	if space := in.spaceLabel(); space != "" {
		in.metrics.NumSentencesSpace.WithLabelValues(space).Add(count)
	}
	return sentence, status.OKStatus
}

func (in *Instance) validate(ctx context.Context, sentence optimizer.Sentence) status.Status {
	in.state = StateValidating
	span, ctx := opentracing.StartSpanFromContext(ctx, "validate query")
	defer span.Finish()
	return in.validator(ctx, sentence)
}

// optimize runs the optimizer under a scoped timer (spec section 5:
// "scoped acquisitions ... records elapsed microseconds ... on any exit
// path") and tags the span with the same histogram so the span's own
// duration and optimizer_latency_us agree (util/tracing.UpdateMetric).
func (in *Instance) optimize(ctx context.Context, sentence optimizer.Sentence) (*plan.Plan, status.Status) {
	in.state = StateOptimizing
	span, ctx := opentracing.StartSpanFromContext(ctx, "optimize query")
	tracing.UpdateMetric(span, in.metrics.OptimizerLatencyUs)
	defer span.Finish()

	var elapsedUs int64
	timer := clocks.NewScopedTimer(in.clock, &elapsedUs)
	p, st := in.optimizer.FindBestPlan(ctx, sentence)
	timer.Stop()

	if p != nil {
		p.OptimizeLatencyUs = elapsedUs
	}
	if space := in.spaceLabel(); space != "" {
		in.metrics.OptimizerLatencyUsSpace.WithLabelValues(space).Observe(float64(elapsedUs))
	}
	return p, st
}

func (in *Instance) schedule(ctx context.Context, p *plan.Plan, profile *scheduler.Profile) status.Status {
	in.state = StateExecuting
	span, ctx := opentracing.StartSpanFromContext(ctx, "schedule query")
	defer span.Finish()
	sched := scheduler.New(in.registry)
	if profile != nil {
		return sched.ScheduleProfiled(ctx, p.Root(), in.vars, profile).Await()
	}
	return sched.Schedule(ctx, p.Root(), in.vars).Await()
}

// finish implements onFinish (spec section 4.5): fill response data from
// the root's output variable when there is one to fill (EXPLAIN without
// PROFILE never ran the scheduler, so it skips this), record latency and
// slow-query stats, remove the query from its session, and self-destruct.
func (in *Instance) finish(start clocks.Time) *Response {
	ranScheduler := !(in.sentence.IsExplain() && !in.sentence.IsProfile())
	if ranScheduler {
		root := in.plan.Root()
		if len(root.OutputColumns()) == 0 {
			return in.fail(start, status.New(status.Error,
				"root node %q produced no output columns", root.OutputVar()))
		}
		ds, err := in.vars.MoveValue(root.OutputVar())
		if err != nil {
			return in.fail(start, status.Wrap(err))
		}
		in.response.Data = &ds
	}
	in.response.ErrorCode = classify.SUCCEEDED
	in.response.SpaceName = in.sess.Space()
	in.recordLatency(start)
	in.teardown()
	return &in.response
}

// fail implements onError (spec section 4.5/4.6): classify the status,
// record the error and latency, remove the query from its session, and
// self-destruct.
func (in *Instance) fail(start clocks.Time, st status.Status) *Response {
	in.state = StateErrored
	in.log.WithFields(logrus.Fields{"status": st.String()}).Error("query failed")

	in.response.ErrorCode = classify.Of(st.Code())
	in.response.ErrorMsg = st.Message()
	in.response.SpaceName = in.sess.Space()

	in.metrics.NumQueryErrors.Inc()
	if classify.IsLeaderChanged(st.Code()) {
		in.metrics.NumQueryErrorsLeaderChange.Inc()
	}
	if space := in.spaceLabel(); space != "" {
		in.metrics.NumQueryErrorsSpace.WithLabelValues(space).Inc()
	}

	in.recordLatency(start)
	in.teardown()
	return &in.response
}

// recordLatency fills LatencyInUs and updates query_latency_us plus the
// slow-query counters when latency exceeds cfg.SlowQueryThresholdUs (P8).
func (in *Instance) recordLatency(start clocks.Time) {
	latencyUs := in.clock.Now().Sub(start).Microseconds()
	in.response.LatencyInUs = latencyUs

	space := in.spaceLabel()
	if space != "" {
		in.metrics.QueryLatencyUsSpace.WithLabelValues(space).Observe(float64(latencyUs))
	}
	if uint64(latencyUs) > in.cfg.SlowQueryThresholdUs {
		in.metrics.NumSlowQueries.Inc()
		in.metrics.SlowQueryLatencyUs.Observe(float64(latencyUs))
		if space != "" {
			in.metrics.NumSlowQueriesSpace.WithLabelValues(space).Inc()
			in.metrics.SlowQueryLatencyUsSpace.WithLabelValues(space).Observe(float64(latencyUs))
		}
	}
}

// spaceLabel returns the session's current space name if space-level
// metrics are enabled and a space is selected, "" otherwise - the gate
// spec section 6 describes for every *Space metric variant.
func (in *Instance) spaceLabel() string {
	if !in.cfg.EnableSpaceLevelMetrics {
		return ""
	}
	return in.sess.Space()
}

// teardown implements the "exactly-once teardown on every terminal
// transition" requirement (spec section 9): mark DONE and deregister from
// the session. Safe to call only once per Instance, which fail/finish
// guarantee since Execute calls exactly one of them.
func (in *Instance) teardown() {
	in.state = StateDone
	in.sess.RemoveQuery(in.id)
}
