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

// Package optimizer declares the contracts service.Instance drives during
// its PARSING, VALIDATING and OPTIMIZING transitions (spec section 4.5).
// The parser, validator and rule-based optimizer are explicit external
// collaborators (spec section 1): this package only pins down the shape
// service.Instance calls through, the way the teacher's query.StatsProvider
// and planner.Prepare pin down query.Engine's external seams without this
// module owning their bodies.
package optimizer

import (
	"context"

	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/status"
)

// Sentence is the external parser's output: a parsed statement together
// with the modifiers service.Instance's state machine branches on.
type Sentence interface {
	// IsExplain reports whether the statement was wrapped in EXPLAIN.
	IsExplain() bool
	// IsProfile reports whether an EXPLAIN-wrapped statement also carried
	// PROFILE, so the response needs both planDesc and data (P4).
	IsProfile() bool
	// SentenceCount is the num_sentences increment (P8): the sub-statement
	// count for a SEQUENTIAL statement, 1 for anything else.
	SentenceCount() int
}

// Parser turns raw query text into a Sentence, or fails with a
// status.SyntaxError / status.StatementEmpty Status.
type Parser func(ctx context.Context, rawQuery string) (Sentence, status.Status)

// Validator checks a parsed Sentence against the session's current space
// and permissions, failing with status.SemanticError or
// status.PermissionError.
type Validator func(ctx context.Context, sentence Sentence) status.Status

// Optimizer is the external rule-based optimizer's handoff contract (spec
// section 6: "An optimizer reference with findBestPlan(ctx) -> Status |
// PlanNode*"). FindBestPlan is called under service.Instance's scoped
// optimizer-latency timer; it must not retain sentence or the returned
// plan beyond what it hands back.
type Optimizer interface {
	FindBestPlan(ctx context.Context, sentence Sentence) (*plan.Plan, status.Status)
}
