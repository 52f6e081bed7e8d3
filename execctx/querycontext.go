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
	"github.com/jyz0309/nebula/plan"
)

// QueryContext is the per-request object a Query Instance owns: the
// variable store, the arena every plan node in this request's plan
// belongs to, and the plan itself once OPTIMIZING has set it (spec
// section 3: "Query Instance (C5) owns a Query Context ...", section 6:
// "A QueryContext factory capable of producing an object arena").
type QueryContext struct {
	Vars  *Context
	arena *plan.Arena
	p     *plan.Plan
}

// NewQueryContext creates a QueryContext with a fresh arena and an empty
// variable store. The plan itself is set later, by OPTIMIZING, via
// SetPlan.
func NewQueryContext() *QueryContext {
	return &QueryContext{Vars: New(), arena: plan.NewArena()}
}

// Arena returns the object arena new plan nodes for this request should
// be created in.
func (qc *QueryContext) Arena() *plan.Arena { return qc.arena }

// Plan returns the plan set by SetPlan, or nil before OPTIMIZING runs.
func (qc *QueryContext) Plan() *plan.Plan { return qc.p }

// SetPlan records the optimizer's output as this request's plan.
func (qc *QueryContext) SetPlan(p *plan.Plan) { qc.p = p }
