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

// Package execctx implements C2, the per-query execution context: the
// variable store plan-node executors publish into and read from, plus the
// plan/session/response handles a Query Instance threads through a
// request's lifetime (spec sections 3, 4.2).
package execctx

import (
	"fmt"
	"sync"

	"github.com/jyz0309/nebula/expr"
	"github.com/jyz0309/nebula/plan"
)

// ErrVarConsumed is returned by GetValue/MoveValue when name has already
// been moved out by a prior MoveValue call (spec section 4.2: "subsequent
// reads fail with E_VAR_CONSUMED"); Exists reports false for such a name.
var ErrVarConsumed = fmt.Errorf("execctx: E_VAR_CONSUMED")

// DataSet is the row-set shape a plan node's output variable holds: an
// ordered list of column names plus the rows, each a slice of
// expr.Value aligned with Columns.
type DataSet struct {
	Columns plan.Columns
	Rows    [][]expr.Value
}

type slot struct {
	value     DataSet
	consumed  bool
}

// Context is the per-query variable store (spec section 4.2). A
// control-flow executor (Select, Loop) may read a sibling branch's
// variable concurrently with that branch's own writes, so access is
// guarded by a mutex regardless of the scheduler's happen-before edges.
type Context struct {
	mu   sync.Mutex
	vars map[string]*slot
}

// New creates an empty Context, owned by one Query Context for its entire
// lifetime (spec section 3: "Lifecycle: created with the Query Context;
// destroyed with it").
func New() *Context {
	return &Context{vars: make(map[string]*slot)}
}

// SetValue publishes value under name. It fails if name is already set in
// this epoch unless overwrite is true (spec section 4.2).
func (c *Context) SetValue(name string, value DataSet, overwrite bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.vars[name]; ok && !overwrite {
		if existing.consumed {
			return fmt.Errorf("execctx: variable %q already consumed in this epoch", name)
		}
		return fmt.Errorf("execctx: variable %q already set in this epoch", name)
	}
	c.vars[name] = &slot{value: value}
	return nil
}

// GetValue reads name by reference: repeated calls see the same value and
// never invalidate it (spec section 4.2).
func (c *Context) GetValue(name string) (DataSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.vars[name]
	if !ok {
		return DataSet{}, fmt.Errorf("execctx: variable %q is not set", name)
	}
	if s.consumed {
		return DataSet{}, ErrVarConsumed
	}
	return s.value, nil
}

// MoveValue destructively takes name's value, leaving a tombstone: every
// subsequent GetValue/MoveValue/Exists-implied read of name fails with
// ErrVarConsumed (spec section 4.2). Used by the sole downstream reader
// that declares itself the consumer, to avoid copying a large row-set.
func (c *Context) MoveValue(name string) (DataSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.vars[name]
	if !ok {
		return DataSet{}, fmt.Errorf("execctx: variable %q is not set", name)
	}
	if s.consumed {
		return DataSet{}, ErrVarConsumed
	}
	s.consumed = true
	value := s.value
	s.value = DataSet{}
	return value, nil
}

// Exists reports whether name is currently set and not yet consumed.
func (c *Context) Exists(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.vars[name]
	return ok && !s.consumed
}

// row implements expr.Getter by exposing one DataSet row's columns as
// named variables - an expression like "$age > 30" reads the column
// "age" out of whichever row is currently being evaluated.
type row struct {
	columns plan.Columns
	values  []expr.Value
}

func (r row) GetVar(name string) (expr.Value, bool) {
	for i, col := range r.columns {
		if col == name {
			return r.values[i], true
		}
	}
	return expr.Null, false
}

// RowGetter adapts one row of ds into an expr.Getter for evaluating a
// condition or projection expression against it.
func RowGetter(ds DataSet, rowIndex int) expr.Getter {
	return row{columns: ds.Columns, values: ds.Rows[rowIndex]}
}
