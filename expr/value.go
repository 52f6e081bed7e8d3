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

// Package expr implements the condition and projection expressions plan
// nodes carry as payload (spec section 3: "kind-specific payload
// (expressions, ...)"). The full query grammar - FROM/WHERE clauses, graph
// traversal patterns, DDL/DML statements - is out of scope (spec section
// 1); this package only covers the scalar expressions a Select/Loop
// condition or a YIELD projection needs to evaluate against one row of
// bound variables.
package expr

import (
	"fmt"
	"strconv"
)

// Kind identifies the dynamic type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Value is the dynamically-typed scalar result of evaluating an
// expression against one row.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null is the absent/unknown value; comparisons and arithmetic against it
// always produce Null, mirroring three-valued SQL-ish semantics.
var Null = Value{kind: KindNull}

func BoolValue(b bool) Value     { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value     { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool reports v's boolean value and whether v actually held one.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Float returns v as a float64, coercing Int, and whether the coercion
// succeeded.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Int returns v as an int64 if it is exactly an integer.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return fmt.Sprintf("<invalid kind %d>", v.kind)
	}
}

// GoString renders v the way a literal would be written back in
// expression source, used by Expr.String() for literal nodes.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.String()
}
