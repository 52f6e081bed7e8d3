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

package expr

import "fmt"

// Getter is the minimal read-only view of a row's bound variables an
// expression needs. execctx.RowGetter's adapter over one DataSet row
// implements it; keeping the dependency this narrow avoids expr importing execctx (expr
// is lower in the stack - evaluated by the executors execctx values flow
// through, not the other way around).
type Getter interface {
	GetVar(name string) (Value, bool)
}

// Expr is a parsed expression tree. It satisfies plan.Expression (just
// String()) so a *plan.Select or *plan.Loop can hold one directly as its
// Condition without plan importing this package.
type Expr interface {
	String() string
	// Eval evaluates the expression against row, the current variable
	// bindings. A reference to an unbound variable is not an error - it
	// evaluates to Null, same as SQL - but a type mismatch (e.g. adding a
	// string to an int) is.
	Eval(row Getter) (Value, error)
}

// UnaryOp identifies a prefix operator.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "NOT "
	default:
		return "?"
	}
}

// BinaryOp identifies an infix operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	And
	Or
)

var binaryOpSymbols = map[BinaryOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Neq: "!=", Lt: "<", Lte: "<=", Gt: ">", Gte: ">=",
	And: "AND", Or: "OR",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpSymbols[op]; ok {
		return s
	}
	return "?"
}

// Literal is a constant value baked into the expression at parse time.
type Literal struct {
	Value Value
}

func (l *Literal) String() string { return l.Value.GoString() }

func (l *Literal) Eval(Getter) (Value, error) { return l.Value, nil }

// VarRef reads a named variable out of the current row.
type VarRef struct {
	Name string
}

func (v *VarRef) String() string { return "$" + v.Name }

func (v *VarRef) Eval(row Getter) (Value, error) {
	val, ok := row.GetVar(v.Name)
	if !ok {
		return Null, nil
	}
	return val, nil
}

// UnaryExpr applies a prefix operator to its operand.
type UnaryExpr struct {
	Op UnaryOp
	X  Expr
}

func (u *UnaryExpr) String() string { return u.Op.String() + paren(u.X) }

func (u *UnaryExpr) Eval(row Getter) (Value, error) {
	x, err := u.X.Eval(row)
	if err != nil {
		return Null, err
	}
	if x.IsNull() {
		return Null, nil
	}
	switch u.Op {
	case Not:
		b, ok := x.Bool()
		if !ok {
			return Null, fmt.Errorf("expr: NOT requires a boolean operand, got %v", x)
		}
		return BoolValue(!b), nil
	case Neg:
		if f, ok := x.Float(); ok {
			if i, ok := x.Int(); ok {
				return IntValue(-i), nil
			}
			return FloatValue(-f), nil
		}
		return Null, fmt.Errorf("expr: unary - requires a numeric operand, got %v", x)
	default:
		return Null, fmt.Errorf("expr: unknown unary operator %v", u.Op)
	}
}

// BinaryExpr applies an infix operator to two operands.
type BinaryExpr struct {
	Op   BinaryOp
	L, R Expr
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", paren(b.L), b.Op, paren(b.R))
}

func paren(e Expr) string {
	if _, ok := e.(*BinaryExpr); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
