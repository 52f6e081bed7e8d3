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

// Eval implements Expr. And/Or short-circuit; every other operator
// evaluates both sides first.
func (b *BinaryExpr) Eval(row Getter) (Value, error) {
	if b.Op == And || b.Op == Or {
		return b.evalLogic(row)
	}

	l, err := b.L.Eval(row)
	if err != nil {
		return Null, err
	}
	r, err := b.R.Eval(row)
	if err != nil {
		return Null, err
	}
	if l.IsNull() || r.IsNull() {
		return Null, nil
	}

	switch b.Op {
	case Add, Sub, Mul, Div, Mod:
		return b.evalArith(l, r)
	case Eq, Neq, Lt, Lte, Gt, Gte:
		return b.evalCompare(l, r)
	default:
		return Null, fmt.Errorf("expr: unknown binary operator %v", b.Op)
	}
}

func (b *BinaryExpr) evalLogic(row Getter) (Value, error) {
	l, err := b.L.Eval(row)
	if err != nil {
		return Null, err
	}
	lb, ok := l.Bool()
	if l.IsNull() {
		lb, ok = false, true
	} else if !ok {
		return Null, fmt.Errorf("expr: %v requires boolean operands, got %v", b.Op, l)
	}
	if b.Op == And && !l.IsNull() && !lb {
		return BoolValue(false), nil
	}
	if b.Op == Or && !l.IsNull() && lb {
		return BoolValue(true), nil
	}

	r, err := b.R.Eval(row)
	if err != nil {
		return Null, err
	}
	if r.IsNull() {
		return Null, nil
	}
	rb, ok := r.Bool()
	if !ok {
		return Null, fmt.Errorf("expr: %v requires boolean operands, got %v", b.Op, r)
	}
	if l.IsNull() {
		return Null, nil
	}
	if b.Op == And {
		return BoolValue(lb && rb), nil
	}
	return BoolValue(lb || rb), nil
}

func (b *BinaryExpr) evalArith(l, r Value) (Value, error) {
	li, lIsInt := l.Int()
	ri, rIsInt := r.Int()
	if lIsInt && rIsInt && b.Op != Div {
		switch b.Op {
		case Add:
			return IntValue(li + ri), nil
		case Sub:
			return IntValue(li - ri), nil
		case Mul:
			return IntValue(li * ri), nil
		case Mod:
			if ri == 0 {
				return Null, fmt.Errorf("expr: modulo by zero")
			}
			return IntValue(li % ri), nil
		}
	}

	lf, lok := l.Float()
	rf, rok := r.Float()
	if !lok || !rok {
		return Null, fmt.Errorf("expr: arithmetic requires numeric operands, got %v %v %v", l, b.Op, r)
	}
	switch b.Op {
	case Add:
		return FloatValue(lf + rf), nil
	case Sub:
		return FloatValue(lf - rf), nil
	case Mul:
		return FloatValue(lf * rf), nil
	case Div:
		if rf == 0 {
			return Null, fmt.Errorf("expr: division by zero")
		}
		return FloatValue(lf / rf), nil
	case Mod:
		return Null, fmt.Errorf("expr: modulo requires integer operands, got %v %v %v", l, b.Op, r)
	default:
		return Null, fmt.Errorf("expr: unknown arithmetic operator %v", b.Op)
	}
}

func (b *BinaryExpr) evalCompare(l, r Value) (Value, error) {
	if b.Op == Eq || b.Op == Neq {
		eq := valuesEqual(l, r)
		if b.Op == Neq {
			eq = !eq
		}
		return BoolValue(eq), nil
	}

	lf, lok := l.Float()
	rf, rok := r.Float()
	if !lok || !rok {
		return Null, fmt.Errorf("expr: ordering comparison requires numeric operands, got %v %v %v", l, b.Op, r)
	}
	switch b.Op {
	case Lt:
		return BoolValue(lf < rf), nil
	case Lte:
		return BoolValue(lf <= rf), nil
	case Gt:
		return BoolValue(lf > rf), nil
	case Gte:
		return BoolValue(lf >= rf), nil
	default:
		return Null, fmt.Errorf("expr: unknown comparison operator %v", b.Op)
	}
}

func valuesEqual(l, r Value) bool {
	if lf, lok := l.Float(); lok {
		if rf, rok := r.Float(); rok {
			return lf == rf
		}
	}
	if lb, lok := l.Bool(); lok {
		if rb, rok := r.Bool(); rok {
			return lb == rb
		}
	}
	return l.kind == KindString && r.kind == KindString && l.s == r.s
}
