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

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	p "github.com/vektah/goparsify"
)

// Forward-declared so the grammar can recurse through parenthesized
// sub-expressions, the same tie-the-knot trick lang_def.go uses for
// queryRootWhere/term: declare the var first, build the grammar in init(),
// assign into it last.
var (
	expression p.Parser
	orExpr     p.Parser
	andExpr    p.Parser
	compareExpr p.Parser
	addExpr    p.Parser
	mulExpr    p.Parser
	unaryExpr  p.Parser
	primary    p.Parser
)

func init() {
	id := p.Chars("A-Za-z0-9_", 1)
	varRef := p.Seq("$", id).Map(func(n *p.Result) {
		n.Result = &VarRef{Name: n.Child[1].Token}
	})
	boolLit := p.Any("true", "false").Map(func(n *p.Result) {
		n.Result = &Literal{Value: BoolValue(n.Token == "true")}
	})
	numberLit := p.NumberLit().Map(func(n *p.Result) {
		switch v := n.Result.(type) {
		case int64:
			n.Result = &Literal{Value: IntValue(v)}
		case float64:
			n.Result = &Literal{Value: FloatValue(v)}
		default:
			n.Result = &Literal{Value: Null}
		}
	})
	stringLit := p.StringLit(`"`).Map(func(n *p.Result) {
		n.Result = &Literal{Value: StringValue(n.Token)}
	})

	primary = p.Any(
		p.Seq("(", p.Cut(), &expression, ")").Map(func(n *p.Result) {
			n.Result = n.Child[2].Result
		}),
		boolLit, numberLit, stringLit, varRef,
	)

	unaryExpr = p.Any(
		p.Seq("-", p.Cut(), &unaryExpr).Map(func(n *p.Result) {
			n.Result = &UnaryExpr{Op: Neg, X: n.Child[2].Result.(Expr)}
		}),
		p.Seq(p.Any("NOT", "not"), p.Cut(), &unaryExpr).Map(func(n *p.Result) {
			n.Result = &UnaryExpr{Op: Not, X: n.Child[2].Result.(Expr)}
		}),
		&primary,
	)

	mulExpr = leftAssoc(&unaryExpr, map[string]BinaryOp{"*": Mul, "/": Div, "%": Mod})
	addExpr = leftAssoc(&mulExpr, map[string]BinaryOp{"+": Add, "-": Sub})
	compareExpr = leftAssoc(&addExpr, map[string]BinaryOp{
		"<=": Lte, ">=": Gte, "==": Eq, "!=": Neq, "<": Lt, ">": Gt,
	})
	andExpr = leftAssoc(&compareExpr, map[string]BinaryOp{"AND": And, "and": And})
	orExpr = leftAssoc(&andExpr, map[string]BinaryOp{"OR": Or, "or": Or})
	expression = orExpr
}

// leftAssoc builds a left-associative binary-operator level: operand
// (op operand)*, folding the repeated matches into a left-leaning
// BinaryExpr tree. This is the in-scope expression grammar's only
// recursion shape, unlike the full query grammar's hand-rolled precedence
// climbing in where.go - conditions here are simple enough that one
// helper covers every precedence level.
func leftAssoc(operand p.Parserish, ops map[string]BinaryOp) p.Parser {
	opNames := make([]string, 0, len(ops))
	for name := range ops {
		opNames = append(opNames, name)
	}
	// p.Any takes the first alternative that matches at the position, so a
	// shorter token that's a prefix of a longer one (< vs <=) must sort
	// after it; ranging the map gives an arbitrary order, so sort explicitly
	// rather than rely on map iteration order.
	sort.Slice(opNames, func(i, j int) bool {
		return len(opNames[i]) > len(opNames[j])
	})
	opParser := p.Any(toParserish(opNames)...)

	return p.Seq(operand, p.Some(p.Seq(opParser, operand))).Map(func(n *p.Result) {
		result := n.Child[0].Result.(Expr)
		for _, rhs := range n.Child[1].Child {
			opToken := strings.ToUpper(rhs.Child[0].Token)
			op, ok := ops[rhs.Child[0].Token]
			if !ok {
				op, ok = ops[opToken]
			}
			if !ok {
				continue
			}
			result = &BinaryExpr{Op: op, L: result, R: rhs.Child[1].Result.(Expr)}
		}
		n.Result = result
	})
}

func toParserish(names []string) []p.Parserish {
	out := make([]p.Parserish, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

// Parse parses s as a single scalar expression - a Select/Loop condition
// or one YIELD projection term (spec section 3). The full statement
// grammar is out of scope; this only ever sees the substring already
// carved out as "the condition" or "the projection expression" by
// whatever builds the plan.
func Parse(s string) (Expr, error) {
	result, err := p.Run(&expression, s)
	if err != nil {
		return nil, fmt.Errorf("expr: %w", err)
	}
	e, ok := result.(Expr)
	if !ok {
		return nil, fmt.Errorf("expr: parsed %q to unexpected type %T", s, result)
	}
	return e, nil
}

// MustParse is Parse, panicking on error. Used to build literal
// expressions at construction time in tests and in code paths that embed
// expressions as Go source rather than parsing user input.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// quoteID returns s unchanged if it is valid inside a double-quoted Go
// string literal, and strconv.Quote(s) otherwise; currently unused by the parser itself but kept alongside VarRef.String()
// as the inverse operation a future pretty-printer would need.
func quoteID(s string) string {
	if _, err := strconv.Unquote(`"` + s + `"`); err != nil {
		return strconv.Quote(s)
	}
	return s
}
