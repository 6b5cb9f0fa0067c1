// Package consteval evaluates explicit union discriminants written as
// integer constant expressions.
//
// Expressions use Go syntax and exact constant arithmetic: integer literals
// in any base, named constants, parentheses, unary + - ^ and binary
// + - * / % << >> & | ^ &^. Anything else (floats, strings, calls, unknown
// names, division by zero, results outside int64) is unevaluable.
package consteval

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"sort"
	"sync"

	"github.com/algebnaly/xdr-brk-enum/pkg/union"
)

// maxShift bounds shift counts so that a hostile expression cannot build an
// enormous intermediate constant.
const maxShift = 64

// Evaluator evaluates union.Literal, union.ConstFunc and union.Expression
// discriminants against a table of named constants.
//
// It is safe for concurrent use.
type Evaluator struct {
	mu     sync.RWMutex
	consts map[string]int64
}

var _ union.Evaluator = (*Evaluator)(nil)

// New creates an Evaluator seeded with consts. The map is copied.
func New(consts map[string]int64) *Evaluator {
	e := &Evaluator{consts: make(map[string]int64, len(consts))}
	for name, v := range consts {
		e.consts[name] = v
	}
	return e
}

// Define evaluates expr and binds the result to name, so later expressions
// can refer to it. Redefining a name is an error.
func (e *Evaluator) Define(name, expr string) (int64, error) {
	if !token.IsIdentifier(name) {
		return 0, fmt.Errorf("invalid constant name %q", name)
	}

	v, err := e.Eval(expr)
	if err != nil {
		return 0, fmt.Errorf("constant %s: %w", name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.consts[name]; exists {
		return 0, fmt.Errorf("constant %s already defined", name)
	}
	e.consts[name] = v
	return v, nil
}

// Lookup returns the value of a named constant.
func (e *Evaluator) Lookup(name string) (int64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.consts[name]
	return v, ok
}

// Names returns the defined constant names in sorted order.
func (e *Evaluator) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.consts))
	for name := range e.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvalConst implements union.Evaluator.
func (e *Evaluator) EvalConst(expr union.Expr) (int64, error) {
	switch x := expr.(type) {
	case union.Expression:
		return e.Eval(string(x))
	case nil:
		return 0, fmt.Errorf("nil expression")
	default:
		return union.LiteralEvaluator{}.EvalConst(expr)
	}
}

// Eval evaluates a constant expression source string.
func (e *Evaluator) Eval(src string) (int64, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", src, err)
	}

	e.mu.RLock()
	val, err := e.eval(node)
	e.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	v, exact := constant.Int64Val(val)
	if !exact {
		return 0, fmt.Errorf("%q = %s does not fit in int64", src, val.ExactString())
	}
	return v, nil
}

func (e *Evaluator) eval(node ast.Expr) (constant.Value, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, fmt.Errorf("unsupported literal %s", n.Value)
		}
		v := constant.MakeFromLiteral(n.Value, n.Kind, 0)
		if v.Kind() == constant.Unknown {
			return nil, fmt.Errorf("malformed integer literal %s", n.Value)
		}
		return v, nil

	case *ast.Ident:
		v, ok := e.consts[n.Name]
		if !ok {
			return nil, fmt.Errorf("undefined constant %s", n.Name)
		}
		return constant.MakeInt64(v), nil

	case *ast.ParenExpr:
		return e.eval(n.X)

	case *ast.UnaryExpr:
		x, err := e.eval(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD, token.SUB, token.XOR:
			// prec 0 gives unbounded ^x, i.e. -x-1 on signed values.
			return constant.UnaryOp(n.Op, x, 0), nil
		}
		return nil, fmt.Errorf("unsupported unary operator %s", n.Op)

	case *ast.BinaryExpr:
		x, err := e.eval(n.X)
		if err != nil {
			return nil, err
		}
		y, err := e.eval(n.Y)
		if err != nil {
			return nil, err
		}
		return binaryOp(n.Op, x, y)
	}

	return nil, fmt.Errorf("unsupported expression %T", node)
}

func binaryOp(op token.Token, x, y constant.Value) (constant.Value, error) {
	switch op {
	case token.ADD, token.SUB, token.MUL, token.AND, token.OR, token.XOR, token.AND_NOT:
		return constant.BinaryOp(x, op, y), nil

	case token.QUO, token.REM:
		if constant.Sign(y) == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if op == token.QUO {
			// QUO_ASSIGN selects integer division for integer operands.
			return constant.BinaryOp(x, token.QUO_ASSIGN, y), nil
		}
		return constant.BinaryOp(x, op, y), nil

	case token.SHL, token.SHR:
		s, exact := constant.Uint64Val(y)
		if !exact || constant.Sign(y) < 0 {
			return nil, fmt.Errorf("invalid shift count %s", y.ExactString())
		}
		if s > maxShift {
			return nil, fmt.Errorf("shift count %d exceeds %d", s, maxShift)
		}
		return constant.Shift(x, op, uint(s)), nil
	}

	return nil, fmt.Errorf("unsupported binary operator %s", op)
}
