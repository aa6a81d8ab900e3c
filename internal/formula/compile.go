package formula

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/aerolca/internal/vector"
	"github.com/zclconf/go-cty/cty"
)

// ErrMissingVariable is returned when a formula is evaluated without a value
// for one of its free variables.
var ErrMissingVariable = errors.New("missing variable")

// Env maps expanded variable names to their values.
type Env map[string]vector.Vector

type evalFunc func(env Env) (vector.Vector, error)

// compileNode turns one AST node into a closure.
func compileNode(expr hclsyntax.Expression) (evalFunc, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		f, err := literalFloat(e.Val)
		if err != nil {
			return nil, fmt.Errorf("at %s: %w", e.SrcRange, err)
		}
		return func(Env) (vector.Vector, error) {
			return vector.Scalar(f), nil
		}, nil

	case *hclsyntax.ScopeTraversalExpr:
		name := e.Traversal.RootName()
		if len(e.Traversal) != 1 {
			return nil, fmt.Errorf("at %s: unsupported reference '%s'", e.SrcRange, traversalKey(e.Traversal))
		}
		return func(env Env) (vector.Vector, error) {
			v, ok := env[name]
			if !ok {
				return nil, fmt.Errorf("%w '%s'", ErrMissingVariable, name)
			}
			return v, nil
		}, nil

	case *hclsyntax.ParenthesesExpr:
		return compileNode(e.Expression)

	case *hclsyntax.UnaryOpExpr:
		return compileUnary(e)

	case *hclsyntax.BinaryOpExpr:
		return compileBinary(e)

	case *hclsyntax.ConditionalExpr:
		return compileConditional(e)

	case *hclsyntax.FunctionCallExpr:
		return compileCall(e)

	default:
		return nil, fmt.Errorf("at %s: unsupported expression %T", expr.Range(), expr)
	}
}

func literalFloat(val cty.Value) (float64, error) {
	if val.IsNull() || !val.IsKnown() {
		return 0, fmt.Errorf("literal must be a known value")
	}
	switch val.Type() {
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case cty.Bool:
		return boolFloat(val.True()), nil
	default:
		return 0, fmt.Errorf("unsupported literal of type %s", val.Type().FriendlyName())
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func compileUnary(e *hclsyntax.UnaryOpExpr) (evalFunc, error) {
	operand, err := compileNode(e.Val)
	if err != nil {
		return nil, err
	}

	var op func(float64) float64
	switch e.Op {
	case hclsyntax.OpNegate:
		op = func(x float64) float64 { return -x }
	case hclsyntax.OpLogicalNot:
		op = func(x float64) float64 { return boolFloat(x == 0) }
	default:
		return nil, fmt.Errorf("at %s: unsupported unary operator", e.SrcRange)
	}

	return func(env Env) (vector.Vector, error) {
		v, err := operand(env)
		if err != nil {
			return nil, err
		}
		return vector.Map(v, op), nil
	}, nil
}

func binaryOp(op *hclsyntax.Operation) func(x, y float64) float64 {
	switch op {
	case hclsyntax.OpAdd:
		return func(x, y float64) float64 { return x + y }
	case hclsyntax.OpSubtract:
		return func(x, y float64) float64 { return x - y }
	case hclsyntax.OpMultiply:
		return func(x, y float64) float64 { return x * y }
	case hclsyntax.OpDivide:
		return func(x, y float64) float64 { return x / y }
	case hclsyntax.OpModulo:
		return math.Mod
	case hclsyntax.OpEqual:
		return func(x, y float64) float64 { return boolFloat(x == y) }
	case hclsyntax.OpNotEqual:
		return func(x, y float64) float64 { return boolFloat(x != y) }
	case hclsyntax.OpGreaterThan:
		return func(x, y float64) float64 { return boolFloat(x > y) }
	case hclsyntax.OpGreaterThanOrEqual:
		return func(x, y float64) float64 { return boolFloat(x >= y) }
	case hclsyntax.OpLessThan:
		return func(x, y float64) float64 { return boolFloat(x < y) }
	case hclsyntax.OpLessThanOrEqual:
		return func(x, y float64) float64 { return boolFloat(x <= y) }
	case hclsyntax.OpLogicalAnd:
		return func(x, y float64) float64 { return boolFloat(x != 0 && y != 0) }
	case hclsyntax.OpLogicalOr:
		return func(x, y float64) float64 { return boolFloat(x != 0 || y != 0) }
	default:
		return nil
	}
}

func compileBinary(e *hclsyntax.BinaryOpExpr) (evalFunc, error) {
	op := binaryOp(e.Op)
	if op == nil {
		return nil, fmt.Errorf("at %s: unsupported binary operator", e.SrcRange)
	}
	lhs, err := compileNode(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := compileNode(e.RHS)
	if err != nil {
		return nil, err
	}

	return func(env Env) (vector.Vector, error) {
		l, err := lhs(env)
		if err != nil {
			return nil, err
		}
		r, err := rhs(env)
		if err != nil {
			return nil, err
		}
		return vector.Zip(l, r, op)
	}, nil
}

func compileConditional(e *hclsyntax.ConditionalExpr) (evalFunc, error) {
	cond, err := compileNode(e.Condition)
	if err != nil {
		return nil, err
	}
	whenTrue, err := compileNode(e.TrueResult)
	if err != nil {
		return nil, err
	}
	whenFalse, err := compileNode(e.FalseResult)
	if err != nil {
		return nil, err
	}

	return func(env Env) (vector.Vector, error) {
		c, err := cond(env)
		if err != nil {
			return nil, err
		}
		t, err := whenTrue(env)
		if err != nil {
			return nil, err
		}
		f, err := whenFalse(env)
		if err != nil {
			return nil, err
		}
		n, err := vector.BroadcastLen(c, t, f)
		if err != nil {
			return nil, err
		}
		out := make(vector.Vector, n)
		for i := range out {
			if c.At(i) != 0 {
				out[i] = t.At(i)
			} else {
				out[i] = f.At(i)
			}
		}
		return out, nil
	}, nil
}

func compileCall(e *hclsyntax.FunctionCallExpr) (evalFunc, error) {
	fn, ok := builtins[e.Name]
	if !ok {
		return nil, fmt.Errorf("at %s: unknown function '%s'", e.NameRange, e.Name)
	}
	if e.ExpandFinal {
		return nil, fmt.Errorf("at %s: argument expansion is not supported in '%s'", e.NameRange, e.Name)
	}
	if len(e.Args) < fn.minArgs || (fn.maxArgs >= 0 && len(e.Args) > fn.maxArgs) {
		return nil, fmt.Errorf("at %s: function '%s' called with %d arguments", e.NameRange, e.Name, len(e.Args))
	}

	args := make([]evalFunc, len(e.Args))
	for i, arg := range e.Args {
		compiled, err := compileNode(arg)
		if err != nil {
			return nil, err
		}
		args[i] = compiled
	}

	return func(env Env) (vector.Vector, error) {
		vals := make([]vector.Vector, len(args))
		for i, arg := range args {
			v, err := arg(env)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return fn.vec(vals)
	}, nil
}
