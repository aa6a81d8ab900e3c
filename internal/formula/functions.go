package formula

import (
	"fmt"
	"math"

	"github.com/specialistvlad/aerolca/internal/vector"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// builtin is one function available to formulas. vec evaluates it over
// vectors; scalar is the cty implementation used for constant folding.
type builtin struct {
	minArgs int
	maxArgs int // -1 means variadic
	vec     func(args []vector.Vector) (vector.Vector, error)
	scalar  function.Function
}

var builtins = map[string]builtin{
	"abs":    unary(math.Abs, stdlib.AbsoluteFunc),
	"ceil":   unary(math.Ceil, stdlib.CeilFunc),
	"floor":  unary(math.Floor, stdlib.FloorFunc),
	"signum": unary(signum, stdlib.SignumFunc),
	"exp":    unary(math.Exp, floatFunc(math.Exp)),
	"ln":     unary(math.Log, floatFunc(math.Log)),
	"sqrt":   unary(math.Sqrt, floatFunc(math.Sqrt)),
	"log": binary(func(x, base float64) float64 {
		return math.Log(x) / math.Log(base)
	}, stdlib.LogFunc),
	"pow": binary(math.Pow, stdlib.PowFunc),
	"min": variadic(math.Min, stdlib.MinFunc),
	"max": variadic(math.Max, stdlib.MaxFunc),
}

// ctyFunctions exposes the scalar implementations to an hcl.EvalContext.
func ctyFunctions() map[string]function.Function {
	out := make(map[string]function.Function, len(builtins))
	for name, b := range builtins {
		out[name] = b.scalar
	}
	return out
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func unary(f func(float64) float64, scalar function.Function) builtin {
	return builtin{
		minArgs: 1,
		maxArgs: 1,
		vec: func(args []vector.Vector) (vector.Vector, error) {
			return vector.Map(args[0], f), nil
		},
		scalar: scalar,
	}
}

func binary(f func(x, y float64) float64, scalar function.Function) builtin {
	return builtin{
		minArgs: 2,
		maxArgs: 2,
		vec: func(args []vector.Vector) (vector.Vector, error) {
			return vector.Zip(args[0], args[1], f)
		},
		scalar: scalar,
	}
}

func variadic(f func(x, y float64) float64, scalar function.Function) builtin {
	return builtin{
		minArgs: 1,
		maxArgs: -1,
		vec: func(args []vector.Vector) (vector.Vector, error) {
			acc := args[0].Clone()
			for _, next := range args[1:] {
				var err error
				if acc, err = vector.Zip(acc, next, f); err != nil {
					return nil, err
				}
			}
			return acc, nil
		},
		scalar: scalar,
	}
}

// floatFunc declares a one-argument cty function backed by a float64 function,
// for operations the cty standard library does not provide.
func floatFunc(f func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "num", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			var x float64
			if err := gocty.FromCtyValue(args[0], &x); err != nil {
				return cty.UnknownVal(cty.Number), err
			}
			res := f(x)
			if math.IsNaN(res) {
				return cty.UnknownVal(cty.Number), fmt.Errorf("result is not a number")
			}
			return cty.NumberFloatVal(res), nil
		},
	})
}
