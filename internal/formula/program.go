package formula

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/aerolca/internal/vector"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Program is a compiled formula. It holds no mutable state and is safe for
// concurrent use.
type Program struct {
	source    string
	variables []string
	functions []string
	eval      evalFunc
	constant  vector.Vector
}

// Compile parses and compiles a formula. Parse errors, unknown functions and
// unsupported constructs are reported here, never at evaluation time.
func Compile(source string) (*Program, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), "formula", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse formula %q: %w", source, diags)
	}

	variables, functions, err := extractVariablesAndFunctions(expr)
	if err != nil {
		return nil, fmt.Errorf("formula %q: %w", source, err)
	}
	for _, name := range functions {
		if _, ok := builtins[name]; !ok {
			return nil, fmt.Errorf("formula %q: unknown function '%s'", source, name)
		}
	}

	eval, err := compileNode(expr)
	if err != nil {
		return nil, fmt.Errorf("formula %q: %w", source, err)
	}

	p := &Program{
		source:    source,
		variables: variables,
		functions: functions,
		eval:      eval,
	}
	if len(variables) == 0 {
		c, err := p.fold(expr)
		if err != nil {
			return nil, fmt.Errorf("formula %q: %w", source, err)
		}
		p.constant = c
	}
	return p, nil
}

// fold evaluates a variable-free formula once with the vector evaluator, so
// constant and variable formulas share float64 arithmetic. HCL also evaluates
// it with the cty function set as a cross-check; formulas HCL's type rules
// reject (for example arithmetic on a comparison result) skip the check.
func (p *Program) fold(expr hclsyntax.Expression) (vector.Vector, error) {
	out, err := p.eval(Env{})
	if err != nil {
		return nil, err
	}
	val, diags := expr.Value(&hcl.EvalContext{Functions: ctyFunctions()})
	if diags.HasErrors() || !val.IsKnown() || val.IsNull() {
		return out, nil
	}
	var want float64
	switch val.Type() {
	case cty.Number:
		if err := gocty.FromCtyValue(val, &want); err != nil {
			return out, nil
		}
	case cty.Bool:
		want = boolFloat(val.True())
	default:
		return nil, fmt.Errorf("constant formula evaluates to %s, not a number", val.Type().FriendlyName())
	}
	if got := out[0]; math.Abs(got-want) > foldTolerance*math.Max(1, math.Abs(want)) {
		return nil, fmt.Errorf("constant formula evaluates to %g but HCL evaluates it to %g", got, want)
	}
	return out, nil
}

// foldTolerance bounds the relative disagreement between float64 and cty
// arithmetic on a constant formula.
const foldTolerance = 1e-9

// MustCompile is like Compile but panics on error. It is intended for
// formulas fixed at build time, such as in tests.
func MustCompile(source string) *Program {
	p, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the formula text exactly as it was compiled.
func (p *Program) Source() string {
	return p.source
}

// Variables returns the sorted free variable names of the formula.
func (p *Program) Variables() []string {
	out := make([]string, len(p.variables))
	copy(out, p.variables)
	return out
}

// Functions returns the sorted names of functions the formula calls.
func (p *Program) Functions() []string {
	out := make([]string, len(p.functions))
	copy(out, p.functions)
	return out
}

// IsConstant reports whether the formula has no free variables.
func (p *Program) IsConstant() bool {
	return p.constant != nil
}

// Eval evaluates the formula. Every free variable must be present in env;
// extra entries are ignored. A constant formula ignores env entirely.
func (p *Program) Eval(env Env) (vector.Vector, error) {
	if p.constant != nil {
		return p.constant.Clone(), nil
	}
	out, err := p.eval(env)
	if err != nil {
		return nil, err
	}
	return out.Clone(), nil
}
