package lambda

import (
	"fmt"
	"slices"
	"sort"

	"github.com/specialistvlad/aerolca/internal/formula"
	"github.com/specialistvlad/aerolca/internal/param"
	"github.com/specialistvlad/aerolca/internal/vector"
)

// Result is the value of one Lambda: a single vector, or one vector per axis
// label for a decomposed Lambda.
type Result struct {
	Value  vector.Vector
	ByAxis map[string]vector.Vector
}

// IsDecomposed reports whether r holds per-axis values.
func (r Result) IsDecomposed() bool {
	return r.ByAxis != nil
}

// Lambda is a compiled formula, or set of per-axis formulas, together with the
// declared parameters it depends on. It is immutable once compiled.
type Lambda struct {
	source   Source
	params   []string
	single   *formula.Program
	programs map[string]*formula.Program
}

// Compile compiles src against the declared parameters. Every formula
// variable must be an expanded name of a declared parameter. When listed is
// non-nil it is kept as the dependency list, provided it covers every
// parameter the formulas actually reference; otherwise the minimal set is
// derived from the formulas.
func Compile(src Source, declared param.Set, listed []string) (*Lambda, error) {
	unexpand, err := declared.Resolver()
	if err != nil {
		return nil, err
	}
	return compile(src, declared, listed, unexpand)
}

// Compiler compiles many Lambdas against the same declared parameters,
// indexing the parameters once.
type Compiler struct {
	declared param.Set
	unexpand func([]string) ([]string, error)
}

// NewCompiler indexes declared for repeated compilation.
func NewCompiler(declared param.Set) (*Compiler, error) {
	unexpand, err := declared.Resolver()
	if err != nil {
		return nil, err
	}
	return &Compiler{declared: declared, unexpand: unexpand}, nil
}

// Compile is like the package-level Compile.
func (c *Compiler) Compile(src Source, listed []string) (*Lambda, error) {
	return compile(src, c.declared, listed, c.unexpand)
}

func compile(src Source, declared param.Set, listed []string, unexpand func([]string) ([]string, error)) (*Lambda, error) {
	l := &Lambda{source: src}
	var variables []string

	if src.IsDecomposed() {
		l.programs = make(map[string]*formula.Program, len(src.ByAxis))
		for _, label := range src.Labels() {
			p, err := formula.Compile(src.ByAxis[label])
			if err != nil {
				return nil, fmt.Errorf("axis '%s': %w", label, err)
			}
			l.programs[label] = p
			variables = append(variables, p.Variables()...)
		}
	} else {
		p, err := formula.Compile(src.Expr)
		if err != nil {
			return nil, err
		}
		l.single = p
		variables = p.Variables()
	}

	required, err := unexpand(variables)
	if err != nil {
		return nil, err
	}

	if listed == nil {
		l.params = required
		return l, nil
	}
	for _, name := range listed {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("dependency '%s' is not a declared parameter", name)
		}
	}
	for _, name := range required {
		if !slices.Contains(listed, name) {
			return nil, fmt.Errorf("formula references parameter '%s' missing from its dependency list", name)
		}
	}
	l.params = slices.Clone(listed)
	sort.Strings(l.params)
	l.params = slices.Compact(l.params)
	return l, nil
}

// Source returns the formula text the Lambda was compiled from.
func (l *Lambda) Source() Source {
	return l.source
}

// Params returns the sorted names of the declared parameters l depends on.
func (l *Lambda) Params() []string {
	return slices.Clone(l.params)
}

// IsDecomposed reports whether l evaluates to per-axis values.
func (l *Lambda) IsDecomposed() bool {
	return l.programs != nil
}

// Axes returns the sorted axis labels of a decomposed Lambda.
func (l *Lambda) Axes() []string {
	return l.source.Labels()
}

// IsConstant reports whether no formula of l has free variables.
func (l *Lambda) IsConstant() bool {
	if l.single != nil {
		return l.single.IsConstant()
	}
	for _, p := range l.programs {
		if !p.IsConstant() {
			return false
		}
	}
	return true
}

// Evaluate computes l. Each dependency starts at its declared default and is
// overridden by supplied[name] when present; supplied entries for parameters
// l does not depend on are ignored. Enum values are expanded to indicators
// before the formulas run. Evaluate reads no shared mutable state.
func (l *Lambda) Evaluate(declared param.Set, supplied map[string]param.Value) (Result, error) {
	env := make(formula.Env)
	for _, name := range l.params {
		d, ok := declared[name]
		if !ok {
			return Result{}, fmt.Errorf("dependency '%s' is not a declared parameter", name)
		}
		value := d.DefaultValue()
		if v, ok := supplied[name]; ok {
			value = v
		}
		expanded, err := d.ExpandValues(value)
		if err != nil {
			return Result{}, err
		}
		for k, v := range expanded {
			env[k] = v
		}
	}

	if l.single != nil {
		v, err := l.single.Eval(env)
		if err != nil {
			return Result{}, err
		}
		return Result{Value: v}, nil
	}

	byAxis := make(map[string]vector.Vector, len(l.programs))
	for label, p := range l.programs {
		v, err := p.Eval(env)
		if err != nil {
			return Result{}, fmt.Errorf("axis '%s': %w", label, err)
		}
		byAxis[label] = v
	}
	return Result{ByAxis: byAxis}, nil
}

// FunctionalUnit is the quantity an impact is divided by, with its unit.
type FunctionalUnit struct {
	Quantity *Lambda
	Unit     string
}

// Evaluate computes the functional-unit quantity. Functional units are never
// axis-decomposed.
func (fu *FunctionalUnit) Evaluate(declared param.Set, supplied map[string]param.Value) (vector.Vector, error) {
	if fu.Quantity.IsDecomposed() {
		return nil, fmt.Errorf("functional unit quantity must not be axis-decomposed")
	}
	res, err := fu.Quantity.Evaluate(declared, supplied)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}
