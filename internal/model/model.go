package model

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/lambda"
	"github.com/specialistvlad/aerolca/internal/param"
)

const (
	// DefaultAxis is the axis used when none is requested.
	DefaultAxis = "total"
	// DefaultFunctionalUnit is the functional unit used when none is requested.
	DefaultFunctionalUnit = "air_transport"
	// NullAxis is the bookkeeping axis label dropped from decomposed results
	// when it carries no contribution.
	NullAxis = "null"
	// NullTolerance is the magnitude under which a NullAxis contribution
	// counts as zero.
	NullTolerance = 1e-12
)

// Model is the immutable aggregate of parameters, compiled expressions,
// functional units and impacts.
type Model struct {
	params          param.Set
	expressions     map[string]map[string]*lambda.Lambda
	functionalUnits map[string]*lambda.FunctionalUnit
	impacts         map[string]Impact
	decomposed      map[string]bool
}

// Build validates doc and compiles every formula in it. Any problem is
// reported as a *FormatError before a Model is returned, so a malformed
// document never yields a partially usable Model.
func Build(ctx context.Context, doc *Document) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	params := make(param.Set, len(doc.Params))
	for key, pd := range doc.Params {
		d, err := descriptorFromDoc(key, pd)
		if err != nil {
			return nil, &FormatError{Where: "params." + key, Err: err}
		}
		params[key] = d
	}
	compiler, err := lambda.NewCompiler(params)
	if err != nil {
		return nil, &FormatError{Where: "params", Err: err}
	}

	if len(doc.Expressions) == 0 {
		return nil, formatErr("expressions", "no axes declared")
	}

	m := &Model{
		params:          params,
		expressions:     make(map[string]map[string]*lambda.Lambda, len(doc.Expressions)),
		functionalUnits: make(map[string]*lambda.FunctionalUnit, len(doc.FunctionalUnits)),
		impacts:         make(map[string]Impact, len(doc.Impacts)),
		decomposed:      make(map[string]bool, len(doc.Expressions)),
	}
	for key, imp := range doc.Impacts {
		m.impacts[key] = imp
	}

	for _, axis := range sortedKeys(doc.Expressions) {
		metrics := doc.Expressions[axis]
		compiled := make(map[string]*lambda.Lambda, len(metrics))
		decomposedCount := 0

		for _, metric := range sortedKeys(metrics) {
			where := fmt.Sprintf("expressions.%s.%s", axis, metric)
			if _, ok := m.impacts[metric]; !ok {
				return nil, formatErr(where, "metric has no entry in impacts")
			}
			ld := metrics[metric]
			l, err := compiler.Compile(ld.Expr, ld.Params)
			if err != nil {
				return nil, &FormatError{Where: where, Err: err}
			}
			if l.IsDecomposed() {
				decomposedCount++
			}
			compiled[metric] = l
			logger.Debug("Compiled expression.", "axis", axis, "metric", metric, "params", l.Params(), "decomposed", l.IsDecomposed())
		}

		for metric := range m.impacts {
			if _, ok := compiled[metric]; !ok {
				return nil, formatErr("expressions."+axis, "impact '%s' has no expression", metric)
			}
		}
		if decomposedCount != 0 && decomposedCount != len(compiled) {
			return nil, formatErr("expressions."+axis, "axis mixes decomposed and single expressions")
		}

		m.expressions[axis] = compiled
		m.decomposed[axis] = decomposedCount > 0
	}

	for _, name := range sortedKeys(doc.FunctionalUnits) {
		fud := doc.FunctionalUnits[name]
		where := "functional_units." + name
		q, err := compiler.Compile(fud.Quantity.Expr, fud.Quantity.Params)
		if err != nil {
			return nil, &FormatError{Where: where, Err: err}
		}
		if q.IsDecomposed() {
			return nil, formatErr(where, "functional unit quantity must be a single expression")
		}
		m.functionalUnits[name] = &lambda.FunctionalUnit{Quantity: q, Unit: fud.Unit}
	}

	logger.Debug("Model built.", "params", len(m.params), "axes", len(m.expressions), "impacts", len(m.impacts), "functional_units", len(m.functionalUnits))
	return m, nil
}

func descriptorFromDoc(key string, pd ParamDoc) (*param.Descriptor, error) {
	if pd.Name != "" && pd.Name != key {
		return nil, fmt.Errorf("name '%s' does not match its key", pd.Name)
	}
	kind, err := param.ParseKind(pd.Type)
	if err != nil {
		return nil, err
	}

	d := &param.Descriptor{
		Name:        key,
		Kind:        kind,
		Unit:        pd.Unit,
		Label:       pd.Label,
		Group:       pd.Group,
		Description: pd.Description,
		Min:         pd.Min,
		Max:         pd.Max,
		Values:      slices.Clone(pd.Values),
	}

	switch kind {
	case param.Float:
		switch v := pd.Default.(type) {
		case nil:
		case float64:
			d.Default = v
		default:
			return nil, fmt.Errorf("float default must be a number, got %T", pd.Default)
		}
	case param.Bool:
		switch v := pd.Default.(type) {
		case nil:
		case bool:
			if v {
				d.Default = 1
			}
		case float64:
			d.Default = v
		default:
			return nil, fmt.Errorf("bool default must be a boolean, got %T", pd.Default)
		}
	case param.Enum:
		switch v := pd.Default.(type) {
		case nil:
		case string:
			d.DefaultLabel = v
		default:
			return nil, fmt.Errorf("enum default must be a label, got %T", pd.Default)
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func descriptorToDoc(d *param.Descriptor) ParamDoc {
	pd := ParamDoc{
		Name:        d.Name,
		Type:        d.Kind.String(),
		Unit:        d.Unit,
		Label:       d.Label,
		Group:       d.Group,
		Description: d.Description,
		Min:         d.Min,
		Max:         d.Max,
		Values:      slices.Clone(d.Values),
	}
	switch d.Kind {
	case param.Float:
		pd.Default = d.Default
	case param.Bool:
		pd.Default = d.Default == 1
	case param.Enum:
		if d.DefaultLabel != "" {
			pd.Default = d.DefaultLabel
		}
	}
	return pd
}

func lambdaToDoc(l *lambda.Lambda) LambdaDoc {
	return LambdaDoc{Params: l.Params(), Expr: l.Source()}
}

// Document returns the portable representation of m.
func (m *Model) Document() *Document {
	doc := &Document{
		Params:          make(map[string]ParamDoc, len(m.params)),
		Expressions:     make(map[string]map[string]LambdaDoc, len(m.expressions)),
		FunctionalUnits: make(map[string]FunctionalUnitDoc, len(m.functionalUnits)),
		Impacts:         make(map[string]Impact, len(m.impacts)),
	}
	for name, d := range m.params {
		doc.Params[name] = descriptorToDoc(d)
	}
	for axis, metrics := range m.expressions {
		out := make(map[string]LambdaDoc, len(metrics))
		for metric, l := range metrics {
			out[metric] = lambdaToDoc(l)
		}
		doc.Expressions[axis] = out
	}
	for name, fu := range m.functionalUnits {
		doc.FunctionalUnits[name] = FunctionalUnitDoc{Quantity: lambdaToDoc(fu.Quantity), Unit: fu.Unit}
	}
	for metric, imp := range m.impacts {
		doc.Impacts[metric] = imp
	}
	return doc
}

// Params returns the declared parameter descriptors sorted by name.
func (m *Model) Params() []*param.Descriptor {
	out := make([]*param.Descriptor, 0, len(m.params))
	for _, name := range sortedKeys(m.params) {
		out = append(out, m.params[name])
	}
	return out
}

// Param returns the descriptor declared under name.
func (m *Model) Param(name string) (*param.Descriptor, bool) {
	d, ok := m.params[name]
	return d, ok
}

// Axes returns the sorted axis names.
func (m *Model) Axes() []string {
	return sortedKeys(m.expressions)
}

// Decomposed reports whether the expressions under axis are split by axis
// label. It is false for unknown axes.
func (m *Model) Decomposed(axis string) bool {
	return m.decomposed[axis]
}

// Metrics returns the sorted metric keys registered under axis.
func (m *Model) Metrics(axis string) []string {
	return sortedKeys(m.expressions[axis])
}

// AxisLabels returns the sorted union of axis labels of every expression
// under a decomposed axis, excluding NullAxis.
func (m *Model) AxisLabels(axis string) []string {
	labels := make(map[string]struct{})
	for _, l := range m.expressions[axis] {
		for _, label := range l.Axes() {
			if label != NullAxis {
				labels[label] = struct{}{}
			}
		}
	}
	return sortedKeys(labels)
}

// Lambda returns the compiled expression for (axis, metric).
func (m *Model) Lambda(axis, metric string) (*lambda.Lambda, bool) {
	l, ok := m.expressions[axis][metric]
	return l, ok
}

// FunctionalUnits returns the sorted functional-unit names.
func (m *Model) FunctionalUnits() []string {
	return sortedKeys(m.functionalUnits)
}

// Impact returns the metadata of a metric.
func (m *Model) Impact(metric string) (Impact, bool) {
	imp, ok := m.impacts[metric]
	return imp, ok
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
