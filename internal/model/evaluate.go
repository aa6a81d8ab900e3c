package model

import (
	"context"
	"fmt"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/lambda"
	"github.com/specialistvlad/aerolca/internal/param"
	"github.com/specialistvlad/aerolca/internal/vector"
)

// Values is a resolved parameter vector: one Value per parameter name.
// Parameters not present fall back to their declared defaults.
type Values map[string]param.Value

// Evaluate computes metric under axis, normalized by the named functional
// unit, for the given parameter values. Empty axis and functionalUnit select
// DefaultAxis and DefaultFunctionalUnit. The returned unit is the impact unit
// and the functional-unit unit joined by "/".
//
// For decomposed axes the NullAxis label is dropped when its contribution is
// zero everywhere; a non-zero NullAxis contribution is kept and logged.
func (m *Model) Evaluate(ctx context.Context, metric, functionalUnit, axis string, values Values) (lambda.Result, string, error) {
	if axis == "" {
		axis = DefaultAxis
	}
	if functionalUnit == "" {
		functionalUnit = DefaultFunctionalUnit
	}

	metrics, ok := m.expressions[axis]
	if !ok {
		return lambda.Result{}, "", &UnknownAxisError{Axis: axis, Known: m.Axes()}
	}
	l, ok := metrics[metric]
	if !ok {
		return lambda.Result{}, "", &UnknownImpactError{Metric: metric, Axis: axis}
	}
	fu, ok := m.functionalUnits[functionalUnit]
	if !ok {
		return lambda.Result{}, "", &UnknownFunctionalUnitError{Name: functionalUnit}
	}

	raw, err := l.Evaluate(m.params, values)
	if err != nil {
		return lambda.Result{}, "", fmt.Errorf("evaluating '%s' on axis '%s': %w", metric, axis, err)
	}
	norm, err := fu.Evaluate(m.params, values)
	if err != nil {
		return lambda.Result{}, "", fmt.Errorf("evaluating functional unit '%s': %w", functionalUnit, err)
	}

	unit := m.impacts[metric].Unit + "/" + fu.Unit
	divide := func(x, y float64) float64 { return x / y }

	if !raw.IsDecomposed() {
		v, err := vector.Zip(raw.Value, norm, divide)
		if err != nil {
			return lambda.Result{}, "", fmt.Errorf("normalizing '%s': %w", metric, err)
		}
		return lambda.Result{Value: v}, unit, nil
	}

	out := make(map[string]vector.Vector, len(raw.ByAxis))
	for label, v := range raw.ByAxis {
		if label == NullAxis {
			if vector.AllWithin(v, NullTolerance) {
				continue
			}
			ctxlog.FromContext(ctx).Warn("Keeping non-zero null axis contribution.", "metric", metric, "axis", axis)
		}
		normalized, err := vector.Zip(v, norm, divide)
		if err != nil {
			return lambda.Result{}, "", fmt.Errorf("normalizing '%s' axis '%s': %w", metric, label, err)
		}
		out[label] = normalized
	}
	return lambda.Result{ByAxis: out}, unit, nil
}
