package resolver

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/model"
	"github.com/specialistvlad/aerolca/internal/param"
	"github.com/specialistvlad/aerolca/internal/vector"
)

// Resolver resolves scenario inputs onto a fixed timeline.
type Resolver struct {
	timeline     Timeline
	interpolator Interpolator
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInterpolator replaces the default Linear interpolator.
func WithInterpolator(i Interpolator) Option {
	return func(r *Resolver) {
		r.interpolator = i
	}
}

// New creates a Resolver for the given timeline.
func New(timeline Timeline, opts ...Option) (*Resolver, error) {
	if err := timeline.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{timeline: timeline, interpolator: Linear{}}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Timeline returns the timeline the Resolver aligns values to.
func (r *Resolver) Timeline() Timeline {
	return r.timeline
}

// Resolve produces a full-timeline value for every descriptor in params.
// Warnings are logged at WARN level and also returned. The first hard error
// aborts resolution.
func (r *Resolver) Resolve(ctx context.Context, params []*param.Descriptor, in Input) (model.Values, []Warning, error) {
	logger := ctxlog.FromContext(ctx)
	out := make(model.Values, len(params))
	var warnings []Warning

	known := make(map[string]struct{}, 3*len(params))
	for _, d := range params {
		known[d.Name] = struct{}{}
		known[d.Name+ReferenceYearsSuffix] = struct{}{}
		known[d.Name+ReferenceValuesSuffix] = struct{}{}

		v, ws, err := r.resolveOne(d, in)
		if err != nil {
			return nil, nil, err
		}
		for _, w := range ws {
			logger.Warn(w.Message, "param", w.Param, "kind", w.Kind.String())
		}
		warnings = append(warnings, ws...)
		out[d.Name] = v
	}

	for name, datum := range in {
		if _, ok := known[name]; !ok && datum.Provided() {
			logger.Debug("Ignoring input that matches no declared parameter.", "input", name)
		}
	}

	logger.Debug("Parameters resolved.", "count", len(out), "warnings", len(warnings))
	return out, warnings, nil
}

func (r *Resolver) resolveOne(d *param.Descriptor, in Input) (param.Value, []Warning, error) {
	var warnings []Warning
	direct := in[d.Name]
	refYears := in[d.Name+ReferenceYearsSuffix]
	refValues := in[d.Name+ReferenceValuesSuffix]
	hasRef := refYears.Provided() && refValues.Provided()

	if refYears.Provided() != refValues.Provided() {
		present, absent := ReferenceYearsSuffix, ReferenceValuesSuffix
		if refValues.Provided() {
			present, absent = absent, present
		}
		warnings = append(warnings, Warning{
			Kind:    IncompleteReference,
			Param:   d.Name,
			Message: fmt.Sprintf("Ignoring %s%s without %s%s.", d.Name, present, d.Name, absent),
		})
	}

	if direct.Provided() {
		if hasRef {
			warnings = append(warnings, Warning{
				Kind:    ConflictingParameterSpecification,
				Param:   d.Name,
				Message: fmt.Sprintf("Both a direct value and reference years were supplied for '%s'; discarding %s%s and %s%s.", d.Name, d.Name, ReferenceYearsSuffix, d.Name, ReferenceValuesSuffix),
			})
		}
		v, trimmed, err := r.direct(d, direct)
		if err != nil {
			return param.Value{}, nil, err
		}
		if trimmed {
			warnings = append(warnings, Warning{
				Kind:    TrimmedSeries,
				Param:   d.Name,
				Message: fmt.Sprintf("Series for '%s' has %d values; keeping the first %d.", d.Name, direct.Len(), r.timeline.Len()),
			})
		}
		return v, warnings, nil
	}

	if hasRef {
		v, err := r.interpolate(d, refYears, refValues)
		if err != nil {
			return param.Value{}, nil, err
		}
		return v, warnings, nil
	}

	warnings = append(warnings, Warning{
		Kind:    MissingParameterValue,
		Param:   d.Name,
		Message: fmt.Sprintf("No value supplied for '%s'; using default %s.", d.Name, d.DefaultValue()),
	})
	return r.defaultValue(d), warnings, nil
}

func (r *Resolver) defaultValue(d *param.Descriptor) param.Value {
	n := r.timeline.Len()
	if d.Kind == param.Enum {
		labels := make([]string, n)
		for i := range labels {
			labels[i] = d.DefaultLabel
		}
		return param.Labels(labels)
	}
	return param.Numbers(vector.Fill(n, d.Default))
}

// direct aligns a directly supplied datum to the timeline. It reports whether
// a positional series was trimmed.
func (r *Resolver) direct(d *param.Descriptor, datum Datum) (param.Value, bool, error) {
	if datum.IsLabel() != (d.Kind == param.Enum) {
		return param.Value{}, false, &param.InvalidParameterValueError{
			Param:  d.Name,
			Value:  datum.describe(),
			Reason: fmt.Sprintf("%s parameter cannot take a %s", d.Kind, datum.describe()),
		}
	}

	if d.Kind == param.Enum {
		labels, trimmed, err := align(r.timeline, d.Name, datum, datum.strings())
		if err != nil {
			return param.Value{}, false, err
		}
		for _, l := range labels {
			if l != "" && !slices.Contains(d.Values, l) {
				return param.Value{}, false, &param.InvalidParameterValueError{
					Param:  d.Name,
					Value:  l,
					Reason: fmt.Sprintf("expected one of %v", d.Values),
				}
			}
		}
		return param.Labels(labels), trimmed, nil
	}

	nums, trimmed, err := align(r.timeline, d.Name, datum, datum.floats())
	if err != nil {
		return param.Value{}, false, err
	}
	return param.Numbers(vector.Sanitize(nums)), trimmed, nil
}

// align maps the entries of a datum onto the timeline.
func align[T any](t Timeline, name string, datum Datum, entries []T) ([]T, bool, error) {
	n := t.Len()

	if datum.Indexed() {
		byYear := make(map[int]T, len(entries))
		for i, y := range datum.years {
			byYear[y] = entries[i]
		}
		out := make([]T, n)
		var missing []int
		for i, y := range t.Years() {
			v, ok := byYear[y]
			if !ok {
				missing = append(missing, y)
				continue
			}
			out[i] = v
		}
		if len(entries) == 1 && len(missing) > 0 {
			for i := range out {
				out[i] = entries[0]
			}
			return out, false, nil
		}
		if len(missing) > 0 {
			return nil, false, &InsufficientParameterCoverageError{Param: name, Got: len(entries), Want: n, Missing: missing}
		}
		return out, false, nil
	}

	switch {
	case len(entries) == n:
		return append([]T(nil), entries...), false, nil
	case len(entries) == 1:
		out := make([]T, n)
		for i := range out {
			out[i] = entries[0]
		}
		return out, false, nil
	case len(entries) > n:
		return append([]T(nil), entries[:n]...), true, nil
	default:
		return nil, false, &InsufficientParameterCoverageError{Param: name, Got: len(entries), Want: n}
	}
}

func (r *Resolver) interpolate(d *param.Descriptor, yearsDatum, valuesDatum Datum) (param.Value, error) {
	if d.Kind == param.Enum {
		return param.Value{}, &InvalidReferenceError{Param: d.Name, Reason: "enum parameters cannot be interpolated"}
	}
	if yearsDatum.IsLabel() || valuesDatum.IsLabel() {
		return param.Value{}, &InvalidReferenceError{Param: d.Name, Reason: "reference years and values must be numeric"}
	}
	years := yearsDatum.floats()
	values := valuesDatum.floats()
	if len(years) == 0 {
		return param.Value{}, &InvalidReferenceError{Param: d.Name, Reason: "no reference points"}
	}
	if len(years) != len(values) {
		return param.Value{}, &InvalidReferenceError{Param: d.Name, Reason: fmt.Sprintf("%d reference years but %d reference values", len(years), len(values))}
	}
	for i, y := range years {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return param.Value{}, &InvalidReferenceError{Param: d.Name, Reason: "reference years must be finite"}
		}
		if i > 0 && y <= years[i-1] {
			return param.Value{}, &InvalidReferenceError{Param: d.Name, Reason: "reference years must be strictly increasing"}
		}
	}

	v := r.interpolator.Interpolate(years, vector.Sanitize(values), r.timeline.Years())
	if len(v) != r.timeline.Len() {
		return param.Value{}, fmt.Errorf("interpolator returned %d values for %d years", len(v), r.timeline.Len())
	}
	return param.Numbers(vector.Sanitize(v)), nil
}
