package param

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/aerolca/internal/vector"
)

// DefaultSuffix names the indicator set when an enum parameter has no value.
const DefaultSuffix = "default"

// Descriptor declares one named parameter. Which fields are meaningful depends
// on Kind: Float uses Default, Min and Max; Bool uses Default (0 or 1); Enum
// uses Values and DefaultLabel.
type Descriptor struct {
	Name        string
	Kind        Kind
	Unit        string
	Label       string
	Group       string
	Description string

	Default float64
	Min     *float64
	Max     *float64

	Values       []string
	DefaultLabel string
}

// NewFloat declares a continuous parameter.
func NewFloat(name string, def float64) *Descriptor {
	return &Descriptor{Name: name, Kind: Float, Default: def}
}

// NewBool declares a boolean parameter.
func NewBool(name string, def bool) *Descriptor {
	d := &Descriptor{Name: name, Kind: Bool}
	if def {
		d.Default = 1
	}
	return d
}

// NewEnum declares a categorical parameter. An empty def means the parameter
// has no default category.
func NewEnum(name string, values []string, def string) *Descriptor {
	return &Descriptor{Name: name, Kind: Enum, Values: slices.Clone(values), DefaultLabel: def}
}

// Validate checks the descriptor is internally consistent.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("parameter with empty name")
	}
	switch d.Kind {
	case Float:
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			return fmt.Errorf("parameter '%s': min %g is greater than max %g", d.Name, *d.Min, *d.Max)
		}
	case Bool:
		if d.Default != 0 && d.Default != 1 {
			return fmt.Errorf("parameter '%s': bool default must be 0 or 1, got %g", d.Name, d.Default)
		}
	case Enum:
		if len(d.Values) == 0 {
			return fmt.Errorf("enum parameter '%s' declares no values", d.Name)
		}
		seen := make(map[string]struct{}, len(d.Values))
		for _, v := range d.Values {
			if v == "" || v == DefaultSuffix {
				return fmt.Errorf("enum parameter '%s': reserved or empty value %q", d.Name, v)
			}
			if _, dup := seen[v]; dup {
				return fmt.Errorf("enum parameter '%s': duplicate value %q", d.Name, v)
			}
			seen[v] = struct{}{}
		}
		if d.DefaultLabel != "" && !slices.Contains(d.Values, d.DefaultLabel) {
			return fmt.Errorf("enum parameter '%s': default %q is not one of its values", d.Name, d.DefaultLabel)
		}
	default:
		return fmt.Errorf("parameter '%s': unsupported kind %s", d.Name, d.Kind)
	}
	return nil
}

// DefaultValue returns the descriptor default as a Value.
func (d *Descriptor) DefaultValue() Value {
	if d.Kind == Enum {
		if d.DefaultLabel == "" {
			return None()
		}
		return Label(d.DefaultLabel)
	}
	return Number(d.Default)
}

// IndicatorName returns the expanded variable name for one enum category.
func (d *Descriptor) IndicatorName(value string) string {
	return d.Name + "_" + value
}

// ExpandNames returns the variable names a formula sees for this parameter.
func (d *Descriptor) ExpandNames() []string {
	if d.Kind != Enum {
		return []string{d.Name}
	}
	names := make([]string, len(d.Values))
	for i, v := range d.Values {
		names[i] = d.IndicatorName(v)
	}
	return names
}

// variableNames is ExpandNames plus the implicit default indicator.
func (d *Descriptor) variableNames() []string {
	names := d.ExpandNames()
	if d.Kind == Enum {
		names = append(names, d.IndicatorName(DefaultSuffix))
	}
	return names
}

// ExpandValues converts v into the variables a formula consumes. A None value
// on a float or bool parameter falls back to the default.
func (d *Descriptor) ExpandValues(v Value) (map[string]vector.Vector, error) {
	switch d.Kind {
	case Float, Bool:
		return d.expandNumeric(v)
	case Enum:
		return d.expandEnum(v)
	default:
		return nil, fmt.Errorf("parameter '%s': unsupported kind %s", d.Name, d.Kind)
	}
}

func (d *Descriptor) expandNumeric(v Value) (map[string]vector.Vector, error) {
	if v.IsLabel() {
		return nil, &InvalidParameterValueError{Param: d.Name, Value: v.String(), Reason: fmt.Sprintf("%s parameter expects a number", d.Kind)}
	}
	if v.IsNone() {
		v = Number(d.Default)
	}
	nums := v.Nums()
	if d.Kind == Bool {
		for _, x := range nums {
			if x != 0 && x != 1 {
				return nil, &InvalidParameterValueError{Param: d.Name, Value: fmt.Sprintf("%g", x), Reason: "bool parameter expects 0 or 1"}
			}
		}
	}
	return map[string]vector.Vector{d.Name: nums}, nil
}

func (d *Descriptor) expandEnum(v Value) (map[string]vector.Vector, error) {
	if !v.IsNone() && !v.IsLabel() {
		return nil, &InvalidParameterValueError{Param: d.Name, Value: v.String(), Reason: "enum parameter expects a category label"}
	}
	labels := v.LabelSlice()
	if labels == nil {
		labels = []string{""}
	}

	out := make(map[string]vector.Vector, len(d.Values)+1)
	for _, cat := range d.Values {
		out[d.IndicatorName(cat)] = make(vector.Vector, len(labels))
	}
	def := make(vector.Vector, len(labels))
	out[d.IndicatorName(DefaultSuffix)] = def

	for i, label := range labels {
		if label == "" {
			def[i] = 1
			continue
		}
		ind, ok := out[d.IndicatorName(label)]
		if !ok || label == DefaultSuffix {
			return nil, &InvalidParameterValueError{Param: d.Name, Value: label, Reason: fmt.Sprintf("expected one of %v", d.Values)}
		}
		ind[i] = 1
	}
	return out, nil
}
