package scenario

import (
	"fmt"

	"github.com/specialistvlad/aerolca/internal/resolver"
	"gopkg.in/yaml.v3"
)

// Value is one parameter entry of a scenario document.
type Value struct {
	direct    resolver.Datum
	refYears  []float64
	refValues []float64
}

type mappingValue struct {
	Years           []int     `yaml:"years"`
	Values          yaml.Node `yaml:"values"`
	ReferenceYears  []float64 `yaml:"reference_years"`
	ReferenceValues []float64 `yaml:"reference_values"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		d, err := scalarDatum(node)
		if err != nil {
			return err
		}
		v.direct = d
		return nil
	case yaml.SequenceNode:
		d, err := sequenceDatum(node, nil)
		if err != nil {
			return err
		}
		v.direct = d
		return nil
	case yaml.MappingNode:
		var m mappingValue
		if err := node.Decode(&m); err != nil {
			return err
		}
		return v.fromMapping(node, m)
	default:
		return fmt.Errorf("line %d: unsupported parameter value", node.Line)
	}
}

func (v *Value) fromMapping(node *yaml.Node, m mappingValue) error {
	hasSeries := m.Years != nil || !m.Values.IsZero()
	hasRef := m.ReferenceYears != nil || m.ReferenceValues != nil
	switch {
	case hasSeries && hasRef:
		return fmt.Errorf("line %d: use either years/values or reference_years/reference_values", node.Line)
	case hasRef:
		if m.ReferenceYears == nil || m.ReferenceValues == nil {
			return fmt.Errorf("line %d: reference_years and reference_values must be given together", node.Line)
		}
		v.refYears, v.refValues = m.ReferenceYears, m.ReferenceValues
		return nil
	case hasSeries:
		if m.Years == nil || m.Values.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: years and a values list must be given together", node.Line)
		}
		d, err := sequenceDatum(&m.Values, m.Years)
		if err != nil {
			return err
		}
		v.direct = d
		return nil
	default:
		return fmt.Errorf("line %d: empty parameter mapping", node.Line)
	}
}

type scalar struct {
	null    bool
	isLabel bool
	num     float64
	label   string
}

func parseScalar(node *yaml.Node) (scalar, error) {
	switch node.ShortTag() {
	case "!!null":
		return scalar{null: true}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return scalar{}, err
		}
		if b {
			return scalar{num: 1}, nil
		}
		return scalar{}, nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return scalar{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return scalar{num: f}, nil
	default:
		return scalar{isLabel: true, label: node.Value}, nil
	}
}

func scalarDatum(node *yaml.Node) (resolver.Datum, error) {
	sc, err := parseScalar(node)
	switch {
	case err != nil:
		return resolver.Datum{}, err
	case sc.null:
		return resolver.NotProvided(), nil
	case sc.isLabel:
		return resolver.Label(sc.label), nil
	default:
		return resolver.Scalar(sc.num), nil
	}
}

// sequenceDatum converts a list of numbers, booleans or labels. years, when
// not nil, indexes the entries.
func sequenceDatum(node *yaml.Node, years []int) (resolver.Datum, error) {
	if len(node.Content) == 0 {
		return resolver.Datum{}, fmt.Errorf("line %d: empty series", node.Line)
	}
	var nums []float64
	var labels []string
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return resolver.Datum{}, fmt.Errorf("line %d: series entries must be scalars", item.Line)
		}
		sc, err := parseScalar(item)
		switch {
		case err != nil:
			return resolver.Datum{}, err
		case sc.null:
			return resolver.Datum{}, fmt.Errorf("line %d: null entries are not allowed in a series", item.Line)
		case sc.isLabel:
			labels = append(labels, sc.label)
		default:
			nums = append(nums, sc.num)
		}
	}
	if nums != nil && labels != nil {
		return resolver.Datum{}, fmt.Errorf("line %d: series mixes numbers and labels", node.Line)
	}

	if labels != nil {
		if years != nil {
			return resolver.IndexedLabelSeries(years, labels)
		}
		return resolver.LabelSeries(labels), nil
	}
	if years != nil {
		return resolver.IndexedSeries(years, nums)
	}
	return resolver.Series(nums), nil
}

// apply writes the entry for parameter name into in.
func (v Value) apply(name string, in resolver.Input) {
	if v.refYears != nil {
		in[name+resolver.ReferenceYearsSuffix] = resolver.Series(v.refYears)
		in[name+resolver.ReferenceValuesSuffix] = resolver.Series(v.refValues)
		return
	}
	in[name] = v.direct
}
