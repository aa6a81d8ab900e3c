package resolver

import (
	"fmt"
	"slices"
)

const (
	// ReferenceYearsSuffix marks the reference years of an interpolation pair.
	ReferenceYearsSuffix = "_reference_years"
	// ReferenceValuesSuffix marks the reference values of an interpolation pair.
	ReferenceValuesSuffix = "_reference_years_values"
)

type datumKind int

const (
	notProvided datumKind = iota
	scalarKind
	labelKind
	seriesKind
	labelSeriesKind
)

// Datum is one upstream input: not provided, a scalar, a category label, or a
// series of numbers or labels optionally indexed by year. The zero Datum is
// not provided.
type Datum struct {
	kind   datumKind
	num    float64
	label  string
	nums   []float64
	labels []string
	years  []int
}

// NotProvided returns the sentinel for an absent input.
func NotProvided() Datum {
	return Datum{}
}

// Scalar returns a constant numeric input.
func Scalar(f float64) Datum {
	return Datum{kind: scalarKind, num: f}
}

// Label returns a constant category input.
func Label(s string) Datum {
	return Datum{kind: labelKind, label: s}
}

// Series returns a positional numeric series. The slice is copied.
func Series(vals []float64) Datum {
	return Datum{kind: seriesKind, nums: slices.Clone(vals)}
}

// IndexedSeries returns a numeric series labeled by year. The slices are
// copied and must have the same length.
func IndexedSeries(years []int, vals []float64) (Datum, error) {
	if len(years) != len(vals) {
		return Datum{}, fmt.Errorf("indexed series has %d years and %d values", len(years), len(vals))
	}
	return Datum{kind: seriesKind, nums: slices.Clone(vals), years: slices.Clone(years)}, nil
}

// LabelSeries returns a positional series of category labels. The slice is
// copied.
func LabelSeries(labels []string) Datum {
	return Datum{kind: labelSeriesKind, labels: slices.Clone(labels)}
}

// IndexedLabelSeries returns a series of category labels labeled by year.
func IndexedLabelSeries(years []int, labels []string) (Datum, error) {
	if len(years) != len(labels) {
		return Datum{}, fmt.Errorf("indexed series has %d years and %d labels", len(years), len(labels))
	}
	return Datum{kind: labelSeriesKind, labels: slices.Clone(labels), years: slices.Clone(years)}, nil
}

// Provided reports whether d carries any data.
func (d Datum) Provided() bool {
	return d.kind != notProvided
}

// IsLabel reports whether d carries category labels.
func (d Datum) IsLabel() bool {
	return d.kind == labelKind || d.kind == labelSeriesKind
}

// Indexed reports whether d is a series labeled by year.
func (d Datum) Indexed() bool {
	return d.years != nil
}

// Len returns the number of entries in d (1 for scalars, 0 when absent).
func (d Datum) Len() int {
	switch d.kind {
	case scalarKind, labelKind:
		return 1
	case seriesKind:
		return len(d.nums)
	case labelSeriesKind:
		return len(d.labels)
	default:
		return 0
	}
}

// floats returns the numeric content of d.
func (d Datum) floats() []float64 {
	switch d.kind {
	case scalarKind:
		return []float64{d.num}
	case seriesKind:
		return d.nums
	default:
		return nil
	}
}

// strings returns the label content of d.
func (d Datum) strings() []string {
	switch d.kind {
	case labelKind:
		return []string{d.label}
	case labelSeriesKind:
		return d.labels
	default:
		return nil
	}
}

func (d Datum) describe() string {
	switch d.kind {
	case scalarKind:
		return "scalar"
	case labelKind:
		return "label"
	case seriesKind:
		return fmt.Sprintf("series of %d values", len(d.nums))
	case labelSeriesKind:
		return fmt.Sprintf("series of %d labels", len(d.labels))
	default:
		return "not provided"
	}
}

// Input maps parameter names, and their reference-interpolation variants,
// to upstream data.
type Input map[string]Datum
