package driver

import (
	"fmt"
	"math"
	"slices"

	"github.com/specialistvlad/aerolca/internal/vector"
)

type cell struct {
	system string
	metric string
	label  string
}

// ResultArray holds evaluated results addressed by (system, metric, axis
// label, year). Flat results use the empty label. Each metric carries its
// normalized unit.
type ResultArray struct {
	start      int
	years      int
	axis       string
	decomposed bool
	systems    []string
	metrics    []string
	units      map[string]string
	data       map[cell]vector.Vector
}

func newResultArray(start, years int, axis string, decomposed bool, systems, metrics []string) *ResultArray {
	return &ResultArray{
		start:      start,
		years:      years,
		axis:       axis,
		decomposed: decomposed,
		systems:    slices.Clone(systems),
		metrics:    slices.Clone(metrics),
		units:      make(map[string]string, len(metrics)),
		data:       make(map[cell]vector.Vector),
	}
}

func (a *ResultArray) set(system, metric, label string, v vector.Vector) error {
	full, err := v.Broadcast(a.years)
	if err != nil {
		return fmt.Errorf("result for '%s' label '%s': %w", metric, label, err)
	}
	a.data[cell{system: system, metric: metric, label: label}] = full
	return nil
}

// Axis returns the axis the results were computed on.
func (a *ResultArray) Axis() string { return a.axis }

// Decomposed reports whether results are split by axis label.
func (a *ResultArray) Decomposed() bool { return a.decomposed }

// Systems returns the system names in evaluation order.
func (a *ResultArray) Systems() []string { return slices.Clone(a.systems) }

// Metrics returns the metric keys in evaluation order.
func (a *ResultArray) Metrics() []string { return slices.Clone(a.metrics) }

// Years returns the covered years.
func (a *ResultArray) Years() []int {
	out := make([]int, a.years)
	for i := range out {
		out[i] = a.start + i
	}
	return out
}

// Unit returns the normalized unit of metric.
func (a *ResultArray) Unit(metric string) string {
	return a.units[metric]
}

// Labels returns the sorted axis labels present for (system, metric). It is
// empty for flat results.
func (a *ResultArray) Labels(system, metric string) []string {
	var out []string
	for c := range a.data {
		if c.system == system && c.metric == metric && c.label != "" {
			out = append(out, c.label)
		}
	}
	slices.Sort(out)
	return out
}

// Values returns a copy of the series for (system, metric, label).
func (a *ResultArray) Values(system, metric, label string) (vector.Vector, bool) {
	v, ok := a.data[cell{system: system, metric: metric, label: label}]
	return v.Clone(), ok
}

// At returns one cell. Years outside coverage and unknown cells report NaN
// and false.
func (a *ResultArray) At(system, metric, label string, year int) (float64, bool) {
	v, ok := a.data[cell{system: system, metric: metric, label: label}]
	i := year - a.start
	if !ok || i < 0 || i >= len(v) {
		return math.NaN(), false
	}
	return v[i], true
}
