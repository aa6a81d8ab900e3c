package driver

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/specialistvlad/aerolca/internal/vector"
)

// FlatSeries maps a series key to its values, one per year.
type FlatSeries map[string]vector.Vector

// AxisSeries maps a series key to its per-axis-label values.
type AxisSeries map[string]map[string]vector.Vector

func (a *ResultArray) reindex(v vector.Vector, start, end int) vector.Vector {
	out := make(vector.Vector, end-start+1)
	for i := range out {
		j := start + i - a.start
		if j < 0 || j >= len(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = v[j]
	}
	return out
}

func checkRange(start, end int) error {
	if end < start {
		return fmt.Errorf("series end year %d is before start year %d", end, start)
	}
	return nil
}

func (a *ResultArray) systemKey(system string) string {
	if len(a.systems) > 1 {
		return system
	}
	return ""
}

// FlatSeries converts flat results onto [start, end]. Years without a
// computed value are NaN.
func (a *ResultArray) FlatSeries(start, end int) (FlatSeries, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	if a.decomposed {
		return nil, fmt.Errorf("axis '%s' is decomposed; use AxisSeries", a.axis)
	}
	out := make(FlatSeries, len(a.systems)*len(a.metrics))
	for _, s := range a.systems {
		for _, m := range a.metrics {
			v, ok := a.data[cell{system: s, metric: m}]
			if !ok {
				continue
			}
			out[SeriesKey(a.systemKey(s), m, "")] = a.reindex(v, start, end)
		}
	}
	return out, nil
}

// AxisSeries converts decomposed results onto [start, end]. Years without a
// computed value are NaN.
func (a *ResultArray) AxisSeries(start, end int) (AxisSeries, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	if !a.decomposed {
		return nil, fmt.Errorf("axis '%s' is not decomposed; use FlatSeries", a.axis)
	}
	out := make(AxisSeries, len(a.systems)*len(a.metrics))
	for _, s := range a.systems {
		for _, m := range a.metrics {
			labels := a.Labels(s, m)
			byLabel := make(map[string]vector.Vector, len(labels))
			for _, l := range labels {
				byLabel[l] = a.reindex(a.data[cell{system: s, metric: m, label: l}], start, end)
			}
			out[SeriesKey(a.systemKey(s), m, "")] = byLabel
		}
	}
	return out, nil
}

// Output is the flattened, serializable view of a pass.
type Output struct {
	Years  []int                    `json:"years"`
	Units  map[string]string        `json:"units"`
	Series map[string]vector.Vector `json:"series"`
}

// Output converts the results onto [start, end] in whichever shape matches
// the axis, flattening per-axis series into "<key>_<label>" entries.
func (a *ResultArray) Output(start, end int) (*Output, error) {
	out := &Output{
		Units:  make(map[string]string),
		Series: make(map[string]vector.Vector),
	}
	for y := start; y <= end; y++ {
		out.Years = append(out.Years, y)
	}

	if !a.decomposed {
		flat, err := a.FlatSeries(start, end)
		if err != nil {
			return nil, err
		}
		for _, s := range a.systems {
			for _, m := range a.metrics {
				key := SeriesKey(a.systemKey(s), m, "")
				if v, ok := flat[key]; ok {
					out.Series[key] = v
					out.Units[key] = a.units[m]
				}
			}
		}
		return out, nil
	}

	perAxis, err := a.AxisSeries(start, end)
	if err != nil {
		return nil, err
	}
	for _, s := range a.systems {
		for _, m := range a.metrics {
			for label, v := range perAxis[SeriesKey(a.systemKey(s), m, "")] {
				key := SeriesKey(a.systemKey(s), m, label)
				out.Series[key] = v
				out.Units[key] = a.units[m]
			}
		}
	}
	return out, nil
}

// MarshalJSON writes missing values as null.
func (o *Output) MarshalJSON() ([]byte, error) {
	series := make(map[string][]*float64, len(o.Series))
	for k, v := range o.Series {
		vals := make([]*float64, len(v))
		for i := range v {
			if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
				continue
			}
			vals[i] = &v[i]
		}
		series[k] = vals
	}
	return json.Marshal(struct {
		Years  []int                 `json:"years"`
		Units  map[string]string     `json:"units"`
		Series map[string][]*float64 `json:"series"`
	}{Years: o.Years, Units: o.Units, Series: series})
}
