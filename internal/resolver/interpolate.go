package resolver

import (
	"sort"

	"github.com/specialistvlad/aerolca/internal/vector"
)

// Interpolator produces a value for every requested year from reference
// points. refYears is strictly increasing and has the same length as
// refValues.
type Interpolator interface {
	Interpolate(refYears, refValues []float64, years []int) vector.Vector
}

// Linear interpolates piecewise-linearly between reference points and holds
// the first and last reference values outside their range.
type Linear struct{}

// Interpolate implements Interpolator.
func (Linear) Interpolate(refYears, refValues []float64, years []int) vector.Vector {
	out := make(vector.Vector, len(years))
	last := len(refYears) - 1
	for i, y := range years {
		x := float64(y)
		switch {
		case x <= refYears[0]:
			out[i] = refValues[0]
		case x >= refYears[last]:
			out[i] = refValues[last]
		default:
			// Smallest j with refYears[j] >= x, always within 1..last here.
			j := sort.SearchFloat64s(refYears, x)
			if refYears[j] == x {
				out[i] = refValues[j]
				continue
			}
			x0, x1 := refYears[j-1], refYears[j]
			y0, y1 := refValues[j-1], refValues[j]
			out[i] = y0 + (y1-y0)*(x-x0)/(x1-x0)
		}
	}
	return out
}
