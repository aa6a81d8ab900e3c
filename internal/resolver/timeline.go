package resolver

import "fmt"

// Timeline is the inclusive range of simulated years.
type Timeline struct {
	Start int
	End   int
}

// Validate checks the range is not empty.
func (t Timeline) Validate() error {
	if t.End < t.Start {
		return fmt.Errorf("timeline end year %d is before start year %d", t.End, t.Start)
	}
	return nil
}

// Len returns the number of years in the timeline.
func (t Timeline) Len() int {
	return t.End - t.Start + 1
}

// Years returns every year of the timeline in order.
func (t Timeline) Years() []int {
	out := make([]int, t.Len())
	for i := range out {
		out[i] = t.Start + i
	}
	return out
}

// Index returns the position of year in the timeline.
func (t Timeline) Index(year int) (int, bool) {
	if year < t.Start || year > t.End {
		return 0, false
	}
	return year - t.Start, true
}
