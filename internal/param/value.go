package param

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/aerolca/internal/vector"
)

// Value is a value supplied for one parameter: either numbers (float and bool
// parameters) or category labels (enum parameters). Both forms may be a
// single element, which broadcasts, or a timeline-aligned sequence. The zero
// Value is None.
type Value struct {
	nums   vector.Vector
	labels []string
}

// Number returns a scalar numeric Value.
func Number(f float64) Value {
	return Value{nums: vector.Scalar(f)}
}

// Numbers returns a numeric Value over a timeline. The slice is copied.
func Numbers(v vector.Vector) Value {
	return Value{nums: v.Clone()}
}

// BoolValue returns 1 for true and 0 for false.
func BoolValue(b bool) Value {
	if b {
		return Number(1)
	}
	return Number(0)
}

// Label returns a single-category Value.
func Label(s string) Value {
	return Value{labels: []string{s}}
}

// Labels returns a per-year category Value. An empty label means no category
// was chosen for that year. The slice is copied.
func Labels(ls []string) Value {
	out := make([]string, len(ls))
	copy(out, ls)
	return Value{labels: out}
}

// None returns the Value representing "nothing supplied".
func None() Value {
	return Value{}
}

// IsNone reports whether v carries no data.
func (v Value) IsNone() bool {
	return v.nums == nil && v.labels == nil
}

// IsLabel reports whether v carries category labels.
func (v Value) IsLabel() bool {
	return v.labels != nil
}

// Len returns the number of timeline entries in v (1 for scalars).
func (v Value) Len() int {
	if v.labels != nil {
		return len(v.labels)
	}
	return len(v.nums)
}

// Nums returns a copy of the numeric data, or nil for label values.
func (v Value) Nums() vector.Vector {
	return v.nums.Clone()
}

// LabelSlice returns a copy of the category labels, or nil for numeric values.
func (v Value) LabelSlice() []string {
	if v.labels == nil {
		return nil
	}
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

func (v Value) String() string {
	switch {
	case v.IsNone():
		return "<none>"
	case v.labels != nil:
		if len(v.labels) == 1 {
			return v.labels[0]
		}
		return "[" + strings.Join(v.labels, ", ") + "]"
	case len(v.nums) == 1:
		return fmt.Sprintf("%g", v.nums[0])
	default:
		return fmt.Sprintf("%v", []float64(v.nums))
	}
}
