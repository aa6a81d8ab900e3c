package vector

import (
	"errors"
	"fmt"
	"math"
)

// ErrLengthMismatch is returned when two non-scalar vectors of different
// lengths are combined.
var ErrLengthMismatch = errors.New("vector length mismatch")

// Vector is a sequence of float64 values aligned to a simulation timeline.
type Vector []float64

// Scalar returns a single-element Vector.
func Scalar(f float64) Vector {
	return Vector{f}
}

// Fill returns a Vector of length n with every element set to f.
func Fill(n int, f float64) Vector {
	out := make(Vector, n)
	for i := range out {
		out[i] = f
	}
	return out
}

// IsScalar reports whether v broadcasts as a single value.
func (v Vector) IsScalar() bool {
	return len(v) == 1
}

// At returns the i-th element, broadcasting scalars.
func (v Vector) At(i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Broadcast expands v to length n. A scalar is repeated; a vector already of
// length n is copied.
func (v Vector) Broadcast(n int) (Vector, error) {
	switch {
	case len(v) == n:
		return v.Clone(), nil
	case len(v) == 1:
		return Fill(n, v[0]), nil
	default:
		return nil, fmt.Errorf("%w: cannot broadcast length %d to %d", ErrLengthMismatch, len(v), n)
	}
}

// BroadcastLen returns the common length of vs, treating scalars as
// compatible with any length. It returns 1 when every input is scalar.
func BroadcastLen(vs ...Vector) (int, error) {
	n := 1
	for _, v := range vs {
		switch {
		case len(v) == 1 || len(v) == n:
		case n == 1:
			n = len(v)
		default:
			return 0, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, n, len(v))
		}
	}
	return n, nil
}

// Map applies f to every element of v.
func Map(v Vector, f func(float64) float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = f(x)
	}
	return out
}

// Zip combines a and b element-wise, broadcasting scalars.
func Zip(a, b Vector, f func(x, y float64) float64) (Vector, error) {
	n, err := BroadcastLen(a, b)
	if err != nil {
		return nil, err
	}
	out := make(Vector, n)
	for i := range out {
		out[i] = f(a.At(i), b.At(i))
	}
	return out, nil
}

// Sanitize returns a copy of v with NaN and infinite values replaced by 0.
func Sanitize(v Vector) Vector {
	return Map(v, func(x float64) float64 {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	})
}

// AllWithin reports whether every element of v lies within tol of zero.
func AllWithin(v Vector, tol float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.Abs(x) > tol {
			return false
		}
	}
	return true
}
