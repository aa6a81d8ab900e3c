// Package vector provides the timeline-aligned float64 slices every numeric
// component of the evaluator works on.
//
// A Vector of length 1 is a scalar and broadcasts against a Vector of any
// length. Two Vectors longer than 1 must have the same length to be combined.
// Operations never modify their operands; they always allocate a new result,
// which keeps compiled formulas free of shared mutable state.
package vector
