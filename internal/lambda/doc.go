// Package lambda pairs compiled formulas with the parameters they depend on.
//
// A Lambda is either a single formula or an axis-decomposed set of formulas
// (one per axis label, for example per life-cycle phase). It records the
// minimal set of declared parameters its formulas reference, seeds missing
// values from parameter defaults, expands enum parameters into indicator
// variables and evaluates every formula over the whole timeline in one call.
package lambda
