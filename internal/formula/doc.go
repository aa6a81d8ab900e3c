// Package formula compiles impact formulas written in HCL native expression
// syntax into vectorized callables.
//
// A formula such as
//
//	2 * load_factor * (fuel_saf ? 0.2 : 1) + pow(distance, 0.5)
//
// is parsed once with hclsyntax and turned into a tree of closures operating
// on vector.Vector values, so one call evaluates the formula for every year
// of a timeline at once. Free variables are the expanded parameter names
// (see package param). Comparisons and logical operators yield 0 or 1, and a
// non-zero condition selects the true branch of a conditional element-wise.
//
// Identifiers in HCL may contain dashes, so subtraction must be written with
// surrounding whitespace ("a - b"); "a-b" is a single variable name.
//
// Formulas without free variables are folded to a constant at compile time
// by evaluating them through HCL itself with cty function implementations.
package formula
