// Package model holds the aggregate impact model: parameter descriptors,
// compiled Lambdas indexed by (axis, metric), functional units and impact
// metadata.
//
// A Model is built once, from a portable JSON document produced by an offline
// formula compiler, and never mutated afterwards. All of its methods are safe
// for concurrent use.
//
// # Document format
//
//	{
//	  "params": {"<name>": {"name", "type": "float|bool|enum", "unit", "default", "values", "min", "max", ...}},
//	  "expressions": {"<axis>": {"<metric>": {"params": [...], "expr": "<formula>" | {"<label>": "<formula>"}}}},
//	  "functional_units": {"<name>": {"quantity": {"params": [...], "expr": "<formula>"}, "unit": "..."}},
//	  "impacts": {"<metric>": {"name": "...", "unit": "..."}}
//	}
//
// Formulas use HCL native expression syntax (see package formula). Load also
// accepts HJSON, so hand-edited model files may carry comments.
package model
