// Package resolver turns heterogeneous scenario inputs into a resolved
// parameter vector aligned to the simulation timeline.
//
// For every declared parameter exactly one source is used, in this order:
//
//  1. a direct value (scalar, label or series) under the parameter name;
//  2. a reference interpolation pair under <name>_reference_years and
//     <name>_reference_years_values;
//  3. the parameter's declared default.
//
// Falling back to the default, and discarding a reference pair because a
// direct value was also supplied, are soft conditions: they produce a Warning
// and resolution continues. A series that cannot cover the timeline is a hard
// InsufficientParameterCoverageError.
//
// Every call builds a new model.Values; neither the inputs nor the parameter
// descriptors are modified.
package resolver
