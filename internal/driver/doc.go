// Package driver runs every metric of a Model over a simulation timeline for
// one or more systems and reshapes the results into named series.
//
// A pass resolves each system's parameters first, then evaluates one
// vectorized Model.Evaluate call per (system, metric), optionally on a bounded
// pool of workers. Results land in a ResultArray that is converted to flat or
// per-axis series depending on whether the selected axis is decomposed.
package driver
