package model

import (
	"fmt"
	"strings"
)

// UnknownAxisError is returned when an axis is not present in the model.
type UnknownAxisError struct {
	Axis  string
	Known []string
}

func (e *UnknownAxisError) Error() string {
	return fmt.Sprintf("unknown axis '%s' (known axes: %s)", e.Axis, strings.Join(e.Known, ", "))
}

// UnknownImpactError is returned when a metric is not registered under an axis.
type UnknownImpactError struct {
	Metric string
	Axis   string
}

func (e *UnknownImpactError) Error() string {
	return fmt.Sprintf("unknown impact '%s' for axis '%s'", e.Metric, e.Axis)
}

// UnknownFunctionalUnitError is returned when a functional unit is not
// registered in the model.
type UnknownFunctionalUnitError struct {
	Name string
}

func (e *UnknownFunctionalUnitError) Error() string {
	return fmt.Sprintf("unknown functional unit '%s'", e.Name)
}

// FormatError reports a malformed model document. Where locates the problem,
// for example "expressions.total.climate_change".
type FormatError struct {
	Where string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("malformed model: %v", e.Err)
	}
	return fmt.Sprintf("malformed model at %s: %v", e.Where, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(where string, format string, args ...any) error {
	return &FormatError{Where: where, Err: fmt.Errorf(format, args...)}
}
