package param

import (
	"errors"
	"fmt"
)

// ErrUnknownVariable is returned when a formula variable cannot be traced back
// to any declared parameter.
var ErrUnknownVariable = errors.New("unknown variable")

// InvalidParameterValueError reports a value outside a parameter's declared
// domain, such as an undeclared category label.
type InvalidParameterValueError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParameterValueError) Error() string {
	return fmt.Sprintf("invalid value %q for parameter '%s': %s", e.Value, e.Param, e.Reason)
}
