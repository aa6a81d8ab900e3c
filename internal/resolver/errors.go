package resolver

import "fmt"

// InsufficientParameterCoverageError is returned when a supplied series is
// too short for the timeline and is not a single broadcastable value, or
// when a year-indexed series lacks some simulated years.
type InsufficientParameterCoverageError struct {
	Param   string
	Got     int
	Want    int
	Missing []int
}

func (e *InsufficientParameterCoverageError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("parameter '%s' has no value for years %v", e.Param, e.Missing)
	}
	return fmt.Sprintf("parameter '%s' has %d values but the timeline needs %d", e.Param, e.Got, e.Want)
}

// InvalidReferenceError is returned when a reference-interpolation pair is
// malformed.
type InvalidReferenceError struct {
	Param  string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference interpolation for parameter '%s': %s", e.Param, e.Reason)
}

// WarningKind classifies a soft resolution condition.
type WarningKind int

const (
	// MissingParameterValue: nothing was supplied and the default was used.
	MissingParameterValue WarningKind = iota
	// ConflictingParameterSpecification: a direct value and a reference pair
	// were both supplied; the reference pair was discarded.
	ConflictingParameterSpecification
	// TrimmedSeries: a positional series longer than the timeline was cut.
	TrimmedSeries
	// IncompleteReference: only one half of a reference pair was supplied and
	// it was ignored.
	IncompleteReference
)

func (k WarningKind) String() string {
	switch k {
	case MissingParameterValue:
		return "missing_parameter_value"
	case ConflictingParameterSpecification:
		return "conflicting_parameter_specification"
	case TrimmedSeries:
		return "trimmed_series"
	case IncompleteReference:
		return "incomplete_reference"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning is a soft condition met while resolving one parameter.
type Warning struct {
	Kind    WarningKind
	Param   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Param, w.Message)
}
