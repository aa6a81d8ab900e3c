package lambda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Source is the textual form of a Lambda: either a single formula or a
// mapping of axis label to formula. On disk it is a JSON string or object.
type Source struct {
	Expr   string
	ByAxis map[string]string
}

// Single returns a Source holding one formula.
func Single(expr string) Source {
	return Source{Expr: expr}
}

// Decomposed returns a Source holding one formula per axis label.
func Decomposed(byAxis map[string]string) Source {
	cp := make(map[string]string, len(byAxis))
	for k, v := range byAxis {
		cp[k] = v
	}
	return Source{ByAxis: cp}
}

// IsDecomposed reports whether the source is split by axis label.
func (s Source) IsDecomposed() bool {
	return s.ByAxis != nil
}

// Labels returns the sorted axis labels of a decomposed source.
func (s Source) Labels() []string {
	out := make([]string, 0, len(s.ByAxis))
	for k := range s.ByAxis {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implements json.Marshaler.
func (s Source) MarshalJSON() ([]byte, error) {
	if s.IsDecomposed() {
		return json.Marshal(s.ByAxis)
	}
	return json.Marshal(s.Expr)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Source) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty expression")
	}
	switch trimmed[0] {
	case '"':
		var expr string
		if err := json.Unmarshal(trimmed, &expr); err != nil {
			return err
		}
		*s = Single(expr)
		return nil
	case '{':
		var byAxis map[string]string
		if err := json.Unmarshal(trimmed, &byAxis); err != nil {
			return fmt.Errorf("axis-decomposed expression: %w", err)
		}
		if len(byAxis) == 0 {
			return fmt.Errorf("axis-decomposed expression has no axis labels")
		}
		*s = Decomposed(byAxis)
		return nil
	default:
		return fmt.Errorf("expression must be a string or an object of strings, got %s", string(trimmed))
	}
}
