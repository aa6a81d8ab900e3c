package param

import (
	"fmt"
	"sort"
)

// Set is the collection of descriptors declared by one model, keyed by name.
type Set map[string]*Descriptor

// Index maps every expanded variable name back to the descriptor that
// generated it. It fails if two descriptors would expand to the same name.
func (s Set) Index() (map[string]*Descriptor, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	idx := make(map[string]*Descriptor)
	for _, name := range names {
		d := s[name]
		for _, v := range d.variableNames() {
			if other, dup := idx[v]; dup {
				return nil, fmt.Errorf("variable '%s' is produced by both parameter '%s' and parameter '%s'", v, other.Name, d.Name)
			}
			idx[v] = d
		}
	}
	return idx, nil
}

// Unexpand returns the sorted, unique descriptor names that generated the
// given expanded variable names.
func (s Set) Unexpand(expanded []string) ([]string, error) {
	idx, err := s.Index()
	if err != nil {
		return nil, err
	}
	return unexpand(idx, expanded)
}

func unexpand(idx map[string]*Descriptor, expanded []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, v := range expanded {
		d, ok := idx[v]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownVariable, v)
		}
		seen[d.Name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Resolver returns a function that unexpands names against a precomputed
// index, for callers that unexpand many formulas against the same Set.
func (s Set) Resolver() (func(expanded []string) ([]string, error), error) {
	idx, err := s.Index()
	if err != nil {
		return nil, err
	}
	return func(expanded []string) ([]string, error) {
		return unexpand(idx, expanded)
	}, nil
}
