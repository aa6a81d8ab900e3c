package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/driver"
	"github.com/specialistvlad/aerolca/internal/resolver"
	"gopkg.in/yaml.v3"
)

// DefaultSystem names the only system of a document without a systems list.
const DefaultSystem = "default"

// Document is the YAML form of a scenario.
type Document struct {
	StartYear  int              `yaml:"start_year"`
	EndYear    int              `yaml:"end_year"`
	Parameters map[string]Value `yaml:"parameters"`
	Systems    []SystemDocument `yaml:"systems"`
}

// SystemDocument is one entry of the systems list.
type SystemDocument struct {
	Name       string           `yaml:"name"`
	Parameters map[string]Value `yaml:"parameters"`
}

// Scenario is a decoded document ready for the driver. StartYear and EndYear
// are zero when the document leaves them to the caller.
type Scenario struct {
	StartYear int
	EndYear   int
	Systems   []driver.System
}

// Timeline returns the document's year range, falling back to start and end
// for the bounds it leaves unset.
func (s *Scenario) Timeline(start, end int) resolver.Timeline {
	t := resolver.Timeline{Start: start, End: end}
	if s.StartYear != 0 {
		t.Start = s.StartYear
	}
	if s.EndYear != 0 {
		t.End = s.EndYear
	}
	return t
}

// Load reads and decodes a scenario file.
func Load(ctx context.Context, path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document. Unknown top-level fields are rejected.
func Parse(ctx context.Context, data []byte) (*Scenario, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	return doc.Scenario(ctx)
}

// Scenario converts the document into driver systems.
func (doc *Document) Scenario(ctx context.Context) (*Scenario, error) {
	if doc.StartYear != 0 && doc.EndYear != 0 && doc.EndYear < doc.StartYear {
		return nil, fmt.Errorf("end_year %d is before start_year %d", doc.EndYear, doc.StartYear)
	}

	systems := doc.Systems
	if len(systems) == 0 {
		systems = []SystemDocument{{Name: DefaultSystem}}
	}

	out := &Scenario{StartYear: doc.StartYear, EndYear: doc.EndYear}
	seen := make(map[string]struct{}, len(systems))
	for i, sd := range systems {
		if sd.Name == "" {
			return nil, fmt.Errorf("system %d has no name", i+1)
		}
		if _, dup := seen[sd.Name]; dup {
			return nil, fmt.Errorf("duplicate system '%s'", sd.Name)
		}
		seen[sd.Name] = struct{}{}

		in := make(resolver.Input, len(doc.Parameters)+len(sd.Parameters))
		for _, name := range sortedNames(doc.Parameters) {
			doc.Parameters[name].apply(name, in)
		}
		for _, name := range sortedNames(sd.Parameters) {
			clearParam(name, in)
			sd.Parameters[name].apply(name, in)
		}
		out.Systems = append(out.Systems, driver.System{Name: sd.Name, Input: in})
	}

	ctxlog.FromContext(ctx).Debug("Scenario decoded.", "systems", len(out.Systems), "parameters", len(doc.Parameters))
	return out, nil
}

// clearParam removes every input feeding name so an override fully replaces
// the shared entry.
func clearParam(name string, in resolver.Input) {
	delete(in, name)
	delete(in, name+resolver.ReferenceYearsSuffix)
	delete(in, name+resolver.ReferenceValuesSuffix)
}

func sortedNames(m map[string]Value) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
