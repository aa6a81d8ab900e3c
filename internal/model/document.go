package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hjson/hjson-go/v4"
	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/lambda"
)

// Document is the on-disk representation of a Model.
type Document struct {
	Params          map[string]ParamDoc             `json:"params"`
	Expressions     map[string]map[string]LambdaDoc `json:"expressions"`
	FunctionalUnits map[string]FunctionalUnitDoc    `json:"functional_units"`
	Impacts         map[string]Impact               `json:"impacts"`
}

// ParamDoc declares one parameter. Default is a number for float parameters,
// a bool (or 0/1) for bool parameters and a label or null for enum parameters.
type ParamDoc struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Unit        string   `json:"unit"`
	Default     any      `json:"default"`
	Values      []string `json:"values,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Label       string   `json:"label,omitempty"`
	Group       string   `json:"group,omitempty"`
	Description string   `json:"description,omitempty"`
}

// LambdaDoc is a formula, or per-axis formulas, with its dependency list.
type LambdaDoc struct {
	Params []string      `json:"params"`
	Expr   lambda.Source `json:"expr"`
}

// FunctionalUnitDoc is a functional-unit quantity with its unit.
type FunctionalUnitDoc struct {
	Quantity LambdaDoc `json:"quantity"`
	Unit     string    `json:"unit"`
}

// Impact names one impact-assessment method and the unit of its results.
type Impact struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// Load reads and builds a Model from a file.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading model file.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	m, err := Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load model file %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and builds a Model from JSON or HJSON bytes.
func Parse(ctx context.Context, data []byte) (*Model, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return Build(ctx, doc)
}

// DecodeDocument decodes JSON or HJSON bytes into a Document without
// compiling it.
func DecodeDocument(data []byte) (*Document, error) {
	var tree any
	if err := hjson.Unmarshal(data, &tree); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("invalid document: %w", err)}
	}
	// Normalize through encoding/json so the typed decoders (such as
	// lambda.Source) see plain JSON.
	normalized, err := json.Marshal(tree)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	var doc Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, &FormatError{Err: err}
	}
	return &doc, nil
}

// Encode writes the model document as indented JSON.
func (m *Model) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m.Document())
}

// Save writes the model document to path.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file %s: %w", path, err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model file %s: %w", path, err)
	}
	return f.Close()
}
