package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/aerolca/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fleet = `
start_year: 2020
end_year: 2022
parameters:
  distance: 1200
  contrails: false
  fuel: kerosene
  load_factor: [0.8, 0.82, 0.85]
  passengers: {years: [2022, 2020, 2021], values: [170, 150, 160]}
  saf_share: {reference_years: [2020, 2050], reference_values: [0.0, 0.7]}
systems:
  - name: baseline
  - name: high_saf
    parameters:
      fuel: [kerosene, saf, saf]
      saf_share: 0.5
`

func TestParse_Systems(t *testing.T) {
	s, err := Parse(context.Background(), []byte(fleet))
	require.NoError(t, err)

	assert.Equal(t, resolver.Timeline{Start: 2020, End: 2022}, s.Timeline(1990, 1995))
	require.Len(t, s.Systems, 2)
	assert.Equal(t, "baseline", s.Systems[0].Name)
	assert.Equal(t, "high_saf", s.Systems[1].Name)

	base := s.Systems[0].Input
	assert.Equal(t, resolver.Scalar(1200), base["distance"])
	assert.Equal(t, resolver.Scalar(0), base["contrails"])
	assert.Equal(t, resolver.Label("kerosene"), base["fuel"])
	assert.Equal(t, resolver.Series([]float64{0.8, 0.82, 0.85}), base["load_factor"])
	passengers, err := resolver.IndexedSeries([]int{2022, 2020, 2021}, []float64{170, 150, 160})
	require.NoError(t, err)
	assert.Equal(t, passengers, base["passengers"])
	assert.Equal(t, resolver.Series([]float64{2020, 2050}), base["saf_share_reference_years"])
	assert.Equal(t, resolver.Series([]float64{0, 0.7}), base["saf_share_reference_years_values"])
	assert.NotContains(t, base, "saf_share")

	high := s.Systems[1].Input
	assert.Equal(t, resolver.LabelSeries([]string{"kerosene", "saf", "saf"}), high["fuel"])
	assert.Equal(t, resolver.Scalar(0.5), high["saf_share"])
	assert.NotContains(t, high, "saf_share_reference_years")
	assert.NotContains(t, high, "saf_share_reference_years_values")
	assert.Equal(t, resolver.Scalar(1200), high["distance"])
}

func TestParse_DefaultSystem(t *testing.T) {
	s, err := Parse(context.Background(), []byte("parameters:\n  x: 3\n  y: ~\n"))
	require.NoError(t, err)
	require.Len(t, s.Systems, 1)
	assert.Equal(t, DefaultSystem, s.Systems[0].Name)
	assert.Equal(t, resolver.Scalar(3), s.Systems[0].Input["x"])
	assert.False(t, s.Systems[0].Input["y"].Provided())
	assert.Equal(t, resolver.Timeline{Start: 2020, End: 2050}, s.Timeline(2020, 2050))

	s, err = Parse(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, s.Systems, 1)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{name: "unknown field", doc: "horizon: 10\n"},
		{name: "inverted years", doc: "start_year: 2050\nend_year: 2020\n"},
		{name: "mixed series", doc: "parameters:\n  x: [1, a]\n"},
		{name: "empty series", doc: "parameters:\n  x: []\n"},
		{name: "null in series", doc: "parameters:\n  x: [1, ~]\n"},
		{name: "nested series", doc: "parameters:\n  x: [[1]]\n"},
		{name: "years without values", doc: "parameters:\n  x: {years: [2020]}\n"},
		{name: "years and values differ", doc: "parameters:\n  x: {years: [2020, 2021], values: [1]}\n"},
		{name: "half reference", doc: "parameters:\n  x: {reference_years: [2020]}\n"},
		{name: "both forms", doc: "parameters:\n  x: {years: [2020], values: [1], reference_years: [2020], reference_values: [1]}\n"},
		{name: "empty mapping", doc: "parameters:\n  x: {}\n"},
		{name: "unnamed system", doc: "systems:\n  - parameters: {x: 1}\n"},
		{name: "duplicate system", doc: "systems:\n  - name: a\n  - name: a\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tc.doc))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fleet), 0o644))

	s, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, s.Systems, 2)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
