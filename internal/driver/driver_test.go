package driver

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/model"
	"github.com/specialistvlad/aerolca/internal/resolver"
	"github.com/specialistvlad/aerolca/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gwp = "('EF v3.0', 'climate change', 'GWP100')"

const minimalModel = `{
  "params": {"x": {"name": "x", "type": "float", "unit": "", "default": 1}},
  "expressions": {"total": {"metric_a": {"params": ["x"], "expr": "2 * x"}}},
  "functional_units": {"fu": {"quantity": {"params": [], "expr": "1"}, "unit": "1"}},
  "impacts": {"metric_a": {"name": "metric_a", "unit": "kg"}}
}`

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func loadMinimal(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.Parse(testContext(), []byte(minimalModel))
	require.NoError(t, err)
	return m
}

func loadAviation(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.Load(testContext(), "../model/testdata/aviation.json")
	require.NoError(t, err)
	return m
}

func TestCompute_EndToEnd(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2022}, WithFunctionalUnit("fu"))
	require.NoError(t, err)

	out, err := d.Compute(testContext(), resolver.Input{"x": resolver.Scalar(3)})
	require.NoError(t, err)
	assert.Equal(t, FlatSeries{"lca_metric_a": {6, 6, 6}}, out)

	out, err = d.Compute(testContext(), resolver.Input{})
	require.NoError(t, err)
	assert.Equal(t, FlatSeries{"lca_metric_a": {2, 2, 2}}, out)
}

func TestRun_UnitsAndAccessors(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2024}, WithFunctionalUnit("fu"))
	require.NoError(t, err)

	res, warnings, err := d.Run(testContext(), []System{{Name: "base", Input: resolver.Input{
		"x": resolver.Series([]float64{1, 2, 3, 4, 5}),
	}}})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "kg/1", res.Unit("metric_a"))
	assert.False(t, res.Decomposed())
	assert.Equal(t, []int{2020, 2021, 2022, 2023, 2024}, res.Years())

	v, ok := res.At("base", "metric_a", "", 2023)
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)

	v, ok = res.At("base", "metric_a", "", 2030)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestRun_DecomposedAxis(t *testing.T) {
	d, err := New(loadAviation(t), resolver.Timeline{Start: 2020, End: 2021}, WithAxis("phase"), WithFunctionalUnit("flight"))
	require.NoError(t, err)

	res, _, err := d.Run(testContext(), []System{{Name: "base", Input: resolver.Input{
		"distance":   resolver.Scalar(1000),
		"passengers": resolver.Scalar(100),
		"fuel":       resolver.Label("kerosene"),
	}}})
	require.NoError(t, err)
	require.True(t, res.Decomposed())

	assert.Equal(t, []string{"combustion", "production"}, res.Labels("base", gwp))

	series, err := res.AxisSeries(2020, 2021)
	require.NoError(t, err)
	byLabel := series["lca_ef_v3_0_climate_change_gwp100"]
	require.Len(t, byLabel, 2)
	assert.InDelta(t, 8000, byLabel["combustion"][0], 1e-6)
	assert.InDelta(t, 1000, byLabel["production"][1], 1e-6)

	_, err = res.FlatSeries(2020, 2021)
	require.Error(t, err)

	out, err := res.Output(2020, 2021)
	require.NoError(t, err)
	assert.Contains(t, out.Series, "lca_ef_v3_0_land_use_soil_quality_index_production")
	assert.NotContains(t, out.Series, "lca_ef_v3_0_land_use_soil_quality_index_null")
	assert.Equal(t, "kg CO2-Eq/flight", out.Units["lca_ef_v3_0_climate_change_gwp100_combustion"])
}

func TestRun_MultipleSystems(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2020}, WithFunctionalUnit("fu"), WithWorkers(4))
	require.NoError(t, err)

	res, _, err := d.Run(testContext(), []System{
		{Name: "Baseline", Input: resolver.Input{"x": resolver.Scalar(1)}},
		{Name: "High SAF", Input: resolver.Input{"x": resolver.Scalar(5)}},
	})
	require.NoError(t, err)

	flat, err := res.FlatSeries(2020, 2020)
	require.NoError(t, err)
	assert.Equal(t, FlatSeries{
		"lca_baseline_metric_a": {2},
		"lca_high_saf_metric_a": {10},
	}, flat)

	_, _, err = d.Run(testContext(), []System{{Name: "a"}, {Name: "a"}})
	require.Error(t, err)
	_, _, err = d.Run(testContext(), nil)
	require.Error(t, err)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	m := loadAviation(t)
	timeline := resolver.Timeline{Start: 2020, End: 2050}
	input := resolver.Input{"fuel": resolver.LabelSeries(append(make([]string, 15), make([]string, 16)...))}

	seq, err := New(m, timeline)
	require.NoError(t, err)
	par, err := New(m, timeline, WithWorkers(8))
	require.NoError(t, err)

	a, err := seq.Compute(testContext(), input)
	require.NoError(t, err)
	b, err := par.Compute(testContext(), input)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 2)
	for _, v := range a {
		assert.Len(t, v, 31)
	}
}

func TestOutput_Reindex(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2021}, WithFunctionalUnit("fu"))
	require.NoError(t, err)
	res, _, err := d.Run(testContext(), []System{{Name: "base"}})
	require.NoError(t, err)

	out, err := res.Output(2019, 2022)
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2020, 2021, 2022}, out.Years)
	v := out.Series["lca_metric_a"]
	require.Len(t, v, 4)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, vector.Vector{2, 2}, v[1:3])
	assert.True(t, math.IsNaN(v[3]))

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"years": [2019, 2020, 2021, 2022],
		"units": {"lca_metric_a": "kg/1"},
		"series": {"lca_metric_a": [null, 2, 2, null]}
	}`, string(data))

	_, err = res.Output(2022, 2019)
	require.Error(t, err)
}

func TestNew_Errors(t *testing.T) {
	m := loadMinimal(t)
	timeline := resolver.Timeline{Start: 2020, End: 2021}

	_, err := New(m, timeline, WithAxis("phase"), WithFunctionalUnit("fu"))
	var axisErr *model.UnknownAxisError
	require.ErrorAs(t, err, &axisErr)

	_, err = New(m, timeline)
	var fuErr *model.UnknownFunctionalUnitError
	require.ErrorAs(t, err, &fuErr)

	_, err = New(m, resolver.Timeline{Start: 2021, End: 2020}, WithFunctionalUnit("fu"))
	require.Error(t, err)
}

func TestRun_ResolveErrorAborts(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2050}, WithFunctionalUnit("fu"))
	require.NoError(t, err)

	_, err = d.Compute(testContext(), resolver.Input{"x": resolver.Series([]float64{1, 2, 3, 4, 5})})
	var cov *resolver.InsufficientParameterCoverageError
	require.ErrorAs(t, err, &cov)
}

func TestRun_Cancelled(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2021}, WithFunctionalUnit("fu"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testContext())
	cancel()
	_, _, err = d.Run(ctx, []System{{Name: "base"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCanonical(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: gwp, want: "ef_v3_0_climate_change_gwp100"},
		{in: "metric_a", want: "metric_a"},
		{in: "  High--SAF  ", want: "high_saf"},
		{in: "___", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Canonical(tc.in))
		})
	}

	assert.Equal(t, "lca_metric_a", SeriesKey("", "metric_a", ""))
	assert.Equal(t, "lca_sys_metric_a_combustion", SeriesKey("sys", "metric_a", "combustion"))
}

const collidingMetricsModel = `{
  "params": {"x": {"name": "x", "type": "float", "unit": "", "default": 1}},
  "expressions": {
    "total": {
      "('EF', 'climate change')": {"params": ["x"], "expr": "2 * x"},
      "('EF', 'Climate-Change')": {"params": ["x"], "expr": "100 * x"}
    },
    "phase": {
      "('EF', 'climate change')": {"params": ["x"], "expr": {"a": "x"}},
      "('EF', 'Climate-Change')": {"params": ["x"], "expr": {"b": "x"}}
    }
  },
  "functional_units": {"fu": {"quantity": {"params": [], "expr": "1"}, "unit": "1"}},
  "impacts": {
    "('EF', 'climate change')": {"name": "('EF', 'climate change')", "unit": "kg"},
    "('EF', 'Climate-Change')": {"name": "('EF', 'Climate-Change')", "unit": "kg"}
  }
}`

const collidingLabelsModel = `{
  "params": {"x": {"name": "x", "type": "float", "unit": "", "default": 1}},
  "expressions": {
    "phase": {
      "x": {"params": ["x"], "expr": {"y_z": "x"}},
      "x_y": {"params": ["x"], "expr": {"z": "2 * x"}}
    }
  },
  "functional_units": {"fu": {"quantity": {"params": [], "expr": "1"}, "unit": "1"}},
  "impacts": {
    "x": {"name": "x", "unit": "kg"},
    "x_y": {"name": "x_y", "unit": "kg"}
  }
}`

func TestNew_OutputKeyCollision(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		axis    string
		wantKey string
	}{
		{name: "metrics", doc: collidingMetricsModel, axis: "total", wantKey: "lca_ef_climate_change"},
		{name: "distinct labels keep decomposed metrics apart", doc: collidingMetricsModel, axis: "phase"},
		{name: "metric and label", doc: collidingLabelsModel, axis: "phase", wantKey: "lca_x_y_z"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := model.Parse(testContext(), []byte(tc.doc))
			require.NoError(t, err)

			_, err = New(m, resolver.Timeline{Start: 2020, End: 2021}, WithAxis(tc.axis), WithFunctionalUnit("fu"))
			if tc.wantKey == "" {
				require.NoError(t, err)
				return
			}
			var collision *KeyCollisionError
			require.ErrorAs(t, err, &collision)
			assert.Equal(t, tc.wantKey, collision.Key)
			assert.NotEqual(t, collision.First, collision.Second)
		})
	}
}

func TestRun_SystemKeyCollision(t *testing.T) {
	d, err := New(loadMinimal(t), resolver.Timeline{Start: 2020, End: 2020}, WithFunctionalUnit("fu"))
	require.NoError(t, err)

	_, _, err = d.Run(testContext(), []System{{Name: "High SAF"}, {Name: "high-saf"}})
	var collision *KeyCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "lca_high_saf_metric_a", collision.Key)
	assert.Contains(t, collision.Error(), "system 'High SAF'")
	assert.Contains(t, collision.Error(), "system 'high-saf'")
}
