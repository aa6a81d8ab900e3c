package resolver

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/param"
	"github.com/specialistvlad/aerolca/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var horizon = Timeline{Start: 2020, End: 2050}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := New(horizon)
	require.NoError(t, err)
	return r
}

func seq(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestNew_InvalidTimeline(t *testing.T) {
	_, err := New(Timeline{Start: 2050, End: 2020})
	require.Error(t, err)
}

func TestResolve_Coverage(t *testing.T) {
	distance := param.NewFloat("distance", 500)
	ctx := ctxlog.Discard(context.Background())

	testCases := []struct {
		name    string
		datum   Datum
		want    vector.Vector
		wantErr bool
		warn    []WarningKind
	}{
		{name: "scalar broadcasts", datum: Scalar(800), want: vector.Fill(31, 800)},
		{name: "one element broadcasts", datum: Series([]float64{700}), want: vector.Fill(31, 700)},
		{
			name:  "full length is kept",
			datum: Series(seq(31, func(i int) float64 { return float64(i) })),
			want:  seq(31, func(i int) float64 { return float64(i) }),
		},
		{
			name:  "longer series is trimmed",
			datum: Series(seq(40, func(i int) float64 { return float64(i) })),
			want:  seq(31, func(i int) float64 { return float64(i) }),
			warn:  []WarningKind{TrimmedSeries},
		},
		{name: "short series fails", datum: Series([]float64{1, 2, 3, 4, 5}), wantErr: true},
		{name: "missing uses default", datum: NotProvided(), want: vector.Fill(31, 500), warn: []WarningKind{MissingParameterValue}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, warnings, err := newResolver(t).Resolve(ctx, []*param.Descriptor{distance}, Input{"distance": tc.datum})
			if tc.wantErr {
				var cov *InsufficientParameterCoverageError
				require.ErrorAs(t, err, &cov)
				assert.Equal(t, 5, cov.Got)
				assert.Equal(t, 31, cov.Want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, values["distance"].Nums())
			var kinds []WarningKind
			for _, w := range warnings {
				kinds = append(kinds, w.Kind)
			}
			assert.Equal(t, tc.warn, kinds)
		})
	}
}

func TestResolve_IndexedSeriesRealigned(t *testing.T) {
	r, err := New(Timeline{Start: 2020, End: 2022})
	require.NoError(t, err)
	d := param.NewFloat("x", 0)

	in, err := IndexedSeries([]int{2022, 2019, 2020, 2021}, []float64{3, 99, 1, 2})
	require.NoError(t, err)

	values, _, err := r.Resolve(context.Background(), []*param.Descriptor{d}, Input{"x": in})
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{1, 2, 3}, values["x"].Nums())

	gappy, err := IndexedSeries([]int{2020, 2022}, []float64{1, 3})
	require.NoError(t, err)
	_, _, err = r.Resolve(context.Background(), []*param.Descriptor{d}, Input{"x": gappy})
	var cov *InsufficientParameterCoverageError
	require.ErrorAs(t, err, &cov)
	assert.Equal(t, []int{2021}, cov.Missing)
}

func TestResolve_ReferenceInterpolation(t *testing.T) {
	r, err := New(Timeline{Start: 2018, End: 2032})
	require.NoError(t, err)
	d := param.NewFloat("saf_share", 0)

	values, warnings, err := r.Resolve(context.Background(), []*param.Descriptor{d}, Input{
		"saf_share_reference_years":        Series([]float64{2020, 2030}),
		"saf_share_reference_years_values": Series([]float64{0, 0.5}),
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	got := values["saf_share"].Nums()
	require.Len(t, got, 15)
	assert.Equal(t, 0.0, got[0], "held before the first reference year")
	assert.Equal(t, 0.0, got[2])
	assert.InDelta(t, 0.25, got[7], 1e-12)
	assert.Equal(t, 0.5, got[12])
	assert.Equal(t, 0.5, got[14], "held after the last reference year")
}

func TestResolve_ReferenceErrors(t *testing.T) {
	testCases := []struct {
		name   string
		param  *param.Descriptor
		years  Datum
		values Datum
	}{
		{name: "length mismatch", param: param.NewFloat("x", 0), years: Series([]float64{2020, 2030}), values: Series([]float64{1})},
		{name: "not increasing", param: param.NewFloat("x", 0), years: Series([]float64{2030, 2020}), values: Series([]float64{1, 2})},
		{name: "enum", param: param.NewEnum("x", []string{"a"}, ""), years: Series([]float64{2020}), values: Series([]float64{1})},
		{name: "label values", param: param.NewFloat("x", 0), years: Series([]float64{2020}), values: Label("a")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := newResolver(t).Resolve(context.Background(), []*param.Descriptor{tc.param}, Input{
				"x_reference_years":        tc.years,
				"x_reference_years_values": tc.values,
			})
			var refErr *InvalidReferenceError
			require.ErrorAs(t, err, &refErr)
			assert.Equal(t, "x", refErr.Param)
		})
	}
}

func TestResolve_DirectWinsOverReference(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	d := param.NewFloat("x", 0)

	values, warnings, err := newResolver(t).Resolve(ctx, []*param.Descriptor{d}, Input{
		"x":                        Scalar(7),
		"x_reference_years":        Series([]float64{2020, 2030}),
		"x_reference_years_values": Series([]float64{1, 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, vector.Fill(31, 7), values["x"].Nums())
	require.Len(t, warnings, 1)
	assert.Equal(t, ConflictingParameterSpecification, warnings[0].Kind)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "conflicting_parameter_specification")
}

func TestResolve_IncompleteReferenceIgnored(t *testing.T) {
	d := param.NewFloat("x", 3)

	values, warnings, err := newResolver(t).Resolve(context.Background(), []*param.Descriptor{d}, Input{
		"x_reference_years": Series([]float64{2020, 2030}),
	})
	require.NoError(t, err)
	assert.Equal(t, vector.Fill(31, 3), values["x"].Nums())
	require.Len(t, warnings, 2)
	assert.Equal(t, IncompleteReference, warnings[0].Kind)
	assert.Equal(t, MissingParameterValue, warnings[1].Kind)
}

func TestResolve_NonFiniteSanitized(t *testing.T) {
	r, err := New(Timeline{Start: 2020, End: 2022})
	require.NoError(t, err)
	d := param.NewFloat("x", 0)

	values, _, err := r.Resolve(context.Background(), []*param.Descriptor{d}, Input{
		"x": Series([]float64{1, math.NaN(), math.Inf(1)}),
	})
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{1, 0, 0}, values["x"].Nums())
}

func TestResolve_Enum(t *testing.T) {
	r, err := New(Timeline{Start: 2020, End: 2022})
	require.NoError(t, err)
	fuel := param.NewEnum("fuel", []string{"kerosene", "saf"}, "kerosene")

	values, _, err := r.Resolve(context.Background(), []*param.Descriptor{fuel}, Input{
		"fuel": LabelSeries([]string{"kerosene", "saf", ""}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kerosene", "saf", ""}, values["fuel"].LabelSlice())

	values, _, err = r.Resolve(context.Background(), []*param.Descriptor{fuel}, Input{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kerosene", "kerosene", "kerosene"}, values["fuel"].LabelSlice())

	_, _, err = r.Resolve(context.Background(), []*param.Descriptor{fuel}, Input{"fuel": Label("coal")})
	var invalid *param.InvalidParameterValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "coal", invalid.Value)

	_, _, err = r.Resolve(context.Background(), []*param.Descriptor{fuel}, Input{"fuel": Scalar(1)})
	require.ErrorAs(t, err, &invalid)
}

func TestResolve_LabelForFloatRejected(t *testing.T) {
	_, _, err := newResolver(t).Resolve(context.Background(), []*param.Descriptor{param.NewFloat("x", 0)}, Input{"x": Label("a")})
	var invalid *param.InvalidParameterValueError
	require.ErrorAs(t, err, &invalid)
}

func TestResolve_InputNotMutated(t *testing.T) {
	r, err := New(Timeline{Start: 2020, End: 2021})
	require.NoError(t, err)
	raw := []float64{1, math.NaN(), 3}
	in := Input{"x": Series(raw)}

	_, _, err = r.Resolve(context.Background(), []*param.Descriptor{param.NewFloat("x", 0)}, in)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(in["x"].nums[1]))
	assert.Len(t, in["x"].nums, 3)
	assert.True(t, math.IsNaN(raw[1]))
}

type stepInterpolator struct{}

func (stepInterpolator) Interpolate(_, refValues []float64, years []int) vector.Vector {
	return vector.Fill(len(years), refValues[0])
}

func TestWithInterpolator(t *testing.T) {
	r, err := New(Timeline{Start: 2020, End: 2024}, WithInterpolator(stepInterpolator{}))
	require.NoError(t, err)

	values, _, err := r.Resolve(context.Background(), []*param.Descriptor{param.NewFloat("x", 0)}, Input{
		"x_reference_years":        Series([]float64{2020, 2024}),
		"x_reference_years_values": Series([]float64{4, 8}),
	})
	require.NoError(t, err)
	assert.Equal(t, vector.Fill(5, 4), values["x"].Nums())
}

func TestLinear(t *testing.T) {
	got := Linear{}.Interpolate([]float64{2000, 2010, 2020}, []float64{0, 10, 0}, []int{1990, 2000, 2005, 2010, 2015, 2030})
	assert.Equal(t, vector.Vector{0, 0, 5, 10, 5, 0}, got)
}
