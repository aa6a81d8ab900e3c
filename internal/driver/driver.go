package driver

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/model"
	"github.com/specialistvlad/aerolca/internal/resolver"
	"github.com/specialistvlad/aerolca/internal/vector"
	"golang.org/x/sync/errgroup"
)

// System is one named parameter configuration to evaluate.
type System struct {
	Name  string
	Input resolver.Input
}

// Driver evaluates every metric of a Model for a timeline.
type Driver struct {
	model          *model.Model
	resolver       *resolver.Resolver
	axis           string
	functionalUnit string
	workers        int
	resolverOpts   []resolver.Option
}

// Option configures a Driver.
type Option func(*Driver)

// WithAxis selects the axis to evaluate. The default is model.DefaultAxis.
func WithAxis(axis string) Option {
	return func(d *Driver) { d.axis = axis }
}

// WithFunctionalUnit selects the normalizing functional unit. The default is
// model.DefaultFunctionalUnit.
func WithFunctionalUnit(name string) Option {
	return func(d *Driver) { d.functionalUnit = name }
}

// WithWorkers bounds how many metrics are evaluated concurrently. Values
// below 1 mean sequential evaluation.
func WithWorkers(n int) Option {
	return func(d *Driver) { d.workers = n }
}

// WithInterpolator replaces the resolver's reference interpolator.
func WithInterpolator(i resolver.Interpolator) Option {
	return func(d *Driver) { d.resolverOpts = append(d.resolverOpts, resolver.WithInterpolator(i)) }
}

// New creates a Driver for m over the given timeline. The axis and functional
// unit are checked against the model up front.
func New(m *model.Model, timeline resolver.Timeline, opts ...Option) (*Driver, error) {
	d := &Driver{
		model:          m,
		axis:           model.DefaultAxis,
		functionalUnit: model.DefaultFunctionalUnit,
		workers:        1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	if len(m.Metrics(d.axis)) == 0 {
		return nil, &model.UnknownAxisError{Axis: d.axis, Known: m.Axes()}
	}
	if !slices.Contains(m.FunctionalUnits(), d.functionalUnit) {
		return nil, &model.UnknownFunctionalUnitError{Name: d.functionalUnit}
	}

	if err := checkKeys(m, d.axis, nil); err != nil {
		return nil, err
	}

	r, err := resolver.New(timeline, d.resolverOpts...)
	if err != nil {
		return nil, err
	}
	d.resolver = r
	return d, nil
}

// Timeline returns the simulated years.
func (d *Driver) Timeline() resolver.Timeline {
	return d.resolver.Timeline()
}

type job struct {
	system string
	metric string
	values model.Values
}

// Run resolves every system and evaluates every metric of the selected axis.
// Parameters of all systems are resolved before any metric runs. Context
// cancellation is observed between metric evaluations.
func (d *Driver) Run(ctx context.Context, systems []System) (*ResultArray, []resolver.Warning, error) {
	if len(systems) == 0 {
		return nil, nil, fmt.Errorf("no systems to evaluate")
	}
	logger := ctxlog.FromContext(ctx).With("run_id", uuid.NewString(), "axis", d.axis, "functional_unit", d.functionalUnit)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("Starting evaluation.", "systems", len(systems), "workers", d.workers)

	metrics := d.model.Metrics(d.axis)
	names := make([]string, len(systems))
	seen := make(map[string]struct{}, len(systems))
	for i, s := range systems {
		if _, dup := seen[s.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate system name '%s'", s.Name)
		}
		seen[s.Name] = struct{}{}
		names[i] = s.Name
	}
	if len(names) > 1 {
		if err := checkKeys(d.model, d.axis, names); err != nil {
			return nil, nil, err
		}
	}
	var warnings []resolver.Warning
	jobs := make([]job, 0, len(systems)*len(metrics))

	for _, s := range systems {
		values, ws, err := d.resolver.Resolve(ctxlog.WithLogger(ctx, logger.With("system", s.Name)), d.model.Params(), s.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving system '%s': %w", s.Name, err)
		}
		warnings = append(warnings, ws...)
		for _, m := range metrics {
			jobs = append(jobs, job{system: s.Name, metric: m, values: values})
		}
	}

	t := d.resolver.Timeline()
	results := newResultArray(t.Start, t.Len(), d.axis, d.model.Decomposed(d.axis), names, metrics)
	type outcome struct {
		value map[string]vector.Vector
		unit  string
	}
	outcomes := make([]outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			jobLogger := logger.With("system", j.system, "metric", j.metric)
			jobLogger.Debug("Evaluating metric.")
			res, unit, err := d.model.Evaluate(ctxlog.WithLogger(gctx, jobLogger), j.metric, d.functionalUnit, d.axis, j.values)
			if err != nil {
				return fmt.Errorf("system '%s': %w", j.system, err)
			}
			byLabel := res.ByAxis
			if !res.IsDecomposed() {
				byLabel = map[string]vector.Vector{"": res.Value}
			}
			outcomes[i] = outcome{value: byLabel, unit: unit}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Evaluation failed.", "error", err)
		return nil, nil, err
	}

	for i, j := range jobs {
		for label, v := range outcomes[i].value {
			if err := results.set(j.system, j.metric, label, v); err != nil {
				return nil, nil, err
			}
		}
		results.units[j.metric] = outcomes[i].unit
	}

	logger.Info("Evaluation finished.", "metrics", len(metrics), "warnings", len(warnings))
	return results, warnings, nil
}

// Compute evaluates a single unnamed system and returns one full-timeline
// series per output key. Warnings are only logged.
func (d *Driver) Compute(ctx context.Context, input resolver.Input) (FlatSeries, error) {
	results, _, err := d.Run(ctx, []System{{Input: input}})
	if err != nil {
		return nil, err
	}
	t := d.resolver.Timeline()
	out, err := results.Output(t.Start, t.End)
	if err != nil {
		return nil, err
	}
	return FlatSeries(out.Series), nil
}
