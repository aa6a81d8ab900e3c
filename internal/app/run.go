package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/specialistvlad/aerolca/internal/ctxlog"
	"github.com/specialistvlad/aerolca/internal/driver"
	"github.com/specialistvlad/aerolca/internal/model"
	"github.com/specialistvlad/aerolca/internal/publish"
	"github.com/specialistvlad/aerolca/internal/resolver"
	"github.com/specialistvlad/aerolca/internal/scenario"
)

// Run loads the model and scenario, evaluates every metric and writes the
// results. When a publish URL is configured the results are also pushed to
// the display layer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	m, err := model.Load(ctx, a.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	a.describeModel(m)

	sc, err := a.loadScenario(ctx)
	if err != nil {
		return err
	}
	timeline := a.timeline(sc)

	systems, err := selectSystems(sc.Systems, a.config.Systems)
	if err != nil {
		return err
	}

	d, err := driver.New(m, timeline,
		driver.WithAxis(a.axis()),
		driver.WithFunctionalUnit(a.functionalUnit()),
		driver.WithWorkers(a.config.WorkerCount),
	)
	if err != nil {
		return fmt.Errorf("failed to configure evaluation: %w", err)
	}

	a.logger.Info("🚀 Starting evaluation...", "start_year", timeline.Start, "end_year", timeline.End, "systems", len(systems))
	results, warnings, err := d.Run(ctx, systems)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	out, err := results.Output(timeline.Start, timeline.End)
	if err != nil {
		return err
	}
	a.logger.Info("🏁 Evaluation finished.", "series", len(out.Series), "warnings", len(warnings))

	if err := a.writeOutput(out); err != nil {
		return err
	}

	if a.config.PublishURL != "" {
		if err := a.publish(ctx, out); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) axis() string {
	if a.config.Axis == "" {
		return model.DefaultAxis
	}
	return a.config.Axis
}

func (a *App) functionalUnit() string {
	if a.config.FunctionalUnit == "" {
		return model.DefaultFunctionalUnit
	}
	return a.config.FunctionalUnit
}

func (a *App) describeModel(m *model.Model) {
	a.logger.Debug("Model loaded.", "params", len(m.Params()), "axes", m.Axes(), "functional_units", m.FunctionalUnits())
	for _, axis := range m.Axes() {
		for _, metric := range m.Metrics(axis) {
			l, _ := m.Lambda(axis, metric)
			a.logger.Debug("Metric dependencies.", "axis", axis, "metric", metric, "params", l.Params(), "decomposed", l.IsDecomposed())
		}
	}
}

func (a *App) loadScenario(ctx context.Context) (*scenario.Scenario, error) {
	if a.config.ScenarioPath == "" {
		a.logger.Debug("No scenario given; every parameter takes its default.")
		return &scenario.Scenario{Systems: []driver.System{{Name: scenario.DefaultSystem, Input: resolver.Input{}}}}, nil
	}
	sc, err := scenario.Load(ctx, a.config.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return sc, nil
}

// timeline applies explicit config years over the scenario's, and the
// defaults under both.
func (a *App) timeline(sc *scenario.Scenario) resolver.Timeline {
	t := sc.Timeline(DefaultStartYear, DefaultEndYear)
	if a.config.StartYear != 0 {
		t.Start = a.config.StartYear
	}
	if a.config.EndYear != 0 {
		t.End = a.config.EndYear
	}
	return t
}

func selectSystems(all []driver.System, names []string) ([]driver.System, error) {
	if len(names) == 0 {
		return all, nil
	}
	var out []driver.System
	for _, name := range names {
		i := slices.IndexFunc(all, func(s driver.System) bool { return s.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("unknown system '%s'", name)
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (a *App) writeOutput(out *driver.Output) error {
	p := a.config.OutputPath
	if p == "" || p == "-" {
		return encodeOutput(a.outW, out)
	}
	a.logger.Info("Writing results.", "path", p)
	return writeOutputFile(p, out)
}

func writeOutputFile(path string, out *driver.Output) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encodeOutput(f, out); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}
	return nil
}

func encodeOutput(w io.Writer, out *driver.Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

func (a *App) publish(ctx context.Context, out *driver.Output) error {
	p, err := publish.New(publish.Config{
		URL:     a.config.PublishURL,
		Event:   a.config.PublishEvent,
		Timeout: a.config.PublishTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to configure publishing: %w", err)
	}
	if _, err := p.Publish(ctx, out); err != nil {
		return fmt.Errorf("failed to publish results: %w", err)
	}
	return nil
}
