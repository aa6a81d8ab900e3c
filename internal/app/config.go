package app

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultStartYear is the first simulated year when neither the scenario
	// nor the caller sets one.
	DefaultStartYear = 2020
	// DefaultEndYear is the last simulated year when neither the scenario nor
	// the caller sets one.
	DefaultEndYear = 2050
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath    string // portable model file, JSON or HJSON
	ScenarioPath string // optional YAML scenario

	// Zero means "take it from the scenario, or the default".
	StartYear int
	EndYear   int

	Axis           string
	FunctionalUnit string
	Systems        []string // subset of scenario systems; empty means all
	WorkerCount    int
	OutputPath     string // empty or "-" writes to the app's output writer

	PublishURL     string
	PublishEvent   string
	PublishTimeout time.Duration

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	if cfg.StartYear < 0 || cfg.EndYear < 0 {
		return nil, errors.New("years must not be negative")
	}
	if cfg.StartYear != 0 && cfg.EndYear != 0 && cfg.EndYear < cfg.StartYear {
		return nil, fmt.Errorf("end year %d is before start year %d", cfg.EndYear, cfg.StartYear)
	}
	if cfg.WorkerCount < 1 {
		return nil, errors.New("WorkerCount must be at least 1")
	}
	if cfg.PublishTimeout < 0 {
		return nil, errors.New("PublishTimeout must not be negative")
	}
	return &cfg, nil
}
