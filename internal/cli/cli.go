package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/aerolca/internal/app"
	"github.com/specialistvlad/aerolca/internal/publish"
)

// EnvPrefix prefixes every environment variable that supplies a flag default.
const EnvPrefix = "AEROLCA_"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// LoadEnvFile loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// stringList collects a repeatable flag. Values seeded from the environment
// are replaced by the first value given on the command line.
type stringList struct {
	values []string
	seeded bool
}

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(s.values, ",")
}

func (s *stringList) Set(v string) error {
	if s.seeded {
		s.values, s.seeded = nil, false
	}
	s.add(v)
	return nil
}

func (s *stringList) seed(v string) {
	s.add(v)
	s.seeded = true
}

func (s *stringList) add(v string) {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			s.values = append(s.values, part)
		}
	}
}

// Parse processes command-line arguments with defaults taken from the
// process environment. It returns a populated Config, a boolean indicating
// if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return ParseWithEnv(args, output, os.Getenv)
}

// ParseWithEnv is Parse with an explicit environment lookup.
func ParseWithEnv(args []string, output io.Writer, getenv func(string) string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("aerolca", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
aerolca - Evaluate a parametric LCA impact model over a simulation timeline.

Usage:
  aerolca [options] [MODEL_PATH]

Arguments:
  MODEL_PATH
    Path to a portable model file (JSON or HJSON).

Every option can also be set with an AEROLCA_<NAME> environment variable,
e.g. AEROLCA_LOG_LEVEL=debug. A .env file in the working directory is read
when present.

Options:
`)
		flagSet.PrintDefaults()
	}

	env := func(name, def string) string {
		if v := getenv(EnvPrefix + name); v != "" {
			return v
		}
		return def
	}
	envInt := func(name string, def int) (int, error) {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, &ExitError{Code: 2, Message: fmt.Sprintf("invalid %s%s: %v", EnvPrefix, name, err)}
		}
		return n, nil
	}
	startDefault, err := envInt("START_YEAR", 0)
	if err != nil {
		return nil, false, err
	}
	endDefault, err := envInt("END_YEAR", 0)
	if err != nil {
		return nil, false, err
	}
	workersDefault, err := envInt("WORKERS", 1)
	if err != nil {
		return nil, false, err
	}
	timeoutDefault := publish.DefaultTimeout
	if v := getenv(EnvPrefix + "PUBLISH_TIMEOUT"); v != "" {
		if timeoutDefault, err = time.ParseDuration(v); err != nil {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid %sPUBLISH_TIMEOUT: %v", EnvPrefix, err)}
		}
	}

	modelFlag := flagSet.String("model", env("MODEL", ""), "Path to the model file.")
	mFlag := flagSet.String("m", "", "Path to the model file (shorthand).")
	scenarioFlag := flagSet.String("scenario", env("SCENARIO", ""), "Path to a YAML scenario document.")
	startFlag := flagSet.Int("start-year", startDefault, fmt.Sprintf("First simulated year. 0 uses the scenario or %d.", app.DefaultStartYear))
	endFlag := flagSet.Int("end-year", endDefault, fmt.Sprintf("Last simulated year. 0 uses the scenario or %d.", app.DefaultEndYear))
	axisFlag := flagSet.String("axis", env("AXIS", "total"), "Axis to evaluate.")
	fuFlag := flagSet.String("functional-unit", env("FUNCTIONAL_UNIT", "air_transport"), "Functional unit to normalize by.")
	var systems stringList
	if v := getenv(EnvPrefix + "SYSTEMS"); v != "" {
		systems.seed(v)
	}
	flagSet.Var(&systems, "system", "Scenario system to evaluate. Repeatable; default is all.")
	workersFlag := flagSet.Int("workers", workersDefault, "Number of metrics evaluated concurrently.")
	outputFlag := flagSet.String("output", env("OUTPUT", "-"), "Results file. '-' writes to stdout.")
	publishURLFlag := flagSet.String("publish-url", env("PUBLISH_URL", ""), "socket.io endpoint of the display layer. Empty disables publishing.")
	publishEventFlag := flagSet.String("publish-event", env("PUBLISH_EVENT", publish.DefaultEvent), "Event name the results are emitted under.")
	publishTimeoutFlag := flagSet.Duration("publish-timeout", timeoutDefault, "Time allowed for publishing and its acknowledgement.")
	logFormatFlag := flagSet.String("log-format", env("LOG_FORMAT", "json"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env("LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	// An explicit -model wins over -m and the positional path, which win over
	// AEROLCA_MODEL.
	explicitModel := false
	flagSet.Visit(func(f *flag.Flag) {
		explicitModel = explicitModel || f.Name == "model"
	})
	path := *modelFlag
	if !explicitModel {
		if *mFlag != "" {
			path = *mFlag
		} else if flagSet.NArg() > 0 {
			path = flagSet.Arg(0)
		}
	}
	slog.Debug("Model path determined.", "path", path)

	if path == "" {
		slog.Debug("No model path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if !slices.Contains(app.LogFormats, logFormat) {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	if _, err := app.ParseLevel(logLevel); err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModelPath:      path,
		ScenarioPath:   *scenarioFlag,
		StartYear:      *startFlag,
		EndYear:        *endFlag,
		Axis:           *axisFlag,
		FunctionalUnit: *fuFlag,
		Systems:        systems.values,
		WorkerCount:    *workersFlag,
		OutputPath:     *outputFlag,
		PublishURL:     *publishURLFlag,
		PublishEvent:   *publishEventFlag,
		PublishTimeout: *publishTimeoutFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
