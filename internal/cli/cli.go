// Package cli implements the slotmatch command: configuration from the
// environment and flags, and the load, schedule and render run.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"

	"github.com/hupe1980/slotmatch"
	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/engine"
	"github.com/hupe1980/slotmatch/logging"
	"github.com/hupe1980/slotmatch/report"
)

// Output formats.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// Config holds slotmatch command configuration.
type Config struct {
	LogLevel  string `env:"SLOTMATCH_LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"SLOTMATCH_LOG_FORMAT" envDefault:"text"`
	Output    string `env:"SLOTMATCH_OUTPUT"     envDefault:"text"`
	NoImprove bool   `env:"SLOTMATCH_NO_IMPROVE"`
	Validate  bool   `env:"SLOTMATCH_VALIDATE"`
	EventFile string `env:"SLOTMATCH_EVENT_FILE"`
}

// ParseConfig reads the environment, then lets flags override it. The first
// positional argument, if any, names the event file.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "result format (text, yaml)")
	fs.BoolVar(&cfg.NoImprove, "no-improve", cfg.NoImprove, "skip the improve phase")
	fs.BoolVar(&cfg.Validate, "validate", cfg.Validate, "check invariants after every phase")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		cfg.EventFile = fs.Arg(0)
	}

	if cfg.Output != OutputText && cfg.Output != OutputYAML {
		return Config{}, fmt.Errorf("unsupported output %q", cfg.Output)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the event, schedules it and writes the result to out. Logs go to
// errOut. A scheduling failure still renders the partial result before the
// error is returned.
func Run(cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.EventFile == "" {
		return errors.New("event file is required")
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg := logging.DefaultLoggerConfig()
	logCfg.Level = level
	logCfg.Format = cfg.LogFormat
	logCfg.Output = errOut
	logCfg.Component = "slotmatch"
	logger := logging.NewLogger(logCfg).WithContext("event", cfg.EventFile)

	m, err := slotmatch.Load(cfg.EventFile, func(o *slotmatch.Options) {
		o.Config.ImprovePhase = !cfg.NoImprove
		o.Logger = logger
	})
	if err != nil {
		return err
	}
	if cfg.Validate {
		s := m.Scheduler()
		s.Callbacks().RegisterCallback(engine.NewValidationCallback(s.Validate))
	}

	done := logger.StartTimer("schedule")
	schedErr := m.Schedule()
	done()
	if schedErr != nil && !errors.Is(schedErr, core.ErrScheduleFailure) {
		return schedErr
	}

	if err := render(m, cfg.Output, out); err != nil {
		return err
	}

	sum := m.Summary()
	logger.Info("Schedule summary",
		"attendees", sum.Attendees,
		"filled", sum.Filled,
		"total_score", sum.TotalScore,
		"worst_rank", sum.WorstRank,
		"utilization", sum.Utilization,
		"fingerprint", report.Fingerprint(m.Scheduler()))
	return schedErr
}

func render(m *slotmatch.SlotMatch, output string, out io.Writer) error {
	switch output {
	case OutputYAML:
		return m.WriteYAML(out)
	default:
		_, err := io.WriteString(out, m.Report())
		return err
	}
}
