// Package logging is the small logging layer slotmatch writes through.
//
// The scheduler only sees the Logger interface. Callers pick one of:
//
//   - NoOpLogger, the silent default
//   - SlogAdapter around any *slog.Logger
//   - SchedulerLogger, which adds a component tag, fixed attributes and the
//     LogPhase and LogSwap helpers used by the engine
//
// Example:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	s := engine.New(func(o *engine.Options) { o.Logger = logger })
package logging
