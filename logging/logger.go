package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel selects how verbose a logger is, independent of slog's numbering.
type LogLevel int

// Levels, ordered from most to least verbose.
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelTable = [...]struct {
	name  string
	level slog.Level
	alias []string
}{
	LogLevelDebug: {"DEBUG", slog.LevelDebug, []string{"debug"}},
	LogLevelInfo:  {"INFO", slog.LevelInfo, []string{"info", ""}},
	LogLevelWarn:  {"WARN", slog.LevelWarn, []string{"warn", "warning"}},
	LogLevelError: {"ERROR", slog.LevelError, []string{"error"}},
}

func (l LogLevel) valid() bool { return l >= 0 && int(l) < len(levelTable) }

// String returns the upper-case level name, or UNKNOWN.
func (l LogLevel) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levelTable[l].name
}

// slogLevel maps l onto slog. Out-of-range values fall back to info.
func (l LogLevel) slogLevel() slog.Level {
	if !l.valid() {
		return slog.LevelInfo
	}
	return levelTable[l].level
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
// An empty string means info.
func ParseLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for lvl, entry := range levelTable {
		for _, a := range entry.alias {
			if a == name {
				return LogLevel(lvl), nil
			}
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is what the scheduler writes to. Args follow slog's alternating
// key/value convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter lets a plain *slog.Logger serve as a Logger. The embedded
// logger already has the right method set.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter wraps logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger wraps slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// SchedulerLogger is a structured logger that carries a component name and a
// set of fixed attributes. WithComponent and WithContext return modified
// copies, leaving the receiver untouched.
type SchedulerLogger struct {
	logger    *slog.Logger
	level     LogLevel
	addSource bool
	context   map[string]any
	component string
}

// LoggerConfig describes a SchedulerLogger. Format is "json" or "text";
// anything other than "text" produces JSON. A nil Output means stderr.
type LoggerConfig struct {
	Level       LogLevel
	Format      string
	Output      io.Writer
	AddSource   bool
	Component   string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig logs JSON at info level to stderr.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:       LogLevelInfo,
		Format:      "json",
		Output:      os.Stderr,
		CustomAttrs: map[string]any{},
	}
}

// NewLogger builds a SchedulerLogger. A nil cfg means DefaultLoggerConfig.
func NewLogger(cfg *LoggerConfig) *SchedulerLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: cfg.Level.slogLevel(), AddSource: cfg.AddSource}
	var h slog.Handler = slog.NewJSONHandler(w, hopts)
	if cfg.Format == "text" {
		h = slog.NewTextHandler(w, hopts)
	}

	attrs := make(map[string]any, len(cfg.CustomAttrs))
	for k, v := range cfg.CustomAttrs {
		attrs[k] = v
	}
	return &SchedulerLogger{
		logger:    slog.New(h),
		level:     cfg.Level,
		addSource: cfg.AddSource,
		context:   attrs,
		component: cfg.Component,
	}
}

// NewSlogLogger is shorthand for NewLogger with stderr output. An empty
// format keeps the JSON default.
func NewSlogLogger(level LogLevel, format string, addSource bool) *SchedulerLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.AddSource = addSource
	if format != "" {
		cfg.Format = format
	}
	return NewLogger(cfg)
}

func (l *SchedulerLogger) derive(mod func(*SchedulerLogger)) *SchedulerLogger {
	cp := *l
	cp.context = make(map[string]any, len(l.context)+1)
	for k, v := range l.context {
		cp.context[k] = v
	}
	mod(&cp)
	return &cp
}

// WithContext returns a copy that adds key=value to every record.
func (l *SchedulerLogger) WithContext(key string, value any) *SchedulerLogger {
	return l.derive(func(cp *SchedulerLogger) { cp.context[key] = value })
}

// WithComponent returns a copy tagged with component c (engine, cli, ...).
func (l *SchedulerLogger) WithComponent(c string) *SchedulerLogger {
	return l.derive(func(cp *SchedulerLogger) { cp.component = c })
}

func (l *SchedulerLogger) fixedAttrs(extra int) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.context)+1+extra)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	for k, v := range l.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// write hands one record to the handler. It must be called directly from the
// exported method so that the source points at that method's caller.
func (l *SchedulerLogger) write(lvl slog.Level, msg string, attrs []slog.Attr, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, lvl) {
		return
	}
	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// Skip runtime.Callers, write and the exported method.
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}
	r := slog.NewRecord(time.Now(), lvl, msg, pc)
	r.AddAttrs(attrs...)
	r.Add(args...)
	_ = l.logger.Handler().Handle(ctx, r)
}

// Debug logs at debug level.
func (l *SchedulerLogger) Debug(msg string, args ...any) {
	if l.level <= LogLevelDebug {
		l.write(slog.LevelDebug, msg, l.fixedAttrs(0), args)
	}
}

// Info logs at info level.
func (l *SchedulerLogger) Info(msg string, args ...any) {
	if l.level <= LogLevelInfo {
		l.write(slog.LevelInfo, msg, l.fixedAttrs(0), args)
	}
}

// Warn logs at warn level.
func (l *SchedulerLogger) Warn(msg string, args ...any) {
	if l.level <= LogLevelWarn {
		l.write(slog.LevelWarn, msg, l.fixedAttrs(0), args)
	}
}

// Error logs at error level.
func (l *SchedulerLogger) Error(msg string, args ...any) {
	if l.level <= LogLevelError {
		l.write(slog.LevelError, msg, l.fixedAttrs(0), args)
	}
}

// LogPhase reports how a scheduling phase ended. Failures are logged at
// error level with the error text attached.
func (l *SchedulerLogger) LogPhase(phase string, passes int, dur time.Duration, err error) {
	attrs := append(l.fixedAttrs(5),
		slog.String("phase", phase),
		slog.Int("passes", passes),
		slog.Duration("duration", dur),
		slog.Bool("success", err == nil),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.write(slog.LevelError, "Scheduling phase failed", attrs, nil)
		return
	}
	l.write(slog.LevelInfo, "Scheduling phase completed", attrs, nil)
}

// LogSwap reports one swap attempt. It is a debug-only record; scores are
// attached only when the trade went through.
func (l *SchedulerLogger) LogSwap(attendee, donor string, oldScore, newScore int, success bool) {
	if l.level > LogLevelDebug {
		return
	}
	attrs := append(l.fixedAttrs(5), slog.String("attendee", attendee), slog.Bool("success", success))
	if donor != "" {
		attrs = append(attrs, slog.String("donor", donor))
	}
	if success {
		attrs = append(attrs, slog.Int("old_score", oldScore), slog.Int("new_score", newScore))
	}
	l.write(slog.LevelDebug, "Swap attempted", attrs, nil)
}

// StartTimer starts measuring op. Calling the returned func logs the
// elapsed time at info level.
func (l *SchedulerLogger) StartTimer(op string) func() {
	began := time.Now()
	return func() {
		if l.level <= LogLevelInfo {
			l.write(slog.LevelInfo, "Operation completed", l.fixedAttrs(0), []any{"operation", op, "duration", time.Since(began)})
		}
	}
}

// NoOpLogger drops everything. It is the default for library callers that
// configure no logger.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}
