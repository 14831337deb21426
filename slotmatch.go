// Package slotmatch provides a high-level façade over the scheduling engine,
// the event file loader and the report renderers. Most applications interact
// with this package by:
//  1. Creating a SlotMatch via New() or Load()
//  2. Describing the event (time slots, topics, attendees) through Apply or
//     directly on the underlying Scheduler
//  3. Running Schedule and rendering the result with Report or WriteYAML
//
// The façade delegates all scheduling to engine.Scheduler. Defaults are a
// no-op logger and the engine's DefaultConfig.
package slotmatch

import (
	"io"

	"github.com/hupe1980/slotmatch/engine"
	"github.com/hupe1980/slotmatch/eventfile"
	"github.com/hupe1980/slotmatch/logging"
	"github.com/hupe1980/slotmatch/report"
)

// Options configures the SlotMatch instance.
type Options struct {
	// Engine configuration (phases to run)
	Config engine.Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Callbacks observed during Schedule (defaults to an empty manager)
	Callbacks *engine.CallbackManager
}

// SlotMatch is the high-level façade around a single scheduler.
type SlotMatch struct {
	opts      Options
	scheduler *engine.Scheduler
}

// New creates an empty SlotMatch with optional overrides.
func New(optFns ...func(o *Options)) *SlotMatch {
	opts := Options{
		Config: engine.DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := engine.New(func(o *engine.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
		o.Callbacks = opts.Callbacks
	})

	return &SlotMatch{opts: opts, scheduler: s}
}

// Load creates a SlotMatch from the event file at path.
func Load(path string, optFns ...func(o *Options)) (*SlotMatch, error) {
	ev, err := eventfile.Load(path)
	if err != nil {
		return nil, err
	}

	m := New(optFns...)
	if err := m.Apply(ev); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply registers an event definition with the scheduler.
func (m *SlotMatch) Apply(ev *eventfile.Event) error { return ev.Apply(m.scheduler) }

// Scheduler exposes the underlying scheduler for setup and inspection.
func (m *SlotMatch) Scheduler() *engine.Scheduler { return m.scheduler }

// Schedule runs the scheduling algorithm. On failure the partial schedule is
// kept and can still be reported.
func (m *SlotMatch) Schedule() error { return m.scheduler.Schedule() }

// Report returns the plain-text dump of the current state.
func (m *SlotMatch) Report() string { return report.Dump(m.scheduler) }

// Summary returns aggregate statistics of the current schedule.
func (m *SlotMatch) Summary() report.Summary { return report.Summarize(m.scheduler) }

// Export returns the machine-readable view of the current schedule.
func (m *SlotMatch) Export() report.Result { return report.Export(m.scheduler) }

// WriteYAML writes the exported schedule to w.
func (m *SlotMatch) WriteYAML(w io.Writer) error { return report.WriteYAML(w, m.scheduler) }
