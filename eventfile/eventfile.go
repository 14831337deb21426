package eventfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/engine"
)

// ErrInvalidEvent is returned when an event file is structurally unsound.
var ErrInvalidEvent = errors.New("invalid event")

// Event is the top-level document of an event file.
type Event struct {
	TimeSlots []string   `yaml:"time_slots"`
	Topics    []Topic    `yaml:"topics"`
	Attendees []Attendee `yaml:"attendees"`
}

// Topic declares a topic and the sessions it runs in.
type Topic struct {
	Name     string    `yaml:"name"`
	Sessions []Session `yaml:"sessions"`
}

// Session declares a topic's session in one time slot.
type Session struct {
	TimeSlot string `yaml:"time_slot"`
	Capacity int    `yaml:"capacity"`
}

// Attendee declares a participant and their ranked topics. Manual lists
// topics the attendee is required to attend.
type Attendee struct {
	Name         string   `yaml:"name"`
	Organization string   `yaml:"organization"`
	Topics       []string `yaml:"topics"`
	Manual       []string `yaml:"manual,omitempty"`
}

// Load reads and validates the event file at path.
func Load(path string) (*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()

	ev, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ev, nil
}

// Decode parses and validates an event from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Event, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ev Event
	if err := dec.Decode(&ev); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty event file: %w", ErrInvalidEvent)
		}
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Validate checks the event for problems that can be found without a
// scheduler: missing names, negative capacities, and manual topics the
// attendee never asked for. Duplicate and dangling references are reported
// by the scheduler when the event is applied.
func (e *Event) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidEvent))
	}

	if len(e.TimeSlots) == 0 {
		invalid("at least one time slot is required")
	}
	for i, t := range e.Topics {
		if t.Name == "" {
			invalid("topics[%d]: name is required", i)
		}
		if len(t.Sessions) == 0 {
			invalid("topic %q: at least one session is required", t.Name)
		}
		for _, s := range t.Sessions {
			if s.Capacity < 0 {
				invalid("topic %q: negative capacity %d in time slot %q", t.Name, s.Capacity, s.TimeSlot)
			}
		}
	}
	for i, a := range e.Attendees {
		if a.Name == "" {
			invalid("attendees[%d]: name is required", i)
		}
		for _, m := range a.Manual {
			if !slices.Contains(a.Topics, m) {
				invalid("attendee %q: manual topic %q is not among its topics", core.AttendeeKey(a.Organization, a.Name), m)
			}
		}
	}
	return errors.Join(errs...)
}

// Apply registers the event's time slots, topics and attendees with the
// scheduler, then places the manual assignments. A manual assignment that
// cannot be placed is an error.
func (e *Event) Apply(s *engine.Scheduler) error {
	if err := s.AddTimeSlots(e.TimeSlots...); err != nil {
		return err
	}

	for _, t := range e.Topics {
		specs := make([]engine.SessionSpec, len(t.Sessions))
		for i, se := range t.Sessions {
			specs[i] = engine.SessionSpec{TimeSlot: se.TimeSlot, Capacity: se.Capacity}
		}
		if _, err := s.AddTopic(t.Name, specs...); err != nil {
			return err
		}
	}

	ids := make([]core.AttendeeID, len(e.Attendees))
	for i, a := range e.Attendees {
		id, err := s.AddAttendee(a.Name, a.Organization, a.Topics...)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	for i, a := range e.Attendees {
		for _, m := range a.Manual {
			topic, err := s.TopicByName(m)
			if err != nil {
				return err
			}
			ok, err := s.ManuallyAssign(ids[i], topic)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no session of %s has room for %s: %w",
					m, core.AttendeeKey(a.Organization, a.Name), ErrInvalidEvent)
			}
		}
	}
	return nil
}
