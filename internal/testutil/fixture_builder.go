package testutil

import (
	"fmt"

	"github.com/hupe1980/slotmatch/engine"
)

// FixtureBuilder helps construct schedulers with fluent chaining for tests.
// Example:
//
//	s, err := NewFixtureBuilder().
//		TimeSlots("9:00").
//		Topic("X", Slot("9:00", 1)).
//		Attendee("A", "Org", "X").
//		Build()
type FixtureBuilder struct {
	slots     []string
	topics    []topicSpec
	attendees []attendeeSpec
	manual    []manualSpec
	optFns    []func(o *engine.Options)
}

type topicSpec struct {
	name     string
	sessions []engine.SessionSpec
}

type attendeeSpec struct {
	name, organization string
	topics             []string
}

type manualSpec struct {
	organization, name, topic string
}

// NewFixtureBuilder creates an empty builder.
func NewFixtureBuilder() *FixtureBuilder { return &FixtureBuilder{} }

// Slot is shorthand for an engine.SessionSpec.
func Slot(timeSlot string, capacity int) engine.SessionSpec {
	return engine.SessionSpec{TimeSlot: timeSlot, Capacity: capacity}
}

// TimeSlots appends time slots (chainable).
func (b *FixtureBuilder) TimeSlots(names ...string) *FixtureBuilder {
	b.slots = append(b.slots, names...)
	return b
}

// Topic appends a topic with its sessions (chainable).
func (b *FixtureBuilder) Topic(name string, sessions ...engine.SessionSpec) *FixtureBuilder {
	b.topics = append(b.topics, topicSpec{name: name, sessions: sessions})
	return b
}

// Attendee appends an attendee with topics in preference order (chainable).
func (b *FixtureBuilder) Attendee(name, organization string, topics ...string) *FixtureBuilder {
	b.attendees = append(b.attendees, attendeeSpec{name: name, organization: organization, topics: topics})
	return b
}

// Manual records an immutable assignment applied after setup (chainable).
func (b *FixtureBuilder) Manual(organization, name, topic string) *FixtureBuilder {
	b.manual = append(b.manual, manualSpec{organization: organization, name: name, topic: topic})
	return b
}

// Options adds an engine option override (chainable).
func (b *FixtureBuilder) Options(fn func(o *engine.Options)) *FixtureBuilder {
	b.optFns = append(b.optFns, fn)
	return b
}

// Build creates the scheduler and applies every recorded setup step.
func (b *FixtureBuilder) Build() (*engine.Scheduler, error) {
	s := engine.New(b.optFns...)

	if err := s.AddTimeSlots(b.slots...); err != nil {
		return nil, err
	}
	for _, t := range b.topics {
		if _, err := s.AddTopic(t.name, t.sessions...); err != nil {
			return nil, err
		}
	}
	for _, a := range b.attendees {
		if _, err := s.AddAttendee(a.name, a.organization, a.topics...); err != nil {
			return nil, err
		}
	}
	for _, m := range b.manual {
		aid, err := s.AttendeeByName(m.organization, m.name)
		if err != nil {
			return nil, err
		}
		tid, err := s.TopicByName(m.topic)
		if err != nil {
			return nil, err
		}
		ok, err := s.ManuallyAssign(aid, tid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("manual assignment of %s - %s to %s could not be placed", m.organization, m.name, m.topic)
		}
	}
	return s, nil
}
