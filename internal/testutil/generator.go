package testutil

import (
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/slotmatch/engine"
)

// GeneratorConfig sizes a randomly generated event.
type GeneratorConfig struct {
	TimeSlots   int
	Topics      int
	Attendees   int
	MaxChoices  int
	MaxCapacity int

	// Overflow adds one overflow topic per time slot. Each is offered in
	// every slot with a seat for everyone and is appended to every
	// attendee's choices, so the event can always be fully scheduled.
	Overflow bool
}

// Generate fills a builder with a pseudo-random event derived from seed. The
// same seed always yields the same event. Capacities are random, so without
// Overflow some generated events cannot be fully scheduled.
func Generate(seed uint64, cfg GeneratorConfig) *FixtureBuilder {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := NewFixtureBuilder()

	slots := make([]string, cfg.TimeSlots)
	for i := range slots {
		slots[i] = fmt.Sprintf("slot-%02d", i)
	}
	b.TimeSlots(slots...)

	topics := make([]string, cfg.Topics)
	for i := range topics {
		topics[i] = fmt.Sprintf("topic-%02d", i)
		var sessions []engine.SessionSpec
		for _, j := range r.Perm(len(slots))[:1+r.IntN(len(slots))] {
			sessions = append(sessions, Slot(slots[j], 1+r.IntN(cfg.MaxCapacity)))
		}
		b.Topic(topics[i], sessions...)
	}

	var overflow []string
	if cfg.Overflow {
		for i := range slots {
			name := fmt.Sprintf("overflow-%02d", i)
			sessions := make([]engine.SessionSpec, len(slots))
			for j, slot := range slots {
				sessions[j] = Slot(slot, cfg.Attendees)
			}
			b.Topic(name, sessions...)
			overflow = append(overflow, name)
		}
	}

	for i := 0; i < cfg.Attendees; i++ {
		n := 1 + r.IntN(min(cfg.MaxChoices, len(topics)))
		var choices []string
		for _, j := range r.Perm(len(topics))[:n] {
			choices = append(choices, topics[j])
		}
		choices = append(choices, overflow...)
		b.Attendee(fmt.Sprintf("attendee-%03d", i), fmt.Sprintf("org-%d", i%3), choices...)
	}
	return b
}
