package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/slotmatch/core"
)

// Validate checks the scheduling invariants over the whole entity graph:
//
//   - no session holds more attendees than its capacity
//   - no attendee is booked twice in one time slot
//   - every assignment belongs to a preference for the session's topic
//   - session attendee lists and attendee assignments agree
//
// All violations are reported, joined, each wrapping core.ErrInvariantViolation.
func (s *Scheduler) Validate() error {
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrInvariantViolation))
	}

	for i := range s.sessions {
		se := &s.sessions[i]
		name := s.sessionName(se)
		if len(se.Attendees) > se.Capacity {
			violation("%s holds %d attendees, capacity %d", name, len(se.Attendees), se.Capacity)
		}
		seen := make(map[core.AttendeeID]bool, len(se.Attendees))
		for _, a := range se.Attendees {
			if seen[a] {
				violation("%s lists %s twice", name, s.keys[a])
				continue
			}
			seen[a] = true
			if _, ok := s.attendees[a].AssignmentFor(se.ID); !ok {
				violation("%s lists %s without an assignment", name, s.keys[a])
			}
		}
	}

	for i := range s.attendees {
		att := &s.attendees[i]
		slots := make(map[core.TimeSlotID]bool)
		for _, p := range att.Preferences {
			if p.Assignment == nil {
				continue
			}
			se := &s.sessions[p.Assignment.Session]
			if se.Topic != p.Topic {
				violation("%s assigned %s for preference %s", att, s.sessionName(se), s.topics[p.Topic].Name)
			}
			if slots[se.TimeSlot] {
				violation("%s double-booked in time slot %s", att, s.timeSlots[se.TimeSlot].Name)
			}
			slots[se.TimeSlot] = true
			if !se.Has(att.ID) {
				violation("%s assigned %s but not seated", att, s.sessionName(se))
			}
		}
	}

	return errors.Join(errs...)
}
