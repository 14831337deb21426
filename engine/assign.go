package engine

import (
	"fmt"
	"sort"

	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/txlog"
)

// AssignOptions narrows a preference-driven assignment.
type AssignOptions struct {
	// Topic restricts the search to the preference for this topic.
	// core.NoTopic (the default) considers every preference in rank order.
	Topic core.TopicID

	// Immutable marks the resulting assignment as fixed: the scheduling
	// algorithm will never remove it.
	Immutable bool
}

// AssignSession seats the attendee in the session.
//
// It fails with core.ErrSlotConflict if the attendee is already booked in the
// session's time slot, core.ErrCapacityExceeded if the session is full, and
// core.ErrInvalidRequest if the attendee never asked for the session's topic
// or already attends it.
func (s *Scheduler) AssignSession(a core.AttendeeID, session core.SessionID, immutable bool) error {
	att, err := s.attendee(a)
	if err != nil {
		return err
	}
	se, err := s.session(session)
	if err != nil {
		return err
	}

	if s.bookedIn(att, se.TimeSlot) {
		return fmt.Errorf("%s is already booked for time slot %s: %w", att, s.timeSlots[se.TimeSlot].Name, core.ErrSlotConflict)
	}
	if se.Full() {
		return fmt.Errorf("no more room for %s in %s: %w", att, s.sessionName(se), core.ErrCapacityExceeded)
	}
	rank, ok := att.PreferenceFor(se.Topic)
	if !ok {
		return fmt.Errorf("%s has not asked for topic %s: %w", att, s.topics[se.Topic].Name, core.ErrInvalidRequest)
	}
	if att.Preferences[rank].Assigned() {
		return fmt.Errorf("%s is already attending topic %s: %w", att, s.topics[se.Topic].Name, core.ErrInvalidRequest)
	}

	att.Preferences[rank].Assignment = &core.Assignment{Session: session, Immutable: immutable}
	se.Attendees = append(se.Attendees, a)
	s.log.Record(txlog.Unassign(a, session))
	return nil
}

// UnassignSession removes the attendee from the session.
//
// It fails with core.ErrInvalidRequest if the attendee is not booked for the
// session and with core.ErrImmutableViolation if the assignment is immutable
// and force is false.
func (s *Scheduler) UnassignSession(a core.AttendeeID, session core.SessionID, force bool) error {
	att, err := s.attendee(a)
	if err != nil {
		return err
	}
	se, err := s.session(session)
	if err != nil {
		return err
	}

	rank, ok := att.AssignmentFor(session)
	if !ok {
		return fmt.Errorf("%s is not booked for %s: %w", att, s.sessionName(se), core.ErrInvalidRequest)
	}
	assignment := att.Preferences[rank].Assignment
	if assignment.Immutable && !force {
		return fmt.Errorf("%s is required to attend %s: %w", att, s.sessionName(se), core.ErrImmutableViolation)
	}

	att.Preferences[rank].Assignment = nil
	for i, id := range se.Attendees {
		if id == a {
			se.Attendees = append(se.Attendees[:i], se.Attendees[i+1:]...)
			break
		}
	}
	s.log.Record(txlog.Reassign(a, session, assignment.Immutable))
	return nil
}

// Assign places the attendee in a session for their best unassigned
// preference that still has room in a time slot they have open. Sessions of
// the same topic are tried least-attended first.
//
// It returns true if a session was assigned. A Topic option naming a topic
// the attendee never requested fails with core.ErrInvalidRequest.
func (s *Scheduler) Assign(a core.AttendeeID, optFns ...func(o *AssignOptions)) (bool, error) {
	opts := AssignOptions{Topic: core.NoTopic}
	for _, fn := range optFns {
		fn(&opts)
	}

	att, err := s.attendee(a)
	if err != nil {
		return false, err
	}
	if opts.Topic != core.NoTopic {
		if opts.Topic < 0 || int(opts.Topic) >= len(s.topics) {
			return false, fmt.Errorf("topic #%d: %w", opts.Topic, core.ErrUnknownReference)
		}
		if _, ok := att.PreferenceFor(opts.Topic); !ok {
			return false, fmt.Errorf("%s has not asked for topic %s: %w", att, s.topics[opts.Topic].Name, core.ErrInvalidRequest)
		}
	}
	return s.assign(att, opts.Topic, opts.Immutable)
}

// ManuallyAssign fixes the attendee in a session of the topic. It is
// equivalent to Assign with the topic and Immutable options set.
func (s *Scheduler) ManuallyAssign(a core.AttendeeID, topic core.TopicID) (bool, error) {
	return s.Assign(a, func(o *AssignOptions) {
		o.Topic = topic
		o.Immutable = true
	})
}

// ClearSchedule removes every assignment. Immutable assignments are kept
// unless force is true.
func (s *Scheduler) ClearSchedule(force bool) error {
	for i := range s.attendees {
		att := &s.attendees[i]
		for _, p := range att.Preferences {
			if p.Assignment == nil || (p.Assignment.Immutable && !force) {
				continue
			}
			if err := s.UnassignSession(att.ID, p.Assignment.Session, force); err != nil {
				return err
			}
		}
	}
	return nil
}

// Checkpoint opens a named transaction frame and returns its name. An empty
// name is replaced by a unique generated one.
func (s *Scheduler) Checkpoint(name string) string { return s.log.Checkpoint(name) }

// Commit closes the most recent checkpoint keeping its changes. If an older
// checkpoint is still open, the changes become part of it.
func (s *Scheduler) Commit(name string) error { return s.log.Commit(name) }

// Rollback closes the most recent checkpoint undoing every change made since
// it was opened.
func (s *Scheduler) Rollback(name string) error {
	return s.log.Rollback(name, s.applier())
}

// CheckpointDepth returns the number of open checkpoints.
func (s *Scheduler) CheckpointDepth() int { return s.log.Depth() }

func (s *Scheduler) applier() txlog.Applier { return txlog.ApplierFunc(s.applyOp) }

func (s *Scheduler) applyOp(op txlog.Op) error {
	switch op.Kind {
	case txlog.OpReassign:
		return s.AssignSession(op.Attendee, op.Session, op.Immutable)
	case txlog.OpUnassign:
		return s.UnassignSession(op.Attendee, op.Session, true)
	default:
		return fmt.Errorf("unsupported op %s: %w", op.Kind, core.ErrInvalidRequest)
	}
}

// assign walks the attendee's preferences in rank order. Only control-flow
// errors from the primitive are swallowed.
func (s *Scheduler) assign(att *core.Attendee, topic core.TopicID, immutable bool) (bool, error) {
	for _, p := range att.Preferences {
		if p.Assigned() {
			continue
		}
		if topic != core.NoTopic && p.Topic != topic {
			continue
		}
		for _, sid := range s.sessionsByLoad(p.Topic) {
			err := s.AssignSession(att.ID, sid, immutable)
			if err == nil {
				return true, nil
			}
			if !core.IsControlFlow(err) {
				return false, err
			}
		}
	}
	return false, nil
}

// sessionsByLoad orders a topic's sessions by ascending attendee count,
// keeping creation order among equals.
func (s *Scheduler) sessionsByLoad(topic core.TopicID) []core.SessionID {
	ids := append([]core.SessionID(nil), s.topics[topic].Sessions...)
	sort.SliceStable(ids, func(i, j int) bool {
		return len(s.sessions[ids[i]].Attendees) < len(s.sessions[ids[j]].Attendees)
	})
	return ids
}

// bookedIn reports whether the attendee holds an assignment in the time slot.
func (s *Scheduler) bookedIn(att *core.Attendee, slot core.TimeSlotID) bool {
	for _, p := range att.Preferences {
		if p.Assignment != nil && s.sessions[p.Assignment.Session].TimeSlot == slot {
			return true
		}
	}
	return false
}
