package engine

import (
	"errors"

	"github.com/hupe1980/slotmatch/core"
)

type swapLogger interface {
	LogSwap(attendee, donor string, oldScore, newScore int, success bool)
}

// donation is a donor's assignment considered for a swap.
type donation struct {
	session   core.SessionID
	immutable bool
}

// Swap tries to improve the schedule of one attendee by taking an assignment
// from another attendee (the donor) and re-placing both.
//
// If the attendee's schedule has an open time slot, any trade that lets both
// the attendee and the donor be assigned again is accepted. If the schedule is
// full, the attendee's worst assignment is released first and a trade is only
// accepted when the attendee's new score is strictly lower than before and
// the donor's new score does not exceed the attendee's new score. A full
// schedule whose worst assignment is immutable is never swapped.
//
// Every trial runs under a checkpoint. A failed Swap leaves the scheduler
// exactly as it found it.
func (s *Scheduler) Swap(a core.AttendeeID) (bool, error) {
	att, err := s.attendee(a)
	if err != nil {
		return false, err
	}
	return s.swap(att)
}

func (s *Scheduler) swap(target *core.Attendee) (bool, error) {
	var (
		outer    string
		oldScore int
		bounded  bool
	)

	if n := len(s.timeSlots); n > 0 && target.NumAssignments() == n {
		worst, _ := target.MaxAssignedPreference()
		assignment := target.Preferences[worst].Assignment
		if assignment.Immutable {
			return false, nil
		}
		oldScore, bounded = target.Score(), true
		outer = s.log.Checkpoint("")
		if err := s.UnassignSession(target.ID, assignment.Session, false); err != nil {
			return false, s.abort(err, outer)
		}
	}

	for _, donorID := range s.byKey {
		if donorID == target.ID {
			continue
		}
		donor := &s.attendees[donorID]
		for _, d := range donations(donor) {
			if d.immutable || !s.wants(target, d.session) {
				continue
			}

			inner := s.log.Checkpoint("")
			ok, err := s.trade(target, donor, d.session, oldScore, bounded)
			if err != nil {
				return false, s.abort(err, inner, outer)
			}
			if !ok {
				if err := s.log.Rollback(inner, s.applier()); err != nil {
					return false, s.abort(err, outer)
				}
				continue
			}

			if err := s.log.Commit(inner); err != nil {
				return false, s.abort(err, outer)
			}
			if outer != "" {
				if err := s.log.Commit(outer); err != nil {
					return false, err
				}
			}
			s.logSwap(target, donor, oldScore, true)
			return true, nil
		}
	}

	if outer != "" {
		if err := s.log.Rollback(outer, s.applier()); err != nil {
			return false, err
		}
	}
	s.logSwap(target, nil, oldScore, false)
	return false, nil
}

// trade releases the donor's session, then re-places the target and the donor
// from the top of their own preference lists.
func (s *Scheduler) trade(target, donor *core.Attendee, session core.SessionID, oldScore int, bounded bool) (bool, error) {
	if err := s.UnassignSession(donor.ID, session, false); err != nil {
		return false, err
	}
	if ok, err := s.assign(target, core.NoTopic, false); err != nil || !ok {
		return false, err
	}
	if ok, err := s.assign(donor, core.NoTopic, false); err != nil || !ok {
		return false, err
	}
	if !bounded {
		return true, nil
	}
	// Ties at the boundary are rejected on purpose; changing the comparison
	// alters convergence of the improve phase.
	newScore := target.Score()
	return newScore < oldScore && donor.Score() <= newScore, nil
}

// wants reports whether the target asked for the session's topic, is not yet
// attending it and has the session's time slot open.
func (s *Scheduler) wants(target *core.Attendee, session core.SessionID) bool {
	se := &s.sessions[session]
	rank, ok := target.PreferenceFor(se.Topic)
	if !ok || target.Preferences[rank].Assigned() {
		return false
	}
	return !s.bookedIn(target, se.TimeSlot)
}

// donations snapshots the donor's assignments from worst to best rank.
func donations(donor *core.Attendee) []donation {
	var out []donation
	for i := len(donor.Preferences) - 1; i >= 0; i-- {
		if as := donor.Preferences[i].Assignment; as != nil {
			out = append(out, donation{session: as.Session, immutable: as.Immutable})
		}
	}
	return out
}

// abort rolls back the named checkpoints innermost first and joins any
// rollback failure with cause.
func (s *Scheduler) abort(cause error, names ...string) error {
	errs := []error{cause}
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := s.log.Rollback(name, s.applier()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) logSwap(target, donor *core.Attendee, oldScore int, success bool) {
	donorKey := ""
	if donor != nil {
		donorKey = s.keys[donor.ID]
	}
	if sl, ok := s.logger.(swapLogger); ok {
		sl.LogSwap(s.keys[target.ID], donorKey, oldScore, target.Score(), success)
		return
	}
	s.logger.Debug("Swap attempted", "attendee", s.keys[target.ID], "donor", donorKey, "success", success)
}
