package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/slotmatch/core"
)

// phaseLogger is implemented by loggers with dedicated phase reporting, such
// as logging.SchedulerLogger.
type phaseLogger interface {
	LogPhase(phase string, passes int, dur time.Duration, err error)
}

// Schedule assigns sessions to every attendee on a best-effort basis.
//
// The run has three phases:
//
//   - Time-slot phase: one pass per time slot. Before each pass attendees are
//     ordered by the rank sum of their top remaining unassigned preferences,
//     then by a fairness counter that favors attendees served late in earlier
//     passes, then by identity. Each attendee whose schedule is not full gets
//     one Assign call.
//   - Fill phase: while some attendee holds fewer than min(time slots,
//     preferences) assignments, every under-filled attendee gets a Swap. A
//     pass without a successful swap fails with core.ErrScheduleFailure.
//   - Improve phase: for each cutoff rank from the longest preference list
//     down to the number of time slots, attendees whose worst assignment is
//     at or beyond the cutoff get a Swap. A cutoff without any successful
//     swap ends the phase.
//
// The result is not guaranteed to be optimal. On failure the assignments made
// so far remain in place and satisfy every invariant.
func (s *Scheduler) Schedule() error {
	order := make([]*core.Attendee, len(s.attendees))
	for i := range s.attendees {
		order[i] = &s.attendees[i]
	}

	if err := s.runPhase(PhaseTimeSlot, func() (int, error) { return s.timeSlotPhase(order) }); err != nil {
		return err
	}
	if err := s.runPhase(PhaseFill, func() (int, error) { return s.fillPhase(order) }); err != nil {
		return err
	}
	if !s.config.ImprovePhase {
		return nil
	}
	return s.runPhase(PhaseImprove, func() (int, error) { return s.improvePhase(order) })
}

func (s *Scheduler) runPhase(phase string, run func() (int, error)) error {
	if err := s.callbacks.ExecuteCallbacks(CallbackBeforePhase, &CallbackContext{Phase: phase}); err != nil {
		return err
	}

	start := time.Now()
	passes, err := run()
	s.logPhase(phase, passes, time.Since(start), err)

	if cbErr := s.callbacks.ExecuteCallbacks(CallbackAfterPhase, &CallbackContext{Phase: phase, Err: err}); cbErr != nil && err == nil {
		return cbErr
	}
	return err
}

func (s *Scheduler) logPhase(phase string, passes int, dur time.Duration, err error) {
	if pl, ok := s.logger.(phaseLogger); ok {
		pl.LogPhase(phase, passes, dur, err)
		return
	}
	if err != nil {
		s.logger.Error("Scheduling phase failed", "phase", phase, "passes", passes, "duration", dur, "error", err)
		return
	}
	s.logger.Info("Scheduling phase completed", "phase", phase, "passes", passes, "duration", dur)
}

func (s *Scheduler) timeSlotPhase(order []*core.Attendee) (int, error) {
	n := len(s.timeSlots)
	fairness := make(map[core.AttendeeID]int, len(order))

	for m := 0; m < n; m++ {
		remaining := n - m
		ranks := make(map[core.AttendeeID]int, len(order))
		for _, a := range order {
			ranks[a.ID] = unassignedRank(a, remaining)
		}
		sort.SliceStable(order, func(i, j int) bool {
			a, b := order[i], order[j]
			if ranks[a.ID] != ranks[b.ID] {
				return ranks[a.ID] < ranks[b.ID]
			}
			if fairness[a.ID] != fairness[b.ID] {
				return fairness[a.ID] < fairness[b.ID]
			}
			return s.keys[a.ID] < s.keys[b.ID]
		})

		for i, a := range order {
			fairness[a.ID] -= i
			assigned := a.NumAssignments()
			if assigned == n {
				// Already full, presumably because of manual assignments.
				continue
			}
			if assigned == len(a.Preferences) {
				continue
			}
			if _, err := s.assign(a, core.NoTopic, false); err != nil {
				return m + 1, err
			}
		}
	}
	return n, nil
}

func (s *Scheduler) fillPhase(order []*core.Attendee) (int, error) {
	n := len(s.timeSlots)
	wanted := func(a *core.Attendee) int { return min(n, len(a.Preferences)) }

	passes := 0
	for {
		underfilled := 0
		for _, a := range order {
			if a.NumAssignments() < wanted(a) {
				underfilled++
			}
		}
		if underfilled == 0 {
			return passes, nil
		}
		passes++

		sort.SliceStable(order, func(i, j int) bool {
			a, b := order[i], order[j]
			if na, nb := a.NumAssignments(), b.NumAssignments(); na != nb {
				return na < nb
			}
			return s.keys[a.ID] < s.keys[b.ID]
		})

		changed := false
		for _, a := range order {
			if a.NumAssignments() >= wanted(a) {
				continue
			}
			ok, err := s.swap(a)
			if err != nil {
				return passes, err
			}
			if err := s.notifySwap(PhaseFill, passes, a, ok); err != nil {
				return passes, err
			}
			changed = changed || ok
		}
		if !changed {
			return passes, fmt.Errorf("%d attendees still under-filled after pass %d: %w", underfilled, passes, core.ErrScheduleFailure)
		}
	}
}

func (s *Scheduler) improvePhase(order []*core.Attendee) (int, error) {
	n := len(s.timeSlots)
	maxPreferences := 0
	for _, a := range order {
		maxPreferences = max(maxPreferences, len(a.Preferences))
	}

	passes := 0
	for cutoff := maxPreferences; cutoff >= n; cutoff-- {
		hit := false
		for _, a := range order {
			if worstRank(a) == cutoff {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		passes++

		sort.SliceStable(order, func(i, j int) bool {
			a, b := order[i], order[j]
			if wa, wb := worstRank(a), worstRank(b); wa != wb {
				return wa > wb
			}
			return s.keys[a.ID] < s.keys[b.ID]
		})

		changed := false
		for _, a := range order {
			if worstRank(a) < cutoff {
				continue
			}
			ok, err := s.swap(a)
			if err != nil {
				return passes, err
			}
			if err := s.notifySwap(PhaseImprove, passes, a, ok); err != nil {
				return passes, err
			}
			changed = changed || ok
		}
		if !changed {
			break
		}
	}
	return passes, nil
}

func (s *Scheduler) notifySwap(phase string, pass int, a *core.Attendee, swapped bool) error {
	return s.callbacks.ExecuteCallbacks(CallbackOnSwap, &CallbackContext{
		Phase:    phase,
		Pass:     pass,
		Attendee: s.keys[a.ID],
		Swapped:  swapped,
	})
}

// unassignedRank sums the ranks of the attendee's first `remaining`
// unassigned preferences. Attendees with little room left for unmet wishes
// get low values and go first.
func unassignedRank(a *core.Attendee, remaining int) int {
	sum, taken := 0, 0
	for i, p := range a.Preferences {
		if taken == remaining {
			break
		}
		if p.Assigned() {
			continue
		}
		sum += i
		taken++
	}
	return sum
}

// worstRank is MaxAssignedPreference with -1 for attendees without
// assignments.
func worstRank(a *core.Attendee) int {
	if rank, ok := a.MaxAssignedPreference(); ok {
		return rank
	}
	return -1
}
