package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/engine"
)

// Dump returns a plain-text listing of the scheduler: each attendee with its
// preferences, assigned ones shown as their session, followed by each topic
// with the load of its sessions.
func Dump(s *engine.Scheduler) string {
	var b strings.Builder
	timeSlots, topics := s.TimeSlots(), s.Topics()
	sessions := s.Sessions()

	sessionName := func(id core.SessionID) string {
		se := sessions[id]
		return core.SessionName(timeSlots[se.TimeSlot].Name, topics[se.Topic].Name)
	}

	b.WriteString("Attendees:\n\n")
	for i, a := range s.Attendees() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.Key() + "\n")
		for _, p := range a.Preferences {
			if p.Assignment == nil {
				fmt.Fprintf(&b, "  %s\n", topics[p.Topic].Name)
				continue
			}
			suffix := ""
			if p.Assignment.Immutable {
				suffix = " (immutable)"
			}
			fmt.Fprintf(&b, "  SESSION %s%s\n", sessionName(p.Assignment.Session), suffix)
		}
	}

	b.WriteString("\nTopics:\n\n")
	for i, t := range topics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Name + "\n")
		for _, id := range t.Sessions {
			se := sessions[id]
			fmt.Fprintf(&b, "  Time slot %s, # of attendees %d, capacity %d\n",
				timeSlots[se.TimeSlot].Name, len(se.Attendees), se.Capacity)
		}
	}
	return b.String()
}

// Summary aggregates the quality of a schedule.
type Summary struct {
	Attendees int `yaml:"attendees"`
	// Filled counts attendees holding min(time slots, preferences)
	// assignments.
	Filled     int `yaml:"filled"`
	TotalScore int `yaml:"total_score"`
	// WorstRank is the highest assigned rank over all attendees, -1 if
	// nothing is assigned.
	WorstRank int `yaml:"worst_rank"`
	// RankHits[i] counts assignments made at preference rank i.
	RankHits    []int   `yaml:"rank_hits"`
	Seats       int     `yaml:"seats"`
	SeatsUsed   int     `yaml:"seats_used"`
	Utilization float64 `yaml:"utilization"`
}

// Summarize computes the Summary of the scheduler's current assignments.
func Summarize(s *engine.Scheduler) Summary {
	n := s.NumTimeSlots()
	sum := Summary{WorstRank: -1}

	for _, a := range s.Attendees() {
		sum.Attendees++
		if a.NumAssignments() >= min(n, len(a.Preferences)) {
			sum.Filled++
		}
		sum.TotalScore += a.Score()
		for rank, p := range a.Preferences {
			if !p.Assigned() {
				continue
			}
			for len(sum.RankHits) <= rank {
				sum.RankHits = append(sum.RankHits, 0)
			}
			sum.RankHits[rank]++
			sum.WorstRank = max(sum.WorstRank, rank)
		}
	}

	for _, se := range s.Sessions() {
		sum.Seats += se.Capacity
		sum.SeatsUsed += len(se.Attendees)
	}
	if sum.Seats > 0 {
		sum.Utilization = float64(sum.SeatsUsed) / float64(sum.Seats)
	}
	return sum
}

// Fingerprint returns a stable hash of who is assigned where. Two schedules
// of the same event have equal fingerprints exactly when every attendee holds
// the same sessions with the same immutability.
func Fingerprint(s *engine.Scheduler) string {
	var b strings.Builder
	for _, a := range s.Attendees() {
		b.WriteString(a.Key())
		for _, p := range a.Preferences {
			b.WriteByte('|')
			if p.Assignment == nil {
				b.WriteByte('-')
				continue
			}
			fmt.Fprintf(&b, "%d", p.Assignment.Session)
			if p.Assignment.Immutable {
				b.WriteByte('!')
			}
		}
		b.WriteByte('\n')
	}
	return fmt.Sprintf("%016x", xxh3.HashString(b.String()))
}

// Result is the exported view of a schedule.
type Result struct {
	Fingerprint string           `yaml:"fingerprint"`
	Summary     Summary          `yaml:"summary"`
	Attendees   []AttendeeResult `yaml:"attendees"`
	Sessions    []SessionResult  `yaml:"sessions"`
}

// AttendeeResult lists one attendee's assignments in preference order.
type AttendeeResult struct {
	Name         string             `yaml:"name"`
	Organization string             `yaml:"organization"`
	Score        int                `yaml:"score"`
	Assignments  []AssignmentResult `yaml:"assignments"`
	Unassigned   []string           `yaml:"unassigned,omitempty"`
}

// AssignmentResult is a single placed preference.
type AssignmentResult struct {
	TimeSlot  string `yaml:"time_slot"`
	Topic     string `yaml:"topic"`
	Rank      int    `yaml:"rank"`
	Immutable bool   `yaml:"immutable,omitempty"`
}

// SessionResult is the roster of one session.
type SessionResult struct {
	TimeSlot  string   `yaml:"time_slot"`
	Topic     string   `yaml:"topic"`
	Capacity  int      `yaml:"capacity"`
	Attendees []string `yaml:"attendees"`
}

// Export builds the Result for the scheduler's current assignments.
// Attendees and sessions appear in creation order; session rosters are in
// seating order.
func Export(s *engine.Scheduler) Result {
	timeSlots, topics := s.TimeSlots(), s.Topics()
	sessions := s.Sessions()
	attendees := s.Attendees()

	res := Result{Fingerprint: Fingerprint(s), Summary: Summarize(s)}
	for _, a := range attendees {
		ar := AttendeeResult{
			Name:         a.Name,
			Organization: a.Organization,
			Score:        a.Score(),
			Assignments:  []AssignmentResult{},
		}
		for rank, p := range a.Preferences {
			if p.Assignment == nil {
				ar.Unassigned = append(ar.Unassigned, topics[p.Topic].Name)
				continue
			}
			se := sessions[p.Assignment.Session]
			ar.Assignments = append(ar.Assignments, AssignmentResult{
				TimeSlot:  timeSlots[se.TimeSlot].Name,
				Topic:     topics[se.Topic].Name,
				Rank:      rank,
				Immutable: p.Assignment.Immutable,
			})
		}
		res.Attendees = append(res.Attendees, ar)
	}

	for _, se := range sessions {
		sr := SessionResult{
			TimeSlot:  timeSlots[se.TimeSlot].Name,
			Topic:     topics[se.Topic].Name,
			Capacity:  se.Capacity,
			Attendees: make([]string, 0, len(se.Attendees)),
		}
		for _, id := range se.Attendees {
			sr.Attendees = append(sr.Attendees, attendees[id].Key())
		}
		res.Sessions = append(res.Sessions, sr)
	}
	return res
}

// WriteYAML encodes Export(s) to w.
func WriteYAML(w io.Writer, s *engine.Scheduler) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Export(s)); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return enc.Close()
}
