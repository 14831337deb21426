package core

// Assignment binds a preference to a session. Immutable assignments are only
// removed under an explicit forced override.
type Assignment struct {
	Session   SessionID `json:"session"`
	Immutable bool      `json:"immutable"`
}

// Preference is an attendee's ranked desire for a topic. The rank is the
// preference's index in Attendee.Preferences.
type Preference struct {
	Topic      TopicID     `json:"topic"`
	Assignment *Assignment `json:"assignment,omitempty"`
}

// Assigned reports whether the preference currently holds an assignment.
func (p Preference) Assigned() bool { return p.Assignment != nil }

// Attendee is an event participant identified by (Organization, Name).
//
// Contract:
//   - Preferences are fixed at creation; only their Assignment changes
//   - Rank 0 is the most preferred topic
//   - Score, NumAssignments and MaxAssignedPreference are derived on demand
type Attendee struct {
	ID           AttendeeID   `json:"id"`
	Name         string       `json:"name"`
	Organization string       `json:"organization"`
	Preferences  []Preference `json:"preferences"`
}

// Key returns the identity string "{organization} - {name}".
func (a *Attendee) Key() string { return AttendeeKey(a.Organization, a.Name) }

// String implements fmt.Stringer.
func (a *Attendee) String() string { return a.Key() }

// NumAssignments returns how many preferences are currently assigned.
func (a *Attendee) NumAssignments() int {
	n := 0
	for _, p := range a.Preferences {
		if p.Assigned() {
			n++
		}
	}
	return n
}

// Score is the sum of the ranks of all assigned preferences. Lower is better.
func (a *Attendee) Score() int {
	score := 0
	for i, p := range a.Preferences {
		if p.Assigned() {
			score += i
		}
	}
	return score
}

// MaxAssignedPreference returns the rank of the worst assigned preference.
// The boolean is false when nothing is assigned.
func (a *Attendee) MaxAssignedPreference() (int, bool) {
	for i := len(a.Preferences) - 1; i >= 0; i-- {
		if a.Preferences[i].Assigned() {
			return i, true
		}
	}
	return 0, false
}

// PreferenceFor returns the rank of the preference for topic.
func (a *Attendee) PreferenceFor(topic TopicID) (int, bool) {
	for i, p := range a.Preferences {
		if p.Topic == topic {
			return i, true
		}
	}
	return 0, false
}

// AssignmentFor returns the rank of the preference assigned to session.
func (a *Attendee) AssignmentFor(session SessionID) (int, bool) {
	for i, p := range a.Preferences {
		if p.Assignment != nil && p.Assignment.Session == session {
			return i, true
		}
	}
	return 0, false
}

// Clone creates a deep copy of the attendee, including assignments.
func (a *Attendee) Clone() Attendee {
	c := *a
	c.Preferences = make([]Preference, len(a.Preferences))
	for i, p := range a.Preferences {
		c.Preferences[i] = Preference{Topic: p.Topic}
		if p.Assignment != nil {
			as := *p.Assignment
			c.Preferences[i].Assignment = &as
		}
	}
	return c
}
