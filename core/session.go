package core

// TimeSlot is a named period during which sessions occur. Its session list
// only grows while topics are being added.
type TimeSlot struct {
	ID       TimeSlotID  `json:"id"`
	Name     string      `json:"name"`
	Sessions []SessionID `json:"sessions"`
}

// Topic is a subject offered in one session per time slot it uses.
type Topic struct {
	ID       TopicID     `json:"id"`
	Name     string      `json:"name"`
	Sessions []SessionID `json:"sessions"`
}

// Session is a topic held in a time slot. Attendees never exceeds Capacity.
type Session struct {
	ID        SessionID    `json:"id"`
	Topic     TopicID      `json:"topic"`
	TimeSlot  TimeSlotID   `json:"time_slot"`
	Capacity  int          `json:"capacity"`
	Attendees []AttendeeID `json:"attendees"`
}

// Full reports whether the session has no remaining seats.
func (s *Session) Full() bool { return len(s.Attendees) >= s.Capacity }

// Has reports whether the attendee currently holds a seat in the session.
func (s *Session) Has(a AttendeeID) bool {
	for _, id := range s.Attendees {
		if id == a {
			return true
		}
	}
	return false
}

// Clone returns a copy of the session safe for independent mutation.
func (s *Session) Clone() Session {
	c := *s
	c.Attendees = append([]AttendeeID(nil), s.Attendees...)
	return c
}

// Clone returns a copy of the time slot safe for independent mutation.
func (t *TimeSlot) Clone() TimeSlot {
	c := *t
	c.Sessions = append([]SessionID(nil), t.Sessions...)
	return c
}

// Clone returns a copy of the topic safe for independent mutation.
func (t *Topic) Clone() Topic {
	c := *t
	c.Sessions = append([]SessionID(nil), t.Sessions...)
	return c
}
