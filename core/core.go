package core

import "fmt"

// TimeSlotID indexes a TimeSlot in its scheduler.
type TimeSlotID int

// TopicID indexes a Topic in its scheduler.
type TopicID int

// SessionID indexes a Session in its scheduler.
type SessionID int

// AttendeeID indexes an Attendee in its scheduler.
type AttendeeID int

// NoTopic marks an absent topic reference. TopicID 0 is a real topic, so the
// sentinel is negative.
const NoTopic TopicID = -1

// AttendeeKey renders the identity string of an attendee. It is used both for
// uniqueness checks and as the final tie-breaker in every ordering.
func AttendeeKey(organization, name string) string {
	return fmt.Sprintf("%s - %s", organization, name)
}

// SessionName renders the display name of a session, "{time slot} - {topic}".
func SessionName(timeSlot, topic string) string {
	return fmt.Sprintf("%s - %s", timeSlot, topic)
}
