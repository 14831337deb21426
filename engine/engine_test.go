package engine_test

import (
	"testing"

	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/engine"
	"github.com/hupe1980/slotmatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, b *testutil.FixtureBuilder) *engine.Scheduler {
	t.Helper()
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func attendeeID(t *testing.T, s *engine.Scheduler, org, name string) core.AttendeeID {
	t.Helper()
	id, err := s.AttendeeByName(org, name)
	require.NoError(t, err)
	return id
}

func topicID(t *testing.T, s *engine.Scheduler, name string) core.TopicID {
	t.Helper()
	id, err := s.TopicByName(name)
	require.NoError(t, err)
	return id
}

// sessionOf returns the session of the topic in the (single) given slot.
func sessionOf(t *testing.T, s *engine.Scheduler, topic, slot string) core.SessionID {
	t.Helper()
	tp, err := s.Topic(topicID(t, s, topic))
	require.NoError(t, err)
	slotID, err := s.TimeSlotByName(slot)
	require.NoError(t, err)
	for _, sid := range tp.Sessions {
		se, err := s.Session(sid)
		require.NoError(t, err)
		if se.TimeSlot == slotID {
			return sid
		}
	}
	t.Fatalf("topic %s has no session in %s", topic, slot)
	return 0
}

// assignedTopics lists the topic names an attendee is assigned to, in rank order.
func assignedTopics(t *testing.T, s *engine.Scheduler, id core.AttendeeID) []string {
	t.Helper()
	a, err := s.Attendee(id)
	require.NoError(t, err)
	var out []string
	for _, p := range a.Preferences {
		if p.Assigned() {
			tp, err := s.Topic(p.Topic)
			require.NoError(t, err)
			out = append(out, tp.Name)
		}
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	s := engine.New()
	assert.NotNil(t, s)
	assert.Equal(t, engine.DefaultConfig, s.Config())
	assert.NotNil(t, s.Callbacks())
	assert.Equal(t, 0, s.NumTimeSlots())
	assert.Equal(t, 0, s.CheckpointDepth())
}

func TestNew_NilLoggerFallsBack(t *testing.T) {
	s := engine.New(func(o *engine.Options) { o.Logger = nil })
	_, err := s.AddTimeSlot("9:00")
	require.NoError(t, err)
	assert.NoError(t, s.Schedule())
}

func TestAddTimeSlot(t *testing.T) {
	s := engine.New()
	id, err := s.AddTimeSlot("9:00")
	require.NoError(t, err)
	assert.Equal(t, core.TimeSlotID(0), id)

	_, err = s.AddTimeSlot("9:00")
	assert.ErrorIs(t, err, core.ErrDuplicateEntity)

	_, err = s.AddTimeSlot("  ")
	assert.ErrorIs(t, err, core.ErrInvalidRequest)

	require.NoError(t, s.AddTimeSlots("10:00", "11:00"))
	assert.Equal(t, 3, s.NumTimeSlots())
	assert.ErrorIs(t, s.AddTimeSlots("12:00", "10:00"), core.ErrDuplicateEntity)
	assert.Equal(t, 4, s.NumTimeSlots())
}

func TestAddTopic(t *testing.T) {
	s := engine.New()
	require.NoError(t, s.AddTimeSlots("9:00", "10:00"))

	id, err := s.AddTopic("X", testutil.Slot("9:00", 2), testutil.Slot("10:00", 3))
	require.NoError(t, err)

	tp, err := s.Topic(id)
	require.NoError(t, err)
	assert.Equal(t, "X", tp.Name)
	require.Len(t, tp.Sessions, 2)

	capacity, err := s.SessionCapacity(tp.Sessions[1])
	require.NoError(t, err)
	assert.Equal(t, 3, capacity)

	name, err := s.SessionName(tp.Sessions[0])
	require.NoError(t, err)
	assert.Equal(t, "9:00 - X", name)

	slot, err := s.TimeSlot(0)
	require.NoError(t, err)
	assert.Equal(t, []core.SessionID{tp.Sessions[0]}, slot.Sessions)
}

func TestAddTopic_Errors(t *testing.T) {
	s := engine.New()
	require.NoError(t, s.AddTimeSlots("9:00"))
	_, err := s.AddTopic("X", testutil.Slot("9:00", 1))
	require.NoError(t, err)

	tests := []struct {
		name     string
		topic    string
		sessions []engine.SessionSpec
		want     error
	}{
		{"duplicate topic", "X", nil, core.ErrDuplicateEntity},
		{"unknown slot", "Y", []engine.SessionSpec{testutil.Slot("8:00", 1)}, core.ErrUnknownReference},
		{"duplicate slot", "Y", []engine.SessionSpec{testutil.Slot("9:00", 1), testutil.Slot("9:00", 2)}, core.ErrDuplicateEntity},
		{"negative capacity", "Y", []engine.SessionSpec{testutil.Slot("9:00", -1)}, core.ErrInvalidRequest},
		{"empty name", "", nil, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTopic(tt.topic, tt.sessions...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Failed additions register nothing.
	assert.Len(t, s.Topics(), 1)
	assert.Len(t, s.Sessions(), 1)
	slot, err := s.TimeSlot(0)
	require.NoError(t, err)
	assert.Len(t, slot.Sessions, 1)
}

func TestAddAttendee(t *testing.T) {
	s := mustBuild(t, testutil.NewFixtureBuilder().
		TimeSlots("9:00").
		Topic("X", testutil.Slot("9:00", 1)).
		Topic("Y", testutil.Slot("9:00", 1)))

	id, err := s.AddAttendee("Jane", "Acme", "Y", "X")
	require.NoError(t, err)

	a, err := s.Attendee(id)
	require.NoError(t, err)
	assert.Equal(t, "Acme - Jane", a.Key())
	require.Len(t, a.Preferences, 2)
	assert.Equal(t, topicID(t, s, "Y"), a.Preferences[0].Topic)

	got, err := s.AttendeeByKey("Acme - Jane")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.AddAttendee("Jane", "Acme", "X")
	assert.ErrorIs(t, err, core.ErrDuplicateEntity)

	_, err = s.AddAttendee("Jane", "Other", "Z")
	assert.ErrorIs(t, err, core.ErrUnknownReference)

	_, err = s.AddAttendee("Jim", "Acme", "X", "X")
	assert.ErrorIs(t, err, core.ErrDuplicateEntity)

	_, err = s.AttendeeByKey("Nobody")
	assert.ErrorIs(t, err, core.ErrUnknownReference)

	// Same name in another organization is a different attendee.
	_, err = s.AddAttendee("Jane", "Other", "X")
	assert.NoError(t, err)
}

func TestAccessors_UnknownIDs(t *testing.T) {
	s := engine.New()
	_, err := s.Attendee(0)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.Session(-1)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.Topic(3)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.TimeSlot(0)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.Score(0)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.SessionAttendees(0)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.TopicByName("X")
	assert.ErrorIs(t, err, core.ErrUnknownReference)
	_, err = s.TimeSlotByName("9:00")
	assert.ErrorIs(t, err, core.ErrUnknownReference)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	s := mustBuild(t, testutil.NewFixtureBuilder().
		TimeSlots("9:00").
		Topic("X", testutil.Slot("9:00", 2)).
		Attendee("A", "Org", "X"))
	a := attendeeID(t, s, "Org", "A")
	ok, err := s.Assign(a)
	require.NoError(t, err)
	require.True(t, ok)

	cp, err := s.Attendee(a)
	require.NoError(t, err)
	cp.Preferences[0].Assignment.Immutable = true
	cp.Preferences[0].Assignment = nil

	sessions := s.Sessions()
	sessions[0].Attendees[0] = 99

	n, err := s.NumAssignments(a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	ids, err := s.SessionAttendees(0)
	require.NoError(t, err)
	assert.Equal(t, []core.AttendeeID{a}, ids)
	assert.NoError(t, s.UnassignSession(a, 0, false), "assignment must still be mutable")
}
