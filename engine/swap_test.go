package engine_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/engine"
	"github.com/hupe1980/slotmatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapFixture: A wants P0 (no seats), X, Y; B wants X, Z. One seat each.
func swapFixture() *testutil.FixtureBuilder {
	return testutil.NewFixtureBuilder().
		TimeSlots("9:00").
		Topic("P0", testutil.Slot("9:00", 0)).
		Topic("X", testutil.Slot("9:00", 1)).
		Topic("Y", testutil.Slot("9:00", 1)).
		Topic("Z", testutil.Slot("9:00", 1)).
		Attendee("A", "Org", "P0", "X", "Y").
		Attendee("B", "Org", "X", "Z")
}

// snapshot captures the observable state with session rosters sorted, since
// a rollback restores membership but not necessarily roster order.
type snapshot struct {
	sessions  []core.Session
	attendees []core.Attendee
}

func take(s *engine.Scheduler) snapshot {
	sessions := s.Sessions()
	for i := range sessions {
		slices.Sort(sessions[i].Attendees)
	}
	return snapshot{sessions: sessions, attendees: s.Attendees()}
}

func TestSwap_FullScheduleImproves(t *testing.T) {
	s := mustBuild(t, swapFixture())
	a := attendeeID(t, s, "Org", "A")
	b := attendeeID(t, s, "Org", "B")
	require.NoError(t, s.AssignSession(a, sessionOf(t, s, "Y", "9:00"), false))
	require.NoError(t, s.AssignSession(b, sessionOf(t, s, "X", "9:00"), false))

	ok, err := s.Swap(a)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"X"}, assignedTopics(t, s, a))
	assert.Equal(t, []string{"Z"}, assignedTopics(t, s, b))
	ids, err := s.SessionAttendees(sessionOf(t, s, "Y", "9:00"))
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, s.Validate())
	assert.Equal(t, 0, s.CheckpointDepth())
}

func TestSwap_RejectedTradeLeavesStateUntouched(t *testing.T) {
	// A trading Y for X would leave B worse off than A.
	s := mustBuild(t, testutil.NewFixtureBuilder().
		TimeSlots("9:00").
		Topic("X", testutil.Slot("9:00", 1)).
		Topic("Y", testutil.Slot("9:00", 1)).
		Topic("Z", testutil.Slot("9:00", 1)).
		Attendee("A", "Org", "X", "Y").
		Attendee("B", "Org", "X", "Z"))
	a := attendeeID(t, s, "Org", "A")
	b := attendeeID(t, s, "Org", "B")
	require.NoError(t, s.AssignSession(a, sessionOf(t, s, "Y", "9:00"), false))
	require.NoError(t, s.AssignSession(b, sessionOf(t, s, "X", "9:00"), false))

	before := take(s)
	ok, err := s.Swap(a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, take(s))
	assert.Equal(t, 0, s.CheckpointDepth())
}

func TestSwap_SameRankTradeRejected(t *testing.T) {
	// A gives up Y only to land on Y again, so its score does not improve.
	s := mustBuild(t, testutil.NewFixtureBuilder().
		TimeSlots("9:00").
		Topic("X", testutil.Slot("9:00", 1)).
		Topic("Y", testutil.Slot("9:00", 2)).
		Attendee("A", "Org", "X", "Y").
		Attendee("B", "Org", "Y").
		Attendee("C", "Org", "X"))
	a := attendeeID(t, s, "Org", "A")
	require.NoError(t, s.AssignSession(a, sessionOf(t, s, "Y", "9:00"), false))
	require.NoError(t, s.AssignSession(attendeeID(t, s, "Org", "B"), sessionOf(t, s, "Y", "9:00"), false))
	require.NoError(t, s.AssignSession(attendeeID(t, s, "Org", "C"), sessionOf(t, s, "X", "9:00"), false))

	before := take(s)
	ok, err := s.Swap(a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, take(s))
	assert.Equal(t, 0, s.CheckpointDepth())
}

func TestSwap_ImmutableWorstAssignment(t *testing.T) {
	s := mustBuild(t, swapFixture().Manual("Org", "A", "Y"))
	a := attendeeID(t, s, "Org", "A")
	require.NoError(t, s.AssignSession(attendeeID(t, s, "Org", "B"), sessionOf(t, s, "X", "9:00"), false))

	before := take(s)
	ok, err := s.Swap(a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, take(s))
}

func TestSwap_ImmutableDonationSkipped(t *testing.T) {
	s := mustBuild(t, testutil.NewFixtureBuilder().
		TimeSlots("9:00").
		Topic("X", testutil.Slot("9:00", 1)).
		Topic("Z", testutil.Slot("9:00", 1)).
		Attendee("Alice", "Org", "X", "Z").
		Attendee("Bob", "Org", "X").
		Manual("Org", "Alice", "X"))

	ok, err := s.Swap(attendeeID(t, s, "Org", "Bob"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"X"}, assignedTopics(t, s, attendeeID(t, s, "Org", "Alice")))
}

func TestSwap_UnknownAttendee(t *testing.T) {
	s := mustBuild(t, swapFixture())
	_, err := s.Swap(99)
	assert.ErrorIs(t, err, core.ErrUnknownReference)
}

func TestCheckpoint_RollbackRestoresState(t *testing.T) {
	s := mustBuild(t, testutil.Generate(3, testutil.GeneratorConfig{
		TimeSlots: 3, Topics: 8, Attendees: 25, MaxChoices: 5, MaxCapacity: 6,
	}))
	r := rand.New(rand.NewPCG(3, 11))
	attendees := s.Attendees()

	// Start from a partial schedule so the log also has to undo unassigns.
	for _, a := range attendees[:10] {
		_, err := s.Assign(a.ID)
		require.NoError(t, err)
	}
	before := take(s)

	name := s.Checkpoint("")
	assert.NotEmpty(t, name)
	for range 200 {
		a := attendees[r.IntN(len(attendees))]
		if r.IntN(3) == 0 {
			cur, err := s.Attendee(a.ID)
			require.NoError(t, err)
			for _, p := range cur.Preferences {
				if p.Assigned() {
					require.NoError(t, s.UnassignSession(a.ID, p.Assignment.Session, false))
					break
				}
			}
			continue
		}
		_, err := s.Assign(a.ID)
		require.NoError(t, err)
	}
	require.NoError(t, s.Validate())

	require.NoError(t, s.Rollback(name))
	assert.Equal(t, before, take(s))
	assert.Equal(t, 0, s.CheckpointDepth())
}

func TestCheckpoint_CommitFoldsIntoParent(t *testing.T) {
	s := mustBuild(t, testutil.NewFixtureBuilder().
		TimeSlots("9:00", "10:00").
		Topic("X", testutil.Slot("9:00", 5)).
		Topic("Y", testutil.Slot("10:00", 5)).
		Attendee("A", "Org", "X", "Y"))
	a := attendeeID(t, s, "Org", "A")

	outer := s.Checkpoint("outer")
	require.NoError(t, s.AssignSession(a, sessionOf(t, s, "X", "9:00"), false))
	inner := s.Checkpoint("inner")
	require.NoError(t, s.AssignSession(a, sessionOf(t, s, "Y", "10:00"), false))
	require.NoError(t, s.Commit(inner))
	assert.Equal(t, 1, s.CheckpointDepth())
	assert.Equal(t, []string{"X", "Y"}, assignedTopics(t, s, a))

	require.NoError(t, s.Rollback(outer))
	assert.Empty(t, assignedTopics(t, s, a))
}

func TestCheckpoint_Mismatch(t *testing.T) {
	s := engine.New()
	assert.ErrorIs(t, s.Commit("nope"), core.ErrCheckpointMismatch)
	assert.ErrorIs(t, s.Rollback("nope"), core.ErrCheckpointMismatch)

	s.Checkpoint("a")
	s.Checkpoint("b")
	assert.ErrorIs(t, s.Commit("a"), core.ErrCheckpointMismatch)
	assert.Equal(t, 2, s.CheckpointDepth())
	require.NoError(t, s.Commit("b"))
	require.NoError(t, s.Commit("a"))
	assert.Equal(t, 0, s.CheckpointDepth())
}

func TestCheckpoint_RollbackRestoresImmutability(t *testing.T) {
	s := mustBuild(t, swapFixture().Manual("Org", "B", "X"))
	b := attendeeID(t, s, "Org", "B")
	x := sessionOf(t, s, "X", "9:00")

	name := s.Checkpoint("")
	require.NoError(t, s.UnassignSession(b, x, true))
	require.NoError(t, s.Rollback(name))

	att, err := s.Attendee(b)
	require.NoError(t, err)
	require.True(t, att.Preferences[0].Assigned())
	assert.True(t, att.Preferences[0].Assignment.Immutable)
}
