package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/slotmatch/core"
	"github.com/hupe1980/slotmatch/logging"
	"github.com/hupe1980/slotmatch/txlog"
)

// Config defines tuning parameters for the Scheduler's algorithm.
//
// Example:
//
//	cfg := Config{
//	    ImprovePhase: false,
//	}
type Config struct {
	// ImprovePhase enables the third scheduling phase, which swaps
	// assignments to lower the worst assigned preference ranks once every
	// schedule is filled. Disabling it keeps the fill phase result.
	ImprovePhase bool
}

// DefaultConfig runs all three scheduling phases.
var DefaultConfig = Config{
	ImprovePhase: true,
}

// Options configures a Scheduler instance using the functional options pattern.
//
// Example:
//
//	s := New(func(o *Options) {
//	    o.Logger = logging.NewSlogLogger(logging.LogLevelDebug, "text", false)
//	})
type Options struct {
	// Config contains algorithm parameters. Defaults to DefaultConfig.
	Config Config

	// Logger receives phase and swap diagnostics.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger

	// Callbacks are invoked around scheduling phases and after each swap
	// attempt made by Schedule. May be nil.
	Callbacks *CallbackManager
}

// SessionSpec declares one session of a topic: the time slot it runs in and
// how many attendees it can seat.
type SessionSpec struct {
	TimeSlot string
	Capacity int
}

// Scheduler assigns attendees to topic sessions. See the package
// documentation for the operation groups it provides.
type Scheduler struct {
	config    Config
	logger    logging.Logger
	callbacks *CallbackManager

	timeSlots []core.TimeSlot
	topics    []core.Topic
	sessions  []core.Session
	attendees []core.Attendee

	timeSlotIndex map[string]core.TimeSlotID
	topicIndex    map[string]core.TopicID
	attendeeIndex map[string]core.AttendeeID

	// keys caches Attendee.Key by id; byKey lists attendee ids sorted by key.
	keys  []string
	byKey []core.AttendeeID

	log *txlog.Log
}

// New creates an empty Scheduler with optional overrides.
func New(optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}

	return &Scheduler{
		config:        opts.Config,
		logger:        opts.Logger,
		callbacks:     opts.Callbacks,
		timeSlotIndex: make(map[string]core.TimeSlotID),
		topicIndex:    make(map[string]core.TopicID),
		attendeeIndex: make(map[string]core.AttendeeID),
		log:           txlog.New(),
	}
}

// Config returns the configuration the scheduler was built with.
func (s *Scheduler) Config() Config { return s.config }

// Callbacks returns the callback manager used by Schedule.
func (s *Scheduler) Callbacks() *CallbackManager { return s.callbacks }

// AddTimeSlot registers a new time slot. Names must be unique.
func (s *Scheduler) AddTimeSlot(name string) (core.TimeSlotID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("time slot name is required: %w", core.ErrInvalidRequest)
	}
	if _, exists := s.timeSlotIndex[name]; exists {
		return 0, fmt.Errorf("attempt to add duplicate time slot %q: %w", name, core.ErrDuplicateEntity)
	}
	id := core.TimeSlotID(len(s.timeSlots))
	s.timeSlots = append(s.timeSlots, core.TimeSlot{ID: id, Name: name})
	s.timeSlotIndex[name] = id
	return id, nil
}

// AddTimeSlots registers several time slots in order. It stops at the first
// failure; slots added before it remain.
func (s *Scheduler) AddTimeSlots(names ...string) error {
	for _, name := range names {
		if _, err := s.AddTimeSlot(name); err != nil {
			return err
		}
	}
	return nil
}

// AddTopic registers a topic together with one session per listed time slot.
// The topic is added atomically: on error nothing is registered.
func (s *Scheduler) AddTopic(name string, sessions ...SessionSpec) (core.TopicID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("topic name is required: %w", core.ErrInvalidRequest)
	}
	if _, exists := s.topicIndex[name]; exists {
		return 0, fmt.Errorf("attempt to add duplicate topic %q: %w", name, core.ErrDuplicateEntity)
	}

	slots := make([]core.TimeSlotID, len(sessions))
	seen := make(map[core.TimeSlotID]bool, len(sessions))
	for i, spec := range sessions {
		slot, ok := s.timeSlotIndex[spec.TimeSlot]
		if !ok {
			return 0, fmt.Errorf("topic %q: time slot %q: %w", name, spec.TimeSlot, core.ErrUnknownReference)
		}
		if seen[slot] {
			return 0, fmt.Errorf("duplicate time slot %q specified for topic %q: %w", spec.TimeSlot, name, core.ErrDuplicateEntity)
		}
		if spec.Capacity < 0 {
			return 0, fmt.Errorf("topic %q: negative capacity %d in time slot %q: %w", name, spec.Capacity, spec.TimeSlot, core.ErrInvalidRequest)
		}
		seen[slot] = true
		slots[i] = slot
	}

	id := core.TopicID(len(s.topics))
	topic := core.Topic{ID: id, Name: name}
	for i, slot := range slots {
		sid := core.SessionID(len(s.sessions))
		s.sessions = append(s.sessions, core.Session{
			ID:       sid,
			Topic:    id,
			TimeSlot: slot,
			Capacity: sessions[i].Capacity,
		})
		topic.Sessions = append(topic.Sessions, sid)
		s.timeSlots[slot].Sessions = append(s.timeSlots[slot].Sessions, sid)
	}
	s.topics = append(s.topics, topic)
	s.topicIndex[name] = id
	return id, nil
}

// AddAttendee registers an attendee with topics listed from most to least
// preferred. The (organization, name) pair must be unique and every topic
// must already exist.
func (s *Scheduler) AddAttendee(name, organization string, topics ...string) (core.AttendeeID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("attendee name is required: %w", core.ErrInvalidRequest)
	}
	key := core.AttendeeKey(organization, name)
	if _, exists := s.attendeeIndex[key]; exists {
		return 0, fmt.Errorf("attempt to add duplicate attendee %q: %w", key, core.ErrDuplicateEntity)
	}

	prefs := make([]core.Preference, len(topics))
	seen := make(map[core.TopicID]bool, len(topics))
	for i, t := range topics {
		tid, ok := s.topicIndex[t]
		if !ok {
			return 0, fmt.Errorf("attendee %q: topic %q: %w", key, t, core.ErrUnknownReference)
		}
		if seen[tid] {
			return 0, fmt.Errorf("attendee %q lists topic %q twice: %w", key, t, core.ErrDuplicateEntity)
		}
		seen[tid] = true
		prefs[i] = core.Preference{Topic: tid}
	}

	id := core.AttendeeID(len(s.attendees))
	s.attendees = append(s.attendees, core.Attendee{
		ID:           id,
		Name:         name,
		Organization: organization,
		Preferences:  prefs,
	})
	s.attendeeIndex[key] = id
	s.keys = append(s.keys, key)

	pos := sort.Search(len(s.byKey), func(i int) bool { return s.keys[s.byKey[i]] > key })
	s.byKey = append(s.byKey, 0)
	copy(s.byKey[pos+1:], s.byKey[pos:])
	s.byKey[pos] = id
	return id, nil
}

// TimeSlotByName resolves a time slot name.
func (s *Scheduler) TimeSlotByName(name string) (core.TimeSlotID, error) {
	id, ok := s.timeSlotIndex[name]
	if !ok {
		return 0, fmt.Errorf("time slot %q: %w", name, core.ErrUnknownReference)
	}
	return id, nil
}

// TopicByName resolves a topic name.
func (s *Scheduler) TopicByName(name string) (core.TopicID, error) {
	id, ok := s.topicIndex[name]
	if !ok {
		return 0, fmt.Errorf("topic %q: %w", name, core.ErrUnknownReference)
	}
	return id, nil
}

// AttendeeByKey resolves an attendee identity string "{organization} - {name}".
func (s *Scheduler) AttendeeByKey(key string) (core.AttendeeID, error) {
	id, ok := s.attendeeIndex[key]
	if !ok {
		return 0, fmt.Errorf("attendee %q: %w", key, core.ErrUnknownReference)
	}
	return id, nil
}

// AttendeeByName resolves an attendee by organization and name.
func (s *Scheduler) AttendeeByName(organization, name string) (core.AttendeeID, error) {
	return s.AttendeeByKey(core.AttendeeKey(organization, name))
}

// NumTimeSlots returns the number of registered time slots.
func (s *Scheduler) NumTimeSlots() int { return len(s.timeSlots) }

// TimeSlots returns copies of all time slots in creation order.
func (s *Scheduler) TimeSlots() []core.TimeSlot {
	out := make([]core.TimeSlot, len(s.timeSlots))
	for i := range s.timeSlots {
		out[i] = s.timeSlots[i].Clone()
	}
	return out
}

// Topics returns copies of all topics in creation order.
func (s *Scheduler) Topics() []core.Topic {
	out := make([]core.Topic, len(s.topics))
	for i := range s.topics {
		out[i] = s.topics[i].Clone()
	}
	return out
}

// Sessions returns copies of all sessions in creation order.
func (s *Scheduler) Sessions() []core.Session {
	out := make([]core.Session, len(s.sessions))
	for i := range s.sessions {
		out[i] = s.sessions[i].Clone()
	}
	return out
}

// Attendees returns deep copies of all attendees in creation order.
func (s *Scheduler) Attendees() []core.Attendee {
	out := make([]core.Attendee, len(s.attendees))
	for i := range s.attendees {
		out[i] = s.attendees[i].Clone()
	}
	return out
}

// TimeSlot returns a copy of the time slot.
func (s *Scheduler) TimeSlot(id core.TimeSlotID) (core.TimeSlot, error) {
	if id < 0 || int(id) >= len(s.timeSlots) {
		return core.TimeSlot{}, fmt.Errorf("time slot #%d: %w", id, core.ErrUnknownReference)
	}
	return s.timeSlots[id].Clone(), nil
}

// Topic returns a copy of the topic.
func (s *Scheduler) Topic(id core.TopicID) (core.Topic, error) {
	if id < 0 || int(id) >= len(s.topics) {
		return core.Topic{}, fmt.Errorf("topic #%d: %w", id, core.ErrUnknownReference)
	}
	return s.topics[id].Clone(), nil
}

// Session returns a copy of the session.
func (s *Scheduler) Session(id core.SessionID) (core.Session, error) {
	se, err := s.session(id)
	if err != nil {
		return core.Session{}, err
	}
	return se.Clone(), nil
}

// Attendee returns a deep copy of the attendee.
func (s *Scheduler) Attendee(id core.AttendeeID) (core.Attendee, error) {
	a, err := s.attendee(id)
	if err != nil {
		return core.Attendee{}, err
	}
	return a.Clone(), nil
}

// Score returns the attendee's score: the sum of the ranks of their assigned
// preferences. Lower is better.
func (s *Scheduler) Score(id core.AttendeeID) (int, error) {
	a, err := s.attendee(id)
	if err != nil {
		return 0, err
	}
	return a.Score(), nil
}

// NumAssignments returns how many of the attendee's preferences are assigned.
func (s *Scheduler) NumAssignments(id core.AttendeeID) (int, error) {
	a, err := s.attendee(id)
	if err != nil {
		return 0, err
	}
	return a.NumAssignments(), nil
}

// MaxAssignedPreference returns the rank of the attendee's worst assigned
// preference. It fails with core.ErrInvalidRequest when nothing is assigned.
func (s *Scheduler) MaxAssignedPreference(id core.AttendeeID) (int, error) {
	a, err := s.attendee(id)
	if err != nil {
		return 0, err
	}
	rank, ok := a.MaxAssignedPreference()
	if !ok {
		return 0, fmt.Errorf("%s has no assignments: %w", a, core.ErrInvalidRequest)
	}
	return rank, nil
}

// SessionAttendees returns the ids of the attendees seated in the session.
func (s *Scheduler) SessionAttendees(id core.SessionID) ([]core.AttendeeID, error) {
	se, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return append([]core.AttendeeID(nil), se.Attendees...), nil
}

// SessionCapacity returns the number of seats in the session.
func (s *Scheduler) SessionCapacity(id core.SessionID) (int, error) {
	se, err := s.session(id)
	if err != nil {
		return 0, err
	}
	return se.Capacity, nil
}

// SessionName returns the display name "{time slot} - {topic}".
func (s *Scheduler) SessionName(id core.SessionID) (string, error) {
	se, err := s.session(id)
	if err != nil {
		return "", err
	}
	return s.sessionName(se), nil
}

func (s *Scheduler) sessionName(se *core.Session) string {
	return core.SessionName(s.timeSlots[se.TimeSlot].Name, s.topics[se.Topic].Name)
}

func (s *Scheduler) attendee(id core.AttendeeID) (*core.Attendee, error) {
	if id < 0 || int(id) >= len(s.attendees) {
		return nil, fmt.Errorf("attendee #%d: %w", id, core.ErrUnknownReference)
	}
	return &s.attendees[id], nil
}

func (s *Scheduler) session(id core.SessionID) (*core.Session, error) {
	if id < 0 || int(id) >= len(s.sessions) {
		return nil, fmt.Errorf("session #%d: %w", id, core.ErrUnknownReference)
	}
	return &s.sessions[id], nil
}
