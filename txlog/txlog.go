package txlog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/slotmatch/core"
)

// OpKind discriminates the inverse operations a frame can hold.
type OpKind int

const (
	// OpReassign re-creates an assignment that was removed, preserving its
	// immutability.
	OpReassign OpKind = iota
	// OpUnassign removes an assignment that was created. It is always applied
	// with force so that immutable assignments can be undone too.
	OpUnassign
)

// String returns the string representation of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpReassign:
		return "reassign"
	case OpUnassign:
		return "unassign"
	default:
		return "unknown"
	}
}

// Op is a single recorded inverse operation.
type Op struct {
	Kind      OpKind
	Attendee  core.AttendeeID
	Session   core.SessionID
	Immutable bool
}

// Reassign builds the inverse of an unassign.
func Reassign(a core.AttendeeID, s core.SessionID, immutable bool) Op {
	return Op{Kind: OpReassign, Attendee: a, Session: s, Immutable: immutable}
}

// Unassign builds the inverse of an assign.
func Unassign(a core.AttendeeID, s core.SessionID) Op {
	return Op{Kind: OpUnassign, Attendee: a, Session: s}
}

// Applier executes inverse operations during rollback.
type Applier interface {
	ApplyOp(op Op) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(op Op) error

// ApplyOp calls f(op).
func (f ApplierFunc) ApplyOp(op Op) error { return f(op) }

type frame struct {
	name string
	ops  []Op
}

// Log is a stack of checkpoint frames. The zero value is ready to use. It is
// not safe for concurrent use.
type Log struct {
	frames []*frame
}

// New returns an empty log.
func New() *Log { return &Log{} }

// Checkpoint pushes a new frame and returns its name. An empty name is
// replaced by a freshly generated unique token.
func (l *Log) Checkpoint(name string) string {
	if name == "" {
		name = uuid.NewString()
	}
	l.frames = append(l.frames, &frame{name: name})
	return name
}

// Commit closes the top frame keeping its changes. If a parent frame exists
// the recorded ops are appended to it, otherwise they are discarded and the
// changes become permanent.
func (l *Log) Commit(name string) error {
	top, err := l.top(name)
	if err != nil {
		return fmt.Errorf("commit %q: %w", name, err)
	}
	l.pop()
	if parent := l.peek(); parent != nil {
		parent.ops = append(parent.ops, top.ops...)
	}
	return nil
}

// Rollback closes the top frame undoing its changes. Recorded ops are applied
// in reverse order; anything the applier records while replaying lands in the
// frame being discarded.
func (l *Log) Rollback(name string, applier Applier) error {
	top, err := l.top(name)
	if err != nil {
		return fmt.Errorf("rollback %q: %w", name, err)
	}
	ops := top.ops
	top.ops = nil
	defer l.pop()
	for i := len(ops) - 1; i >= 0; i-- {
		if err := applier.ApplyOp(ops[i]); err != nil {
			return fmt.Errorf("rollback %q: apply %s: %w", name, ops[i].Kind, err)
		}
	}
	return nil
}

// Record appends op to the top frame. It is a no-op when no checkpoint is
// open; such mutations cannot be undone.
func (l *Log) Record(op Op) {
	if f := l.peek(); f != nil {
		f.ops = append(f.ops, op)
	}
}

// Depth returns the number of open checkpoints.
func (l *Log) Depth() int { return len(l.frames) }

// Top returns the name of the most recent checkpoint.
func (l *Log) Top() (string, bool) {
	if f := l.peek(); f != nil {
		return f.name, true
	}
	return "", false
}

// Pending returns a copy of the ops recorded in the top frame.
func (l *Log) Pending() []Op {
	f := l.peek()
	if f == nil {
		return nil
	}
	return append([]Op(nil), f.ops...)
}

// Reset drops every open checkpoint without applying anything.
func (l *Log) Reset() { l.frames = nil }

func (l *Log) top(name string) (*frame, error) {
	f := l.peek()
	if f == nil {
		return nil, fmt.Errorf("no open checkpoint: %w", core.ErrCheckpointMismatch)
	}
	if f.name != name {
		return nil, fmt.Errorf("most recent checkpoint is %q: %w", f.name, core.ErrCheckpointMismatch)
	}
	return f, nil
}

func (l *Log) peek() *frame {
	if len(l.frames) == 0 {
		return nil
	}
	return l.frames[len(l.frames)-1]
}

func (l *Log) pop() {
	l.frames[len(l.frames)-1] = nil
	l.frames = l.frames[:len(l.frames)-1]
}
