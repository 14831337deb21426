// Package engine implements the slotmatch assignment engine.
//
// The Scheduler owns every entity (time slots, topics, sessions, attendees) in
// index-addressed arenas and exposes the operations that mutate assignments.
// It is a single explicit context object: there is no package level state.
//
// # Core Responsibilities
//
// Setup:
//   - AddTimeSlot / AddTimeSlots / AddTopic / AddAttendee build the event
//   - Identities are unique; references are resolved by name at setup time
//
// Assignment primitive:
//   - AssignSession / UnassignSession validate invariants, mutate state and
//     record the inverse operation into the open checkpoint
//   - Capacity and slot conflicts are reported as control-flow errors that
//     placement searches swallow
//
// Scheduling:
//   - Assign places an attendee in their best available preference
//   - Schedule runs the time-slot, fill and improve phases
//   - Swap is the local search step that trades assignments between two
//     attendees under nested checkpoints
//
// Transactions:
//   - Checkpoint / Commit / Rollback delegate to txlog; nested checkpoints
//     must be closed in LIFO order
//
// # Concurrency
//
// A Scheduler is not safe for concurrent use. All operations are synchronous
// and deterministic for a given sequence of setup calls: every ordering breaks
// ties on the attendee identity string.
package engine
