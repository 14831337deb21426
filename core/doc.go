// Package core provides the foundational domain types used by slotmatch. It
// defines the passive entities the scheduler operates on:
//
//   - TimeSlots (named periods during which sessions run)
//   - Topics (subjects offered in one or more time slots)
//   - Sessions (a topic held in a time slot, with a capacity)
//   - Attendees (identified by organization and name, with ranked Preferences)
//   - Assignments (the binding of a Preference to a Session)
//
// Entities reference each other by typed integer ids rather than pointers. The
// scheduler in package engine owns the arenas those ids index into, so the
// types here carry no behavior beyond derived read-only properties. The
// package also declares the sentinel errors shared by every layer.
package core
