// Package report renders the state of a scheduler for people and tools.
//
// Dump produces a plain-text listing of every attendee and topic. Summarize
// computes aggregate statistics. Export and WriteYAML produce a
// machine-readable view of the final assignments.
//
// Everything here uses the scheduler's read accessors only.
package report
