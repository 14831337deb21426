// Package eventfile reads event definitions written in YAML and applies them
// to a scheduler.
//
// An event file lists time slots, topics with their sessions, and attendees
// with their ranked topic preferences. Attendees may also name topics they
// must attend; those become immutable manual assignments.
//
//	time_slots: ["9:30", "10:30"]
//	topics:
//	  - name: Underwater basket-weaving
//	    sessions:
//	      - {time_slot: "9:30", capacity: 10}
//	attendees:
//	  - name: John Doe
//	    organization: Acme, Inc.
//	    topics: [Underwater basket-weaving]
//	    manual: [Underwater basket-weaving]
package eventfile
