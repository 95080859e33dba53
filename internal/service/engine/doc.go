// Package engine implements the alarm lifecycle state machine.
//
// Each alarm is Disabled, Armed (a future occurrence is scheduled) or Fired.
// The engine owns every mutation of the persisted collection, computes next
// fire instants, issues scheduling commands, and turns inbound fire events
// into ringing sessions. Store writes and scheduling are independently
// fallible: a saved-but-unscheduled alarm is surfaced as a warning, never as
// a rollback.
package engine
