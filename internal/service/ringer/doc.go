// Package ringer owns the transient ringing session: the state between an
// alarm firing and the user snoozing or dismissing it.
//
// At most one session exists at a time. Snoozing defers the ring by a
// configured delay in a dedicated occurrence id-space and retains the session
// so the snooze counter accumulates until dismiss. Haptic and payment side
// effects are invoked best-effort and never influence the state transitions.
package ringer
