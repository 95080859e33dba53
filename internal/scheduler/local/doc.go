// Package local provides an in-process scheduler implementation backed by
// time.Timer. It powers the server binary and mirrors the semantics expected
// from a platform notification service: one-shot delivery, idempotent cancel,
// replace-on-reschedule.
package local
