// Package alarms implements persistence for the alarm collection.
//
// Two backends satisfy the Repository interface: FileRepository stores the
// collection as a single JSON blob replaced atomically on every save, and
// SQLRepository keeps it in a SQLite table. Both normalize records on load so
// the engine always sees fully-populated alarms, and both fail soft: corrupt
// or missing data yields an empty collection instead of an error.
package alarms
