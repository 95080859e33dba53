// Package config defines server settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the HTTP listen address, the persistence backend
// selection, snooze timing and the optional snooze payment side effect.
// Missing fields are filled with defaults during validation, so a partial
// (or absent) settings file is always usable.
package config
