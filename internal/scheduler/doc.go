// Package scheduler defines the boundary between the alarm engine and the
// platform notification service: outbound commands (Schedule/Cancel) and the
// inbound FireEvent delivered asynchronously when an occurrence comes due.
package scheduler
