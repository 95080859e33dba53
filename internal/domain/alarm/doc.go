// Package alarm contains core domain types for the alarm-clock business logic.
//
// It defines the Alarm record, the Weekday recurrence tags, normalization of
// loaded records, and the pure next-occurrence computation the scheduling
// engine is built on.
package alarm
