// Package alarmclock implements the HTTP transport for the alarm-clock
// service.
//
// It adapts JSON requests to the engine and session interfaces and renders a
// uniform error envelope. Scheduling failures that leave an alarm saved but
// unarmed are reported as a warning field beside the successful payload.
package alarmclock
