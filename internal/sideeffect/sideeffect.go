package sideeffect

import (
	"context"
	"time"
)

// Intensity grades a haptic impact.
type Intensity string

// Supported haptic intensities.
const (
	IntensityLight  Intensity = "light"
	IntensityMedium Intensity = "medium"
	IntensityHeavy  Intensity = "heavy"
)

// Haptics triggers device vibration. Calls are fire-and-forget: callers log
// and swallow any error, a failed impact never affects alarm state.
type Haptics interface {
	Impact(ctx context.Context, intensity Intensity) error
}

// Receipt confirms a completed payment.
type Receipt struct {
	// ID uniquely identifies the payment attempt.
	ID string
	// Destination is the address the amount was sent to.
	Destination string
	// Amount is the transferred amount in the smallest unit.
	Amount uint64
	// PaidAt is when the payment completed.
	PaidAt time.Time
}

// Payer performs the optional payment triggered on snooze. A failure is
// logged and never blocks the snooze transition.
type Payer interface {
	Pay(ctx context.Context, destination string, amount uint64) (*Receipt, error)
}
