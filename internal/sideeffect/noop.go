package sideeffect

import "context"

// NopHaptics ignores every impact. Used on platforms without haptics support
// and in tests.
type NopHaptics struct{}

// Impact does nothing.
func (NopHaptics) Impact(context.Context, Intensity) error {
	return nil
}

// NopPayer disables the payment side effect.
type NopPayer struct{}

// Pay does nothing and confirms nothing.
func (NopPayer) Pay(context.Context, string, uint64) (*Receipt, error) {
	return nil, nil //nolint:nilnil // No payment means no receipt and no failure.
}
