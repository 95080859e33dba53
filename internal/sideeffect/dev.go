package sideeffect

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/timursak/alarm-clock/internal/logger"
)

// LogHaptics records impacts in the log instead of vibrating hardware.
// It stands in for the platform haptic engine on headless deployments.
type LogHaptics struct{}

// Impact logs the requested intensity.
func (LogHaptics) Impact(ctx context.Context, intensity Intensity) error {
	logger.InfoKV(ctx, "Haptic impact", "intensity", string(intensity))

	return nil
}

// DevPayer acknowledges payments locally without touching a chain. It keeps
// the snooze payment path exercised end to end while real transaction
// construction lives outside this repository.
type DevPayer struct{}

// Pay issues a receipt for the requested transfer.
func (DevPayer) Pay(ctx context.Context, destination string, amount uint64) (*Receipt, error) {
	receipt := &Receipt{
		ID:          uuid.NewString(),
		Destination: destination,
		Amount:      amount,
		PaidAt:      time.Now(),
	}

	logger.InfoKV(ctx, "Snooze payment acknowledged",
		"receipt_id", receipt.ID, "destination", destination, "amount", amount)

	return receipt, nil
}
