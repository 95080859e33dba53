package sideeffect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDevPayer_IssuesReceipt checks receipt contents and uniqueness.
func TestDevPayer_IssuesReceipt(t *testing.T) {
	t.Parallel()

	payer := DevPayer{}

	first, err := payer.Pay(context.Background(), "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", 5000)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, uint64(5000), first.Amount)
	require.False(t, first.PaidAt.IsZero())

	second, err := payer.Pay(context.Background(), "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", 5000)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

// TestNopPayer_NoReceipt verifies the disabled payer stays silent.
func TestNopPayer_NoReceipt(t *testing.T) {
	t.Parallel()

	receipt, err := NopPayer{}.Pay(context.Background(), "anywhere", 1)
	require.NoError(t, err)
	require.Nil(t, receipt)
}
