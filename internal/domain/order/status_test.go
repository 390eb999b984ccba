package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"PENDING", "CONFIRMED", "SHIPPED", "DELIVERED", "CANCELLED"} {
		got, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, Status(raw), got)
	}

	_, err := ParseStatus("REFUNDED")
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = ParseStatus("pending")
	require.ErrorIs(t, err, ErrUnknownStatus, "statuses are case sensitive")
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusConfirmed, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct{ from, to Status }{
		{StatusConfirmed, StatusPending},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusDelivered, StatusCancelled},
		{StatusDelivered, StatusShipped},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCancelled},
	}
	for _, tt := range denied {
		assert.False(t, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusShipped.Terminal())
}
