package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusRejected))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusToShip))
	assert.True(t, OrderStatusToShip.CanTransitionTo(OrderStatusDelivered))
	assert.True(t, OrderStatusDelivered.CanTransitionTo(OrderStatusReceived))

	// No skipping, no going back.
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusToShip))
	assert.False(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusToShip))
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusRejected.IsTerminal())
	assert.True(t, OrderStatusReceived.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusToShip.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("To Ship")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusToShip, status)

	_, err = ParseOrderStatus("Shipped")
	assert.Error(t, err)
}
