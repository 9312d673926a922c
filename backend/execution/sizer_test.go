package execution

import (
	"testing"

	"github.com/kestrel-trading/corehft/backend/tradeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNotionalWithinBounds(t *testing.T) {
	s := NewSizer(SizingConfig{TargetBalancePct: 0.1, MinOrderAmount: 10, MaxOrderAmount: 1000})

	notional, err := s.ComputeNotional(1000)
	require.NoError(t, err)
	assert.Equal(t, 100.0, notional)
}

func TestComputeNotionalClampsToMin(t *testing.T) {
	s := NewSizer(SizingConfig{TargetBalancePct: 0.01, MinOrderAmount: 10, MaxOrderAmount: 1000})

	notional, err := s.ComputeNotional(1000)
	require.NoError(t, err)
	assert.Equal(t, 10.0, notional)
}

func TestComputeNotionalClampsToMax(t *testing.T) {
	s := NewSizer(SizingConfig{TargetBalancePct: 0.5, MinOrderAmount: 10, MaxOrderAmount: 100})

	notional, err := s.ComputeNotional(1000)
	require.NoError(t, err)
	assert.Equal(t, 100.0, notional)
}

func TestComputeNotionalCapsAtSafetyBuffer(t *testing.T) {
	s := NewSizer(SizingConfig{TargetBalancePct: 1, MinOrderAmount: 10, MaxOrderAmount: 10000})

	notional, err := s.ComputeNotional(1000)
	require.NoError(t, err)
	assert.Equal(t, 950.0, notional)
}

func TestComputeNotionalInsufficientFunds(t *testing.T) {
	s := NewSizer(SizingConfig{TargetBalancePct: 0.1, MinOrderAmount: 10, MaxOrderAmount: 1000})

	_, err := s.ComputeNotional(5) // clamped to min 10, then capped by 95% safety buffer below min
	assert.ErrorIs(t, err, tradeerr.ErrInsufficientFunds)
}

func TestQuantity(t *testing.T) {
	s := NewSizer(SizingConfig{})
	assert.Equal(t, 2.0, s.Quantity(200, 100))
}

func TestQuantityZeroPrice(t *testing.T) {
	s := NewSizer(SizingConfig{})
	assert.Equal(t, 0.0, s.Quantity(200, 0))
}
