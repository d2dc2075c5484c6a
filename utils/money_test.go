package utils_test

import (
	"testing"

	"meserte/utils"

	"github.com/stretchr/testify/require"
)

func TestRoundMoney(t *testing.T) {
	require.Equal(t, 1999.99, utils.RoundMoney(1999.994))
	require.Equal(t, 2000.0, utils.RoundMoney(1999.996))
	require.Equal(t, 0.1, utils.RoundMoney(0.1+0.2-0.2))
	require.Equal(t, -10.5, utils.RoundMoney(-10.499))
}

func TestAmountsEqual(t *testing.T) {
	require.True(t, utils.AmountsEqual(2000, 2000))
	require.True(t, utils.AmountsEqual(2000, 2000.004))
	require.True(t, utils.AmountsEqual(0.1+0.2, 0.3))
	require.False(t, utils.AmountsEqual(2000, 2000.01))
	require.False(t, utils.AmountsEqual(2000, 1999))
}
