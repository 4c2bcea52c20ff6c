package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundWithTwoDecimalPlace(t *testing.T) {
	assert.Equal(t, 0.0, RoundWithTwoDecimalPlace(0))
	assert.Equal(t, 33.33, RoundWithTwoDecimalPlace(33.3333))
	assert.Equal(t, 52.64, RoundWithTwoDecimalPlace(52.6363))
	assert.True(t, math.IsNaN(RoundWithTwoDecimalPlace(math.NaN())))
}

func TestGenerateID(t *testing.T) {
	first, err := GenerateID()
	require.NoError(t, err)
	second, err := GenerateID()
	require.NoError(t, err)

	assert.Len(t, first, 10)
	assert.NotEqual(t, first, second)
	assert.Regexp(t, "^[A-Za-z0-9]+$", first)
}
