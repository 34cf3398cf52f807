package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToScaled_WholeAndFractional(t *testing.T) {
	v, err := ToScaled("1")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.String())

	v, err = ToScaled("0.5")
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", v.String())

	v, err = ToScaled("1234.000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "1234000000000000000001", v.String())

	v, err = ToScaled(".25")
	require.NoError(t, err)
	assert.Equal(t, "250000000000000000", v.String())

	v, err = ToScaled("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())
}

func TestToScaled_TruncatesBeyondScale(t *testing.T) {
	// The 19th decimal digit must be dropped, not rounded.
	v, err := ToScaled("0.0000000000000000019")
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
}

func TestToScaled_RejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"", "-1", "+1", "abc", "1.2.3", "1e18", "0x10", ".", "1,5"} {
		_, err := ToScaled(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestToDisplay(t *testing.T) {
	assert.Equal(t, "0", ToDisplay(nil))
	assert.Equal(t, "0", ToDisplay(big.NewInt(0)))

	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, "1", ToDisplay(one))

	half := new(big.Int).Div(one, big.NewInt(2))
	assert.Equal(t, "0.5", ToDisplay(half))

	assert.Equal(t, "0.000000000000000001", ToDisplay(big.NewInt(1)))
}

func TestRoundTrip(t *testing.T) {
	// Any amount representable in the scale survives display and re-parse.
	for _, s := range []string{
		"0", "1", "0.000000000000000001", "42.125",
		"1000000000", "999999999.999999999999999999",
	} {
		scaled, err := ToScaled(s)
		require.NoError(t, err)
		back, err := ToScaled(ToDisplay(scaled))
		require.NoError(t, err)
		assert.Equal(t, 0, scaled.Cmp(back), "round trip of %q", s)
	}
}
