package opt3001

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRaw(t *testing.T) {
	tests := []struct {
		raw          uint16
		wantExponent uint8
		wantMantissa uint16
	}{
		{raw: 0x0000, wantExponent: 0, wantMantissa: 0},
		{raw: 0x1234, wantExponent: 1, wantMantissa: 564},
		{raw: 0xBFFF, wantExponent: 11, wantMantissa: 4095},
		{raw: 0xF001, wantExponent: 15, wantMantissa: 1},
	}

	for _, tt := range tests {
		exponent, mantissa := DecodeRaw(tt.raw)
		assert.Equal(t, tt.wantExponent, exponent, "raw 0x%04X", tt.raw)
		assert.Equal(t, tt.wantMantissa, mantissa, "raw 0x%04X", tt.raw)
		assert.Equal(t, tt.raw, EncodeRaw(exponent, mantissa))
	}
}

func TestDecodeLux(t *testing.T) {
	assert.InDelta(t, 11.28, DecodeLux(1, 564), 1e-9)
	assert.Equal(t, 0.0, DecodeLux(0, 0))
	assert.InDelta(t, 40.95, DecodeLux(0, 4095), 1e-9)
	assert.InDelta(t, 83865.6, DecodeLux(11, 4095), 1e-6)
	// Exponents past 11 are not rejected.
	assert.InDelta(t, 0.01*math.Pow(2, 15)*2, DecodeLux(15, 2), 1e-9)
}

func TestDecodeLuxAllValidPairs(t *testing.T) {
	for e := uint8(0); e <= OPT3001_EXPONENT_MAX; e++ {
		prev := -1.0
		for m := uint16(0); m <= OPT3001_MANTISSA_MAX; m++ {
			lux := DecodeLux(e, m)
			require.Equal(t, 0.01*math.Pow(2, float64(e))*float64(m), lux, "e=%d m=%d", e, m)
			require.GreaterOrEqual(t, lux, prev, "not monotonic in mantissa at e=%d m=%d", e, m)
			if e > 0 {
				require.GreaterOrEqual(t, lux, DecodeLux(e-1, m), "not monotonic in exponent at e=%d m=%d", e, m)
			}
			prev = lux
		}
	}
}

func TestEncodeLux(t *testing.T) {
	tests := []struct {
		lux          float64
		wantExponent uint8
		wantMantissa uint16
	}{
		{lux: 0, wantExponent: 0, wantMantissa: 0},
		{lux: 10, wantExponent: 0, wantMantissa: 1000},
		{lux: 100, wantExponent: 2, wantMantissa: 2500},
		{lux: 1000, wantExponent: 5, wantMantissa: 3125},
		{lux: 1e9, wantExponent: 11, wantMantissa: 4095},
		{lux: math.Inf(1), wantExponent: 11, wantMantissa: 4095},
	}

	for _, tt := range tests {
		exponent, mantissa, err := EncodeLux(tt.lux)
		require.NoError(t, err)
		assert.Equal(t, tt.wantExponent, exponent, "lux %v", tt.lux)
		assert.Equal(t, tt.wantMantissa, mantissa, "lux %v", tt.lux)
	}
}

func TestEncodeLuxWithinOneStep(t *testing.T) {
	for _, lux := range []float64{0.5, 3.21, 41, 777.7, 5000, 12345.6, 83000} {
		exponent, mantissa, err := EncodeLux(lux)
		require.NoError(t, err)
		decoded := DecodeLux(exponent, mantissa)
		assert.LessOrEqual(t, decoded, lux+1e-9)
		assert.Less(t, lux-decoded, DecodeLux(exponent, 1), "lux %v", lux)
	}
}

func TestEncodeLuxInvalid(t *testing.T) {
	_, _, err := EncodeLux(-0.01)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = EncodeLux(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
