package opt3001

import (
	"fmt"
	"math"
)

// DecodeRaw splits a result or limit register value into its 4-bit exponent
// and 12-bit mantissa.
func DecodeRaw(raw uint16) (uint8, uint16) {
	return uint8(raw >> 12 & 0x0F), raw & OPT3001_MANTISSA_MAX
}

// EncodeRaw is the inverse of DecodeRaw. Bits outside the field widths are dropped.
func EncodeRaw(exponent uint8, mantissa uint16) uint16 {
	return uint16(exponent&0x0F)<<12 | mantissa&OPT3001_MANTISSA_MAX
}

// DecodeLux converts an exponent/mantissa pair to lux:
// lux = 0.01 * 2^exponent * mantissa
// Exponents above 11 are outside the datasheet but still computed.
func DecodeLux(exponent uint8, mantissa uint16) float64 {
	return OPT3001_LSB_LUX * math.Ldexp(float64(mantissa), int(exponent))
}

// EncodeLux picks the smallest exponent whose mantissa fits in 12 bits.
// Values above the largest full scale saturate at exponent 11, mantissa 4095.
func EncodeLux(lux float64) (uint8, uint16, error) {
	if math.IsNaN(lux) || lux < 0 {
		return 0, 0, fmt.Errorf("lux %v: %w", lux, ErrInvalidArgument)
	}
	for exp := uint8(0); exp <= OPT3001_EXPONENT_MAX; exp++ {
		mantissa := lux / (OPT3001_LSB_LUX * math.Ldexp(1, int(exp)))
		if mantissa <= float64(OPT3001_MANTISSA_MAX) {
			return exp, uint16(mantissa), nil
		}
	}
	return OPT3001_EXPONENT_MAX, OPT3001_MANTISSA_MAX, nil
}
