package opt3001

import (
	"fmt"
	"time"
)

const (
	OPT3001_ADDR      uint16 = 0x44 ///< Default I2C address, ADDR pin to GND
	OPT3001_ADDR_VDD  uint16 = 0x45 ///< ADDR pin to VDD
	OPT3001_ADDR_SDA  uint16 = 0x46 ///< ADDR pin to SDA
	OPT3001_ADDR_SCL  uint16 = 0x47 ///< ADDR pin to SCL
	OPT3001_REG_WIDTH int    = 2    ///< Every register is 16 bits, big-endian

	OPT3001_MANUFACTURER_ID uint16 = 0x5449 ///< "TI"
	OPT3001_DEVICE_ID       uint16 = 0x3001
)

// OPT3001 Register map
const (
	OPT3001_REGISTER_RESULT          byte = 0x00 // Exponent and mantissa of the last conversion
	OPT3001_REGISTER_CONFIG          byte = 0x01 // Configuration and status flags
	OPT3001_REGISTER_LOW_LIMIT       byte = 0x02 // Interrupt low limit
	OPT3001_REGISTER_HIGH_LIMIT      byte = 0x03 // Interrupt high limit
	OPT3001_REGISTER_MANUFACTURER_ID byte = 0x7E // Manufacturer ID, read only
	OPT3001_REGISTER_DEVICE_ID       byte = 0x7F // Device ID, read only
)

// Configuration register fields
const (
	OPT3001_CONFIG_RN  uint16 = 0xF000 ///< Range number
	OPT3001_CONFIG_CT  uint16 = 0x0800 ///< Conversion time
	OPT3001_CONFIG_M   uint16 = 0x0600 ///< Mode of conversion operation
	OPT3001_CONFIG_OVF uint16 = 0x0100 ///< Overflow flag, read only
	OPT3001_CONFIG_CRF uint16 = 0x0080 ///< Conversion ready flag, read only
	OPT3001_CONFIG_FH  uint16 = 0x0040 ///< Flag high, read only
	OPT3001_CONFIG_FL  uint16 = 0x0020 ///< Flag low, read only
	OPT3001_CONFIG_L   uint16 = 0x0010 ///< Latch
	OPT3001_CONFIG_POL uint16 = 0x0008 ///< Interrupt polarity
	OPT3001_CONFIG_ME  uint16 = 0x0004 ///< Mask exponent
	OPT3001_CONFIG_FC  uint16 = 0x0003 ///< Fault count

	OPT3001_CONFIG_RN_SHIFT = 12
	OPT3001_CONFIG_CT_SHIFT = 11
	OPT3001_CONFIG_M_SHIFT  = 9
)

// Constants for the operating mode
const (
	OPT3001_MODE_SHUTDOWN    byte = 0x00 // Low power, no conversions
	OPT3001_MODE_SINGLE_SHOT byte = 0x01 // One conversion, then back to shutdown
	OPT3001_MODE_CONTINUOUS  byte = 0x02 // Back to back conversions
)

// Constants for the conversion time
const (
	OPT3001_CONVERSIONTIME_100MS byte = 0x00 // 100 millis
	OPT3001_CONVERSIONTIME_800MS byte = 0x01 // 800 millis
)

// Constants for the full-scale range
const (
	OPT3001_RANGE_MAX_FIXED byte = 0x0B // 83865.60 lux full scale
	OPT3001_RANGE_AUTO      byte = 0x0C // 1100b, automatic full-scale selection
)

// Result encoding limits
const (
	OPT3001_EXPONENT_MAX uint8   = 11
	OPT3001_MANTISSA_MAX uint16  = 0x0FFF
	OPT3001_LSB_LUX      float64 = 0.01 ///< Lux per mantissa count at exponent 0
)

func ModeToString(value byte) string {
	switch value {
	case OPT3001_MODE_SHUTDOWN:
		return "Shutdown"
	case OPT3001_MODE_SINGLE_SHOT:
		return "Single-shot"
	case OPT3001_MODE_CONTINUOUS, OPT3001_MODE_CONTINUOUS | 0x01:
		return "Continuous"
	default:
		return "Unknown"
	}
}

func ConversionTimeToString(value byte) string {
	switch value {
	case OPT3001_CONVERSIONTIME_100MS:
		return "100ms"
	case OPT3001_CONVERSIONTIME_800MS:
		return "800ms"
	default:
		return "Unknown"
	}
}

func RangeToString(value byte) string {
	switch {
	case value == OPT3001_RANGE_AUTO:
		return "Automatic"
	case value <= OPT3001_RANGE_MAX_FIXED:
		return fmt.Sprintf("Range %d (%.2f lux)", value, RangeFullScale(value))
	default:
		return "Unknown"
	}
}

// ConversionDuration returns how long one conversion takes for the given
// conversion time setting. Unknown values report the longer conversion.
func ConversionDuration(value byte) time.Duration {
	if value == OPT3001_CONVERSIONTIME_100MS {
		return 100 * time.Millisecond
	}
	return 800 * time.Millisecond
}

// RangeFullScale returns the full-scale lux of a fixed range number.
func RangeFullScale(value byte) float64 {
	return DecodeLux(value, OPT3001_MANTISSA_MAX)
}

func validMode(mode byte) bool {
	return mode <= OPT3001_MODE_CONTINUOUS
}

func validConversionTime(ct byte) bool {
	return ct == OPT3001_CONVERSIONTIME_100MS || ct == OPT3001_CONVERSIONTIME_800MS
}

func validRange(rn byte) bool {
	return rn <= OPT3001_RANGE_MAX_FIXED || rn == OPT3001_RANGE_AUTO
}
