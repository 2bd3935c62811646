package opt3001

import "fmt"

// Config is the decoded content of the configuration register.
type Config struct {
	Range           byte
	ConversionTime  byte
	Mode            byte
	Overflow        bool
	ConversionReady bool
	FlagHigh        bool
	FlagLow         bool
	Latch           bool
	Polarity        bool
	MaskExponent    bool
	FaultCount      byte
}

// AutoRange reports whether the device selects its full-scale range itself.
func (c Config) AutoRange() bool {
	return c.Range == OPT3001_RANGE_AUTO
}

func (c Config) String() string {
	return fmt.Sprintf("range=%s conversion=%s mode=%s ready=%t overflow=%t",
		RangeToString(c.Range), ConversionTimeToString(c.ConversionTime), ModeToString(c.Mode),
		c.ConversionReady, c.Overflow)
}

// EncodeConfig packs mode, conversion time and range selection into a
// configuration word. A fixed range selects range 0, the lowest full scale.
func EncodeConfig(mode byte, conversionTime byte, autoRange bool) (uint16, error) {
	rn := byte(0)
	if autoRange {
		rn = OPT3001_RANGE_AUTO
	}
	return EncodeConfigRange(mode, conversionTime, rn)
}

// EncodeConfigRange packs mode, conversion time and an explicit range number.
// Only RN, CT and M are set; every other bit of the word is zero.
func EncodeConfigRange(mode byte, conversionTime byte, rangeNumber byte) (uint16, error) {
	if !validMode(mode) {
		return 0, fmt.Errorf("mode 0x%02X: %w", mode, ErrInvalidArgument)
	}
	if !validConversionTime(conversionTime) {
		return 0, fmt.Errorf("conversion time 0x%02X: %w", conversionTime, ErrInvalidArgument)
	}
	if !validRange(rangeNumber) {
		return 0, fmt.Errorf("range number 0x%02X: %w", rangeNumber, ErrInvalidArgument)
	}
	word := uint16(rangeNumber)<<OPT3001_CONFIG_RN_SHIFT |
		uint16(conversionTime)<<OPT3001_CONFIG_CT_SHIFT |
		uint16(mode)<<OPT3001_CONFIG_M_SHIFT
	return word, nil
}

// DecodeConfig unpacks every field of a configuration word. Both continuous
// encodings (10b and 11b) decode to OPT3001_MODE_CONTINUOUS.
func DecodeConfig(word uint16) Config {
	mode := byte((word & OPT3001_CONFIG_M) >> OPT3001_CONFIG_M_SHIFT)
	if mode > OPT3001_MODE_CONTINUOUS {
		mode = OPT3001_MODE_CONTINUOUS
	}
	return Config{
		Range:           byte((word & OPT3001_CONFIG_RN) >> OPT3001_CONFIG_RN_SHIFT),
		ConversionTime:  byte((word & OPT3001_CONFIG_CT) >> OPT3001_CONFIG_CT_SHIFT),
		Mode:            mode,
		Overflow:        word&OPT3001_CONFIG_OVF != 0,
		ConversionReady: word&OPT3001_CONFIG_CRF != 0,
		FlagHigh:        word&OPT3001_CONFIG_FH != 0,
		FlagLow:         word&OPT3001_CONFIG_FL != 0,
		Latch:           word&OPT3001_CONFIG_L != 0,
		Polarity:        word&OPT3001_CONFIG_POL != 0,
		MaskExponent:    word&OPT3001_CONFIG_ME != 0,
		FaultCount:      byte(word & OPT3001_CONFIG_FC),
	}
}
