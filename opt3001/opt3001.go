package opt3001

/*
 * opt3001 - Package for interacting with TI OPT3001 ambient light sensors.
 *
 * Ref:
 * https://www.ti.com/lit/ds/symlink/opt3001.pdf
 *
 */

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

const (
	// Power-on settings: continuous conversions, 800ms, automatic range.
	OPT3001_CONFIG_DEFAULT uint16 = 0xCC00
	// Written by Deinit: shutdown, 800ms, automatic range.
	OPT3001_CONFIG_SHUTDOWN uint16 = 0xC800
)

var l *logrus.Logger

func init() {
	l = logrus.New()
	// Setup the logger, so it can be parsed by datadog
	l.Formatter = &logrus.JSONFormatter{}
	l.SetOutput(os.Stdout)
	// Set the log level
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	switch logLevel {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "info":
		l.SetLevel(logrus.InfoLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
}

// SetLogger replaces the package logger used for register tracing.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		l = logger
	}
}

// OPT3001 is a single sensor on a shared bus.
//
// The driver holds no lock. Calls on one OPT3001, and on any other device
// sharing its bus, must be serialized by the caller.
type OPT3001 struct {
	Address uint16
	// Config is the last configuration word written to the device.
	Config uint16
	// PollInterval is the delay between conversion-ready checks in SingleShot.
	// Zero selects a tenth of the configured conversion time.
	PollInterval time.Duration
	// Timeout bounds the SingleShot wait. Zero selects twice the conversion time.
	Timeout time.Duration
	Clock   clock.Clock

	bus Bus
}

// Connect to an OPT3001 on the given bus & verify its identity registers.
// The address is one of the four ADDR pin selections and is not validated.
func NewOPT3001(bus Bus, address uint16) (*OPT3001, error) {
	if bus == nil {
		return nil, fmt.Errorf("nil bus: %w", ErrInvalidArgument)
	}
	d := &OPT3001{
		Address: address,
		Config:  OPT3001_CONFIG_DEFAULT,
		Clock:   clock.New(),
		bus:     bus,
	}

	manufacturer, device, err := d.ReadDeviceID()
	if err != nil {
		return nil, fmt.Errorf("%w at address 0x%02X: %w", ErrDeviceNotFound, address, err)
	}
	if manufacturer != OPT3001_MANUFACTURER_ID || device != OPT3001_DEVICE_ID {
		return nil, fmt.Errorf("%w at address 0x%02X: manufacturer 0x%04X, device 0x%04X",
			ErrDeviceNotFound, address, manufacturer, device)
	}
	return d, nil
}

func (d *OPT3001) readRegister(reg byte) (uint16, error) {
	buf := make([]byte, OPT3001_REG_WIDTH)
	if err := d.bus.ReadRegister(d.Address, reg, buf); err != nil {
		return 0, &RegisterError{Op: "read", Address: d.Address, Register: reg, Err: err}
	}
	value := binary.BigEndian.Uint16(buf)
	l.Debugf("Read register 0x%02X: 0x%04X", reg, value)
	return value, nil
}

func (d *OPT3001) writeRegister(reg byte, value uint16) error {
	buf := make([]byte, OPT3001_REG_WIDTH)
	binary.BigEndian.PutUint16(buf, value)
	if err := d.bus.WriteRegister(d.Address, reg, buf); err != nil {
		return &RegisterError{Op: "write", Address: d.Address, Register: reg, Err: err}
	}
	l.Debugf("Wrote register 0x%02X: 0x%04X", reg, value)
	return nil
}

// Read the manufacturer and device ID registers
func (d *OPT3001) ReadDeviceID() (uint16, uint16, error) {
	manufacturer, err := d.readRegister(OPT3001_REGISTER_MANUFACTURER_ID)
	if err != nil {
		return 0, 0, err
	}
	device, err := d.readRegister(OPT3001_REGISTER_DEVICE_ID)
	if err != nil {
		return 0, 0, err
	}
	return manufacturer, device, nil
}

// CheckDeviceID reports whether the identity registers still read as an
// OPT3001. Bus failures count as a mismatch.
func (d *OPT3001) CheckDeviceID() bool {
	manufacturer, device, err := d.ReadDeviceID()
	if err != nil {
		return false
	}
	return manufacturer == OPT3001_MANUFACTURER_ID && device == OPT3001_DEVICE_ID
}

// Configure the operating mode, conversion time & range selection.
// A fixed range (autoRange false) selects range 0.
func (d *OPT3001) Configure(mode byte, conversionTime byte, autoRange bool) error {
	word, err := EncodeConfig(mode, conversionTime, autoRange)
	if err != nil {
		return err
	}
	return d.writeConfig(word)
}

// ConfigureRange is Configure with an explicit range number, 0-11 or OPT3001_RANGE_AUTO.
func (d *OPT3001) ConfigureRange(mode byte, conversionTime byte, rangeNumber byte) error {
	word, err := EncodeConfigRange(mode, conversionTime, rangeNumber)
	if err != nil {
		return err
	}
	return d.writeConfig(word)
}

func (d *OPT3001) writeConfig(word uint16) error {
	if err := d.writeRegister(OPT3001_REGISTER_CONFIG, word); err != nil {
		return err
	}
	d.Config = word
	return nil
}

// ReadConfig reads and decodes the configuration register, status flags included.
func (d *OPT3001) ReadConfig() (Config, error) {
	word, err := d.readRegister(OPT3001_REGISTER_CONFIG)
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(word), nil
}

// Read the exponent & mantissa of the last conversion
func (d *OPT3001) ReadRaw() (uint8, uint16, error) {
	raw, err := d.readRegister(OPT3001_REGISTER_RESULT)
	if err != nil {
		return 0, 0, err
	}
	exponent, mantissa := DecodeRaw(raw)
	return exponent, mantissa, nil
}

// Read the last conversion in lux
func (d *OPT3001) ReadLux() (float64, error) {
	exponent, mantissa, err := d.ReadRaw()
	if err != nil {
		return 0, err
	}
	return DecodeLux(exponent, mantissa), nil
}

// IsConversionReady reads the conversion ready flag. The device clears it
// when the result is read or a new conversion starts.
func (d *OPT3001) IsConversionReady() (bool, error) {
	word, err := d.readRegister(OPT3001_REGISTER_CONFIG)
	if err != nil {
		return false, err
	}
	return word&OPT3001_CONFIG_CRF != 0, nil
}

// SingleShot triggers one conversion with the last configured conversion
// time & range, waits for the ready flag and returns the result in lux.
// The device returns to shutdown on its own once the conversion completes.
func (d *OPT3001) SingleShot(ctx context.Context) (float64, error) {
	current := DecodeConfig(d.Config)
	if err := d.ConfigureRange(OPT3001_MODE_SINGLE_SHOT, current.ConversionTime, current.Range); err != nil {
		return 0, err
	}

	conversion := ConversionDuration(current.ConversionTime)
	interval := d.PollInterval
	if interval <= 0 {
		interval = conversion / 10
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 2 * conversion
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.New()
	}

	deadline := clk.Timer(timeout)
	defer deadline.Stop()
	for polls := 1; ; polls++ {
		ready, err := d.IsConversionReady()
		if err != nil {
			return 0, err
		}
		if ready {
			l.Debugf("Conversion ready after %d polls", polls)
			return d.ReadLux()
		}

		wait := clk.Timer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return 0, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		case <-deadline.C:
			wait.Stop()
			return 0, fmt.Errorf("%w after %s (%d polls)", ErrTimeout, timeout, polls)
		case <-wait.C:
		}
	}
}

// Set the low limit threshold in lux
func (d *OPT3001) SetLowLimit(lux float64) error {
	return d.writeLimit(OPT3001_REGISTER_LOW_LIMIT, lux)
}

// Set the high limit threshold in lux
func (d *OPT3001) SetHighLimit(lux float64) error {
	return d.writeLimit(OPT3001_REGISTER_HIGH_LIMIT, lux)
}

func (d *OPT3001) ReadLowLimit() (float64, error) {
	return d.readLimit(OPT3001_REGISTER_LOW_LIMIT)
}

func (d *OPT3001) ReadHighLimit() (float64, error) {
	return d.readLimit(OPT3001_REGISTER_HIGH_LIMIT)
}

func (d *OPT3001) writeLimit(reg byte, lux float64) error {
	exponent, mantissa, err := EncodeLux(lux)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, EncodeRaw(exponent, mantissa))
}

func (d *OPT3001) readLimit(reg byte) (float64, error) {
	raw, err := d.readRegister(reg)
	if err != nil {
		return 0, err
	}
	return DecodeLux(DecodeRaw(raw)), nil
}

// Deinit puts the sensor in shutdown mode. Safe to call repeatedly.
func (d *OPT3001) Deinit() error {
	return d.writeConfig(OPT3001_CONFIG_SHUTDOWN)
}
