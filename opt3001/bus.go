package opt3001

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/io/i2c"
	periphi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus is the register transport the driver consumes. Implementations address
// a 7-bit device and transfer len(buf) bytes after the register pointer.
type Bus interface {
	ReadRegister(addr uint16, reg byte, buf []byte) error
	WriteRegister(addr uint16, reg byte, buf []byte) error
}

// DevfsBus talks to /dev/i2c-N through golang.org/x/exp/io/i2c.
// One device handle is opened per address on first use.
type DevfsBus struct {
	Path    string
	devices map[uint16]*i2c.Device
	mu      sync.Mutex
}

// NewDevfsBus returns a transport for the given i2c-dev node.
func NewDevfsBus(path string) *DevfsBus {
	if path == "" {
		// i2c-1 is the default I2C bus for the Raspberry Pi
		path = "/dev/i2c-1"
	}
	return &DevfsBus{
		Path:    path,
		devices: make(map[uint16]*i2c.Device),
	}
}

func (b *DevfsBus) device(addr uint16) (*i2c.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dev, ok := b.devices[addr]; ok {
		return dev, nil
	}
	if b.devices == nil {
		b.devices = make(map[uint16]*i2c.Device)
	}
	dev, err := i2c.Open(&i2c.Devfs{Dev: b.Path}, int(addr))
	if err != nil {
		return nil, fmt.Errorf("Failed to open %s: %w", b.Path, err)
	}
	b.devices[addr] = dev
	return dev, nil
}

func (b *DevfsBus) ReadRegister(addr uint16, reg byte, buf []byte) error {
	dev, err := b.device(addr)
	if err != nil {
		return err
	}
	return dev.ReadReg(reg, buf)
}

func (b *DevfsBus) WriteRegister(addr uint16, reg byte, buf []byte) error {
	dev, err := b.device(addr)
	if err != nil {
		return err
	}
	return dev.WriteReg(reg, buf)
}

// Close releases every device handle opened by the bus.
func (b *DevfsBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for addr, dev := range b.devices {
		if err := dev.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(b.devices, addr)
	}
	return errors.Join(errs...)
}

// PeriphBus adapts a periph.io I2C bus.
type PeriphBus struct {
	Bus periphi2c.Bus
}

// OpenPeriphBus initializes the periph host drivers and opens the named bus.
// An empty name selects the first bus found.
func OpenPeriphBus(name string) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("Failed to initialize periph host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("Failed to open I2C bus %q: %w", name, err)
	}
	return &PeriphBus{Bus: bus}, nil
}

func (b *PeriphBus) ReadRegister(addr uint16, reg byte, buf []byte) error {
	return b.Bus.Tx(addr, []byte{reg}, buf)
}

func (b *PeriphBus) WriteRegister(addr uint16, reg byte, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, reg)
	w = append(w, buf...)
	return b.Bus.Tx(addr, w, nil)
}

// Close closes the underlying bus when it supports closing.
func (b *PeriphBus) Close() error {
	if c, ok := b.Bus.(periphi2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}
