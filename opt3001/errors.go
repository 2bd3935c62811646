package opt3001

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound means the identity registers did not read back as an OPT3001.
	ErrDeviceNotFound = errors.New("opt3001: device not found")

	// ErrBus wraps every transport failure.
	ErrBus = errors.New("opt3001: bus error")

	// ErrInvalidArgument is returned for out-of-range configuration or limit values.
	ErrInvalidArgument = errors.New("opt3001: invalid argument")

	// ErrTimeout means a single-shot conversion did not complete in time.
	ErrTimeout = errors.New("opt3001: timeout waiting for conversion")
)

// RegisterError describes a failed register transaction.
// It matches ErrBus and the underlying transport error with errors.Is.
type RegisterError struct {
	Op       string // "read" or "write"
	Address  uint16
	Register byte
	Err      error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("opt3001: %s register 0x%02X at address 0x%02X: %v", e.Op, e.Register, e.Address, e.Err)
}

func (e *RegisterError) Unwrap() []error {
	return []error{ErrBus, e.Err}
}
