// Package serial opens the UART a sampling board streams its trace on.
package serial

import (
	"io"
	"time"
)

// Port is a serial link to a board. Native ports use github.com/tarm/serial;
// tests substitute any io.ReadWriteCloser.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate of the board's trace UART
	Baud int

	// ReadTimeout bounds each Read (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultBaud matches the firmware UART setting.
const DefaultBaud = 115200

// DefaultConfig returns the configuration the firmware expects.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}
