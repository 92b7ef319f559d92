// Package device defines a line-oriented interface for serial communication
// devices such as the rover's wireless bridge module, and a real
// implementation over go.bug.st/serial.
package device

import "time"

// Device defines an abstract interface for communication devices.
// Implementations provide ReadLine/WriteLine operations with optional timeout.
type Device interface {
	// ReadLine reads a single line terminated by '\n'.
	// If timeout > 0, it must return after timeout even if no data is available.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes s followed by '\n' to the device.
	WriteLine(s string) error

	// Close closes the device and releases underlying resources.
	Close() error
}
