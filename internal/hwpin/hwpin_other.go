//go:build !linux

package hwpin

import "errors"

// DefaultFreqHz is the software PWM frequency used when none is configured.
const DefaultFreqHz = 800

// Pin is unavailable off Linux; use the dry-run pins instead.
type Pin struct{}

// New always fails: the GPIO character device only exists on Linux.
func New(chipPath string, offset uint32, freqHz uint) (*Pin, error) {
	return nil, errors.New("gpio output requires linux")
}

// SetDuty is never reachable since New fails.
func (p *Pin) SetDuty(duty uint8) error {
	return errors.New("gpio output requires linux")
}

// Close is never reachable since New fails.
func (p *Pin) Close() error { return nil }
