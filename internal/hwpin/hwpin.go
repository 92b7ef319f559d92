//go:build linux

// Package hwpin drives a motor output line through the Linux GPIO
// character device. Duty is realized with a software PWM loop; 0 and 255
// collapse to a steady low/high level with no loop running.
package hwpin

import (
	"fmt"
	"sync"
	"time"

	"github.com/mkch/gpio"
)

// DefaultFreqHz is the software PWM frequency used when none is configured.
const DefaultFreqHz = 800

// line is the subset of *gpio.Line the pin uses.
type line interface {
	SetValue(value byte) error
	Close() error
}

// Pin is one PWM-capable GPIO output line. It implements drive.Pin.
type Pin struct {
	line   line
	period time.Duration

	mu      sync.Mutex
	duty    uint8
	running bool
	wg      sync.WaitGroup
}

// New opens the line at offset on the given GPIO chip (e.g.
// /dev/gpiochip0) as an output, initially low.
func New(chipPath string, offset uint32, freqHz uint) (*Pin, error) {
	if freqHz == 0 {
		freqHz = DefaultFreqHz
	}
	chip, err := gpio.OpenChip(chipPath)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipPath, err)
	}
	// The line stays usable after the chip handle is closed.
	defer func() {
		_ = chip.Close()
	}()

	line, err := chip.OpenLine(offset, 0, gpio.Output, "roverctl")
	if err != nil {
		return nil, fmt.Errorf("open gpio line %d on %s: %w", offset, chipPath, err)
	}
	return &Pin{line: line, period: time.Second / time.Duration(freqHz)}, nil
}

// SetDuty sets the PWM duty in [0,255]. The previous duty is overwritten
// unconditionally.
func (p *Pin) SetDuty(duty uint8) error {
	p.mu.Lock()
	p.duty = duty
	if duty != 0 && duty != 255 {
		if !p.running {
			p.running = true
			p.wg.Add(1)
			go p.pwmLoop()
		}
		p.mu.Unlock()
		return nil
	}

	// steady level: stop the loop before touching the line so the loop
	// cannot overwrite the final state
	p.running = false
	p.mu.Unlock()
	p.wg.Wait()

	var level byte
	if duty == 255 {
		level = 1
	}
	return p.line.SetValue(level)
}

// pwmLoop toggles the line at the configured frequency with the current
// duty until SetDuty asks for a steady level or the line errors.
func (p *Pin) pwmLoop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		if !p.running {
			p.mu.Unlock()
			return
		}
		duty := p.duty
		p.mu.Unlock()

		on := p.period * time.Duration(duty) / 256
		if on > 0 {
			if p.line.SetValue(1) != nil {
				p.markStopped()
				return
			}
			time.Sleep(on)
		}
		if off := p.period - on; off > 0 {
			if p.line.SetValue(0) != nil {
				p.markStopped()
				return
			}
			time.Sleep(off)
		}
	}
}

// markStopped records that no loop is driving the line anymore, so the
// next SetDuty restarts one instead of assuming a loop is still alive.
func (p *Pin) markStopped() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// Close stops any PWM loop, drives the line low and releases it.
func (p *Pin) Close() error {
	if err := p.SetDuty(0); err != nil {
		_ = p.line.Close()
		return err
	}
	return p.line.Close()
}
