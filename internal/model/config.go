// Package model defines the configuration structures used to initialize the
// rover endpoint: transport selection, polling behavior and the fixed
// channel-to-pin bindings.
package model

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root structure loaded from configs/config.yml.
type Config struct {
	Transport           string        `yaml:"transport"`             // "serial" or "ws"
	Serial              SerialConfig  `yaml:"serial"`                // wireless bridge serial line
	WS                  WSConfig      `yaml:"ws"`                    // websocket control endpoint
	PollIntervalMs      int           `yaml:"poll_interval_ms"`      // session poll period
	NeutralOnDisconnect bool          `yaml:"neutral_on_disconnect"` // force stop when controller drops
	GPIO                GPIOConfig    `yaml:"gpio"`
	Channels            ChannelConfig `yaml:"channels"`
}

// SerialConfig locates the wireless bridge module.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// WSConfig configures the websocket control listener.
type WSConfig struct {
	Addr string `yaml:"addr"`
}

// GPIOConfig locates the GPIO chip and sets the PWM carrier frequency.
type GPIOConfig struct {
	Chip      string `yaml:"chip"`
	PWMFreqHz uint   `yaml:"pwm_freq_hz"`
}

// PinPairConfig binds one channel's two direction pins by line offset.
type PinPairConfig struct {
	PinA uint32 `yaml:"pin_a"`
	PinB uint32 `yaml:"pin_b"`
}

// ChannelConfig binds all three motor channels.
type ChannelConfig struct {
	Left   PinPairConfig `yaml:"left"`
	Right  PinPairConfig `yaml:"right"`
	Intake PinPairConfig `yaml:"intake"`
}

// PollInterval returns the configured poll period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Transport == "" {
		c.Transport = "serial"
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 9600
	}
	if c.WS.Addr == "" {
		c.WS.Addr = ":8080"
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 20
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = "/dev/gpiochip0"
	}
}

func (c *Config) validate() error {
	switch c.Transport {
	case "serial":
		if c.Serial.Device == "" {
			return fmt.Errorf("serial transport needs serial.device")
		}
	case "ws":
	default:
		return fmt.Errorf("unknown transport %q (want serial or ws)", c.Transport)
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("poll_interval_ms must be positive")
	}
	for name, pair := range map[string]PinPairConfig{
		"left": c.Channels.Left, "right": c.Channels.Right, "intake": c.Channels.Intake,
	} {
		if pair.PinA == pair.PinB {
			return fmt.Errorf("channel %s: pin_a and pin_b must differ", name)
		}
	}
	return nil
}
