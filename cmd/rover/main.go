// Rover motor-control endpoint: receives encoded motor commands from a
// remote controller over the configured wireless transport and drives the
// left, right and intake channels.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"roverctl/internal/device"
	"roverctl/internal/drive"
	"roverctl/internal/hwpin"
	"roverctl/internal/model"
	"roverctl/internal/session"
	"roverctl/internal/transport"
)

var logger = golog.NewDevelopmentLogger("rover")

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "config file path")
	dry := flag.Bool("dry", false, "log drive output instead of driving GPIO lines")
	flag.Parse()

	cfg, err := model.Load(*cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	pairs, closePins, err := buildPins(cfg, *dry)
	if err != nil {
		logger.Fatalf("gpio init: %v", err)
	}
	defer closePins()

	motors, err := drive.NewMotors(pairs, logger)
	if err != nil {
		logger.Fatalf("motor init: %v", err)
	}

	// a transport that fails to come up halts startup entirely
	tr, err := buildTransport(cfg)
	if err != nil {
		logger.Fatalf("transport init: %v", err)
	}
	defer func() {
		if err := tr.Close(); err != nil {
			logger.Errorw("close transport", "error", err)
		}
	}()

	loop := session.New(tr, motors, session.Config{
		PollInterval:        cfg.PollInterval(),
		NeutralOnDisconnect: cfg.NeutralOnDisconnect,
	}, clock.New(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("rover start: transport=%s", cfg.Transport)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("control loop: %v", err)
	}
	logger.Info("rover stopping")
}

func buildTransport(cfg *model.Config) (transport.Transport, error) {
	switch cfg.Transport {
	case "serial":
		dev, err := device.NewSerialDevice(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			return nil, err
		}
		return transport.NewSerial(dev, logger), nil
	case "ws":
		return transport.NewWS(cfg.WS.Addr, logger)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// buildPins opens the six output lines, or logging stand-ins with -dry.
func buildPins(cfg *model.Config, dry bool) (map[drive.Channel]drive.PinPair, func(), error) {
	bindings := map[drive.Channel]model.PinPairConfig{
		drive.Left:   cfg.Channels.Left,
		drive.Right:  cfg.Channels.Right,
		drive.Intake: cfg.Channels.Intake,
	}

	if dry {
		pairs := map[drive.Channel]drive.PinPair{}
		for ch, b := range bindings {
			pairs[ch] = drive.PinPair{
				A: &dryPin{offset: b.PinA},
				B: &dryPin{offset: b.PinB},
			}
		}
		return pairs, func() {}, nil
	}

	var opened []*hwpin.Pin
	closeAll := func() {
		for _, p := range opened {
			if err := p.Close(); err != nil {
				logger.Errorw("close gpio line", "error", err)
			}
		}
	}
	open := func(offset uint32) (*hwpin.Pin, error) {
		p, err := hwpin.New(cfg.GPIO.Chip, offset, cfg.GPIO.PWMFreqHz)
		if err != nil {
			return nil, err
		}
		opened = append(opened, p)
		return p, nil
	}

	pairs := map[drive.Channel]drive.PinPair{}
	for ch, b := range bindings {
		a, err := open(b.PinA)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		bp, err := open(b.PinB)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		pairs[ch] = drive.PinPair{A: a, B: bp}
	}
	return pairs, closeAll, nil
}

// dryPin logs duties instead of touching hardware.
type dryPin struct {
	offset uint32
}

func (p *dryPin) SetDuty(duty uint8) error {
	logger.Infof("pin %d duty=%d", p.offset, duty)
	return nil
}
