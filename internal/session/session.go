// Package session runs the rover's control loop: it waits for a remote
// controller to attach, then polls the transport for newly written commands
// and drives them through the codec into the motors.
//
// The loop is a two-state machine, Idle <-> Connected, and runs on a single
// goroutine for the lifetime of the process. Commands are applied strictly
// in arrival order, one full instruction set per detected write; the
// transport only surfaces the most recent write, so values the controller
// overwrites between polls are never applied.
package session

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"roverctl/internal/codec"
	"roverctl/internal/drive"
	"roverctl/internal/transport"
)

// DefaultPollInterval bounds how stale an applied command can be. The
// reference loop spun at full rate; an explicit tick keeps the behavior
// while making it configurable and testable.
const DefaultPollInterval = 20 * time.Millisecond

// Config tunes the loop.
type Config struct {
	// PollInterval is the transport polling period. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration

	// NeutralOnDisconnect forces all channels to neutral when the
	// controller detaches. Off by default: the reference behavior leaves
	// motors at their last commanded state, and the flag exists so the
	// fail-safe alternative is an explicit deployment decision.
	NeutralOnDisconnect bool
}

// Loop polls one transport and drives one set of motors. It is the
// transport's only consumer.
type Loop struct {
	tr     transport.Transport
	motors *drive.Motors
	cfg    Config
	clk    clock.Clock
	logger golog.Logger

	connected bool
}

// New builds a loop. Pass clock.New() outside of tests.
func New(tr transport.Transport, motors *drive.Motors, cfg Config, clk clock.Clock, logger golog.Logger) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Loop{tr: tr, motors: motors, cfg: cfg, clk: clk, logger: logger}
}

// Run polls until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clk.Ticker(l.cfg.PollInterval)
	defer ticker.Stop()
	l.logger.Infof("control loop running, poll interval %s", l.cfg.PollInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.step()
		}
	}
}

// step advances the state machine by one poll.
func (l *Loop) step() {
	connected := l.tr.Connected()
	switch {
	case connected && !l.connected:
		l.connected = true
		l.logger.Infof("controller connected: %s", l.tr.RemoteIdentity())
	case !connected && l.connected:
		l.connected = false
		l.logger.Info("controller disconnected")
		if l.cfg.NeutralOnDisconnect {
			if err := l.motors.Neutral(); err != nil {
				l.logger.Errorw("neutral on disconnect", "error", err)
			}
		}
		return
	}
	if !l.connected || !l.tr.HasNewValue() {
		return
	}

	v := l.tr.Value()
	left, right, intake := codec.Decode(v)
	if err := l.motors.Dispatch(left, right, intake); err != nil {
		l.logger.Errorw("apply command", "value", v, "error", err)
	}
}
