package drive

import (
	"fmt"

	"github.com/edaniels/golog"
)

// Pin is a single PWM-capable output line. A duty of 0 must leave the line
// low and 255 fully high.
type Pin interface {
	SetDuty(duty uint8) error
}

// PinPair binds a channel's two direction pins.
type PinPair struct {
	A Pin
	B Pin
}

// Motors holds the fixed channel to pin-pair bindings established at
// startup and applies drive instructions to them. Exactly one caller may
// use a Motors instance; pins are overwritten unconditionally on every
// applied instruction.
type Motors struct {
	pairs  map[Channel]PinPair
	logger golog.Logger
}

// NewMotors builds the binding table. All three channels must be bound.
func NewMotors(pairs map[Channel]PinPair, logger golog.Logger) (*Motors, error) {
	for _, ch := range Channels {
		pair, ok := pairs[ch]
		if !ok || pair.A == nil || pair.B == nil {
			return nil, fmt.Errorf("channel %s: missing pin binding", ch)
		}
	}
	return &Motors{pairs: pairs, logger: logger}, nil
}

// Apply writes one instruction to a channel's pins and reports the computed
// duties on the diagnostic log.
func (m *Motors) Apply(ch Channel, ins Instruction) error {
	pair, ok := m.pairs[ch]
	if !ok {
		return fmt.Errorf("channel %s: not bound", ch)
	}
	if err := pair.A.SetDuty(ins.DutyA); err != nil {
		return fmt.Errorf("channel %s pin A: %w", ch, err)
	}
	if err := pair.B.SetDuty(ins.DutyB); err != nil {
		return fmt.Errorf("channel %s pin B: %w", ch, err)
	}
	m.logger.Debugf("%s %s dutyA=%d dutyB=%d", ch, ins.Dir, ins.DutyA, ins.DutyB)
	return nil
}

// Dispatch maps the three decoded command bytes and applies each resulting
// instruction to its channel.
func (m *Motors) Dispatch(left, right, intake uint8) error {
	if err := m.Apply(Left, MapBipolar(left)); err != nil {
		return err
	}
	if err := m.Apply(Right, MapBipolar(right)); err != nil {
		return err
	}
	return m.Apply(Intake, MapIntake(intake))
}

// Neutral forces every channel to its idle state (both pins low). Used when
// the endpoint is configured to stop on controller disconnect.
func (m *Motors) Neutral() error {
	for _, ch := range Channels {
		if err := m.Apply(ch, Instruction{Dir: Neutral}); err != nil {
			return err
		}
	}
	return nil
}
