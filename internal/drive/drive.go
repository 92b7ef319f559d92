// Package drive converts per-channel command bytes into directional PWM
// drive instructions and applies them to the channel's output pins.
package drive

import "fmt"

// Channel identifies one independently driven motor output.
type Channel int

// The three motor channels of the rover.
const (
	Left Channel = iota
	Right
	Intake
)

// Channels lists every channel in dispatch order.
var Channels = []Channel{Left, Right, Intake}

func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	case Intake:
		return "intake"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Direction classifies a drive instruction.
type Direction int

// Reverse drives pin B, Forward drives pin A, Neutral holds both low.
const (
	Reverse Direction = iota - 1
	Neutral
	Forward
)

func (d Direction) String() string {
	switch d {
	case Reverse:
		return "reverse"
	case Neutral:
		return "neutral"
	case Forward:
		return "forward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Instruction is the derived output state for one channel: a PWM duty per
// direction pin. At most one of the two duties is non-zero. Instructions
// carry no history; each one fully overwrites the channel's previous state.
type Instruction struct {
	Dir   Direction
	DutyA uint8 // duty written to direction pin A (forward side)
	DutyB uint8 // duty written to direction pin B (reverse side)
}

// MapBipolar converts a command byte from a bipolar drive channel into an
// Instruction. The transform is 2*(cmd-127) computed in a wide signed
// domain; the sign picks the direction and the duty is the magnitude
// truncated to the 8-bit PWM width with wraparound, matching the
// controller-side encoding bit for bit. Notably cmd=255 yields a forward
// duty of 0 (256 wraps) and cmd=128 yields forward duty 2; only cmd=127 is
// neutral.
func MapBipolar(cmd uint8) Instruction {
	shifted := 2 * (int(cmd) - 127)
	switch {
	case shifted > 0:
		return Instruction{Dir: Forward, DutyA: uint8(shifted)}
	case shifted < 0:
		return Instruction{Dir: Reverse, DutyB: uint8(-shifted)}
	default:
		return Instruction{Dir: Neutral}
	}
}

// MapIntake converts a command byte for the intake channel. The intake is
// deliberately unidirectional: the raw byte is the duty on pin A and pin B
// is held low, with no reverse or neutral branch.
func MapIntake(cmd uint8) Instruction {
	return Instruction{Dir: Forward, DutyA: cmd}
}
