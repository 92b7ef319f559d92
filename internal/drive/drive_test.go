package drive

import (
	"testing"

	"go.viam.com/test"
)

func TestMapBipolarFixedPoints(t *testing.T) {
	for _, tc := range []struct {
		name string
		cmd  uint8
		want Instruction
	}{
		{"full reverse", 0, Instruction{Dir: Reverse, DutyB: 254}},
		{"near reverse stop", 126, Instruction{Dir: Reverse, DutyB: 2}},
		{"neutral", 127, Instruction{Dir: Neutral}},
		{"near forward stop", 128, Instruction{Dir: Forward, DutyA: 2}},
		{"half forward", 191, Instruction{Dir: Forward, DutyA: 128}},
		// 2*(255-127)=256 wraps to 0 in the 8-bit duty width; the
		// controller-side encoding depends on this, so no clamping.
		{"full forward wraps", 255, Instruction{Dir: Forward, DutyA: 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, MapBipolar(tc.cmd), test.ShouldResemble, tc.want)
		})
	}
}

func TestMapBipolarDirectionSplit(t *testing.T) {
	for cmd := 0; cmd <= 255; cmd++ {
		ins := MapBipolar(uint8(cmd))
		switch {
		case cmd < 127:
			test.That(t, ins.Dir, test.ShouldEqual, Reverse)
			test.That(t, ins.DutyA, test.ShouldEqual, 0)
			test.That(t, ins.DutyB, test.ShouldEqual, uint8(2*(127-cmd)))
		case cmd == 127:
			test.That(t, ins.Dir, test.ShouldEqual, Neutral)
			test.That(t, ins.DutyA, test.ShouldEqual, 0)
			test.That(t, ins.DutyB, test.ShouldEqual, 0)
		default:
			test.That(t, ins.Dir, test.ShouldEqual, Forward)
			test.That(t, ins.DutyA, test.ShouldEqual, uint8(2*(cmd-127)))
			test.That(t, ins.DutyB, test.ShouldEqual, 0)
		}
	}
}

func TestMapIntakePassthrough(t *testing.T) {
	for cmd := 0; cmd <= 255; cmd++ {
		ins := MapIntake(uint8(cmd))
		test.That(t, ins.DutyA, test.ShouldEqual, uint8(cmd))
		test.That(t, ins.DutyB, test.ShouldEqual, 0)
		// No reverse branch exists for the intake.
		test.That(t, ins.Dir, test.ShouldEqual, Forward)
	}
}
