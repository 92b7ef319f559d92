// Package codec packs and unpacks the 32-bit encoded motor command.
//
// Encoded command layout (least significant byte first):
//
//	byte 0: reserved, ignored
//	byte 1: left drive command
//	byte 2: right drive command
//	byte 3: intake command
//
// Each command byte is a bipolar value in [0,255] with 128 as neutral for
// the drive channels; the intake channel reads it as a raw duty.
package codec

// Decode splits an encoded command into its per-channel command bytes.
// Every input is valid: the low byte is discarded unconditionally and any
// bit pattern yields a deterministic triple.
func Decode(v uint32) (left, right, intake uint8) {
	return uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)
}

// Encode is the controller-side inverse of Decode. The reserved low byte is
// emitted as zero.
func Encode(left, right, intake uint8) uint32 {
	return uint32(left)<<8 | uint32(right)<<16 | uint32(intake)<<24
}
