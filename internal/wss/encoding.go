package wss

import (
	"fmt"
	"math"
)

// Attenuation encoding constants
const (
	// AttenuationBlocked is the reserved attenuation value meaning
	// "channel blocked/off"; it encodes to AttenuationCodeBlocked
	AttenuationBlocked float32 = 25.5

	// AttenuationCodeBlocked is the reserved wire code for a blocked channel
	// It is a sentinel, not an attenuation value, and must never be produced
	// by rounding a near-maximum attenuation
	AttenuationCodeBlocked byte = 255

	// AttenuationCodeMax is the largest wire code for a real attenuation
	// (25.4 dB)
	AttenuationCodeMax byte = 254
)

// FrequencyStep is the module's fixed-point frequency grid step
// Frequency and bandwidth fields on the wire are counts of this step
const FrequencyStep = 3.125

// PackTableByte packs two 4-bit identifiers into the single "table byte":
// the sub-address in the high nibble and the channel-group id in the low
// nibble. Either value exceeding 4 bits is a caller error, never silently
// truncated.
func PackTableByte(subAddress, channelGroup byte) (byte, error) {
	if subAddress > 0x0F {
		return 0, fmt.Errorf("sub-address 0x%02X exceeds 4 bits: %w", subAddress, ErrOutOfRange)
	}
	if channelGroup > 0x0F {
		return 0, fmt.Errorf("channel-group 0x%02X exceeds 4 bits: %w", channelGroup, ErrOutOfRange)
	}
	return (subAddress << 4) | channelGroup, nil
}

// UnpackTableByte splits a table byte back into its two 4-bit identifiers
func UnpackTableByte(b byte) (subAddress, channelGroup byte) {
	return b >> 4, b & 0x0F
}

// SplitUint16LE splits a 16-bit value into its wire bytes, low byte first
// Every two-byte data field on the line is little-endian; only the
// long-format length field diverges from this
func SplitUint16LE(value uint16) (lo, hi byte) {
	return byte(value & 0xFF), byte(value >> 8)
}

// JoinUint16LE joins two wire bytes (low byte first) into a 16-bit value
func JoinUint16LE(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

// SplitUint32LE splits a 32-bit value into four wire bytes, low byte first
func SplitUint32LE(value uint32) (b0, b1, b2, b3 byte) {
	return byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)
}

// JoinUint32LE joins four wire bytes (low byte first) into a 32-bit value
func JoinUint32LE(b0, b1, b2, b3 byte) uint32 {
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}

// ScaleToUnits converts a physical quantity (frequency, bandwidth) to the
// module's fixed-point step representation, rounding to the nearest step.
// Values that do not divide evenly are accepted but lose precision.
func ScaleToUnits(value, step float64) int32 {
	return int32(math.Round(value / step))
}

// UnitsToValue converts a fixed-point step count back to a physical quantity
func UnitsToValue(units int32, step float64) float64 {
	return float64(units) * step
}

// AttenuationToCode converts an attenuation in dB to its wire code
// (tenths of a dB). The result is clamped to [0, AttenuationCodeMax];
// only the exact AttenuationBlocked value produces the reserved block
// sentinel 255, so a near-maximum attenuation never rounds onto it.
func AttenuationToCode(db float32) byte {
	if db == AttenuationBlocked {
		return AttenuationCodeBlocked
	}

	code := int(math.Round(float64(db) * 10))
	if code < 0 {
		return 0
	}
	if code > int(AttenuationCodeMax) {
		return AttenuationCodeMax
	}
	return byte(code)
}

// CodeToAttenuation converts a wire code back to an attenuation in dB
// The block sentinel decodes to AttenuationBlocked; callers that need to
// distinguish it should compare the code against AttenuationCodeBlocked
func CodeToAttenuation(code byte) float32 {
	return float32(code) / 10
}
