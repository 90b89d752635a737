package wss

import (
	"errors"
	"testing"
)

func TestPackTableByteRoundTrip(t *testing.T) {
	// Every valid 4-bit pair must survive a pack/unpack round trip
	for sub := byte(0); sub <= 0x0F; sub++ {
		for group := byte(0); group <= 0x0F; group++ {
			packed, err := PackTableByte(sub, group)
			if err != nil {
				t.Fatalf("PackTableByte(%d, %d) failed: %v", sub, group, err)
			}
			gotSub, gotGroup := UnpackTableByte(packed)
			if gotSub != sub || gotGroup != group {
				t.Errorf("round trip (%d, %d) -> 0x%02X -> (%d, %d)",
					sub, group, packed, gotSub, gotGroup)
			}
		}
	}
}

func TestPackTableByteOutOfRange(t *testing.T) {
	tests := []struct {
		name       string
		sub, group byte
	}{
		{name: "sub-address too large", sub: 0x10, group: 0x01},
		{name: "channel-group too large", sub: 0x01, group: 0x10},
		{name: "both too large", sub: 0xFF, group: 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PackTableByte(tt.sub, tt.group)
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("PackTableByte(%d, %d) = %v, expected ErrOutOfRange", tt.sub, tt.group, err)
			}
		})
	}
}

func TestUint16LERoundTrip(t *testing.T) {
	// Exhaustive over all byte pairs
	for lo := 0; lo <= 0xFF; lo++ {
		for hi := 0; hi <= 0xFF; hi++ {
			gotLo, gotHi := SplitUint16LE(JoinUint16LE(byte(lo), byte(hi)))
			if gotLo != byte(lo) || gotHi != byte(hi) {
				t.Fatalf("round trip (%02X, %02X) -> (%02X, %02X)", lo, hi, gotLo, gotHi)
			}
		}
	}

	lo, hi := SplitUint16LE(0xABCD)
	if lo != 0xCD || hi != 0xAB {
		t.Errorf("SplitUint16LE(0xABCD) = (%02X, %02X), expected (CD, AB)", lo, hi)
	}
}

func TestUint32LERoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0xDEADBEEF, 0xFFFFFFFF, 86400}
	for _, v := range values {
		b0, b1, b2, b3 := SplitUint32LE(v)
		if got := JoinUint32LE(b0, b1, b2, b3); got != v {
			t.Errorf("round trip 0x%08X -> 0x%08X", v, got)
		}
	}

	b0, b1, b2, b3 := SplitUint32LE(0x12345678)
	if b0 != 0x78 || b1 != 0x56 || b2 != 0x34 || b3 != 0x12 {
		t.Errorf("SplitUint32LE(0x12345678) = (%02X %02X %02X %02X), expected (78 56 34 12)",
			b0, b1, b2, b3)
	}
}

func TestScaleToUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected int32
	}{
		{name: "exact multiple", value: 193100.0, expected: 61792},
		{name: "zero", value: 0, expected: 0},
		{name: "one step", value: 3.125, expected: 1},
		{name: "rounds to nearest", value: 4.0, expected: 1},   // 1.28 steps
		{name: "rounds up", value: 4.7, expected: 2},           // 1.504 steps
		{name: "negative offset", value: -3.125, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaleToUnits(tt.value, FrequencyStep); got != tt.expected {
				t.Errorf("ScaleToUnits(%v) = %d, expected %d", tt.value, got, tt.expected)
			}
		})
	}

	// Inverse direction
	if got := UnitsToValue(61792, FrequencyStep); got != 193100.0 {
		t.Errorf("UnitsToValue(61792) = %v, expected 193100.0", got)
	}
}

func TestAttenuationToCode(t *testing.T) {
	tests := []struct {
		name     string
		db       float32
		expected byte
	}{
		{name: "typical value", db: 12.3, expected: 123},
		{name: "zero", db: 0, expected: 0},
		{name: "tenth resolution", db: 0.1, expected: 1},
		{name: "max real attenuation", db: 25.4, expected: 254},
		{name: "block sentinel exact", db: 25.5, expected: 255},
		{name: "near maximum never hits sentinel", db: 25.46, expected: 254},
		{name: "above range clamps below sentinel", db: 30.0, expected: 254},
		{name: "negative clamps to zero", db: -1.5, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttenuationToCode(tt.db); got != tt.expected {
				t.Errorf("AttenuationToCode(%v) = %d, expected %d", tt.db, got, tt.expected)
			}
		})
	}
}

func TestCodeToAttenuation(t *testing.T) {
	if got := CodeToAttenuation(123); got != 12.3 {
		t.Errorf("CodeToAttenuation(123) = %v, expected 12.3", got)
	}
	if got := CodeToAttenuation(AttenuationCodeBlocked); got != AttenuationBlocked {
		t.Errorf("CodeToAttenuation(255) = %v, expected %v", got, AttenuationBlocked)
	}
}
