package wss

import "testing"

func TestCRC16Calculation(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "standard check sequence",
			data:     []byte("123456789"),
			expected: 0x4B37, // CRC-16/MODBUS check value for this variant
		},
		{
			name:     "short read span",
			data:     []byte{0x0B, 0x03, 0x20, 0x00, 0x00, 0x22},
			expected: 0xB9CE,
		},
		{
			name:     "three bytes",
			data:     []byte{0x10, 0x20, 0x30},
			expected: 0xD169,
		},
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0xFFFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC16(tt.data)
			if result != tt.expected {
				t.Errorf("CRC16(%v) = 0x%04X, expected 0x%04X", tt.data, result, tt.expected)
			}
		})
	}
}

func TestCRC16OrderMatters(t *testing.T) {
	// Unlike XOR, the CRC depends on byte order
	a := CRC16([]byte{0x01, 0x02, 0x03})
	b := CRC16([]byte{0x03, 0x02, 0x01})
	if a == b {
		t.Errorf("CRC16 should differ under reordering, both gave 0x%04X", a)
	}
}

func TestXorChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{name: "empty", data: []byte{}, expected: 0x00},
		{name: "single byte", data: []byte{0x5A}, expected: 0x5A},
		{name: "pair cancels", data: []byte{0x5A, 0x5A}, expected: 0x00},
		{name: "read header", data: []byte{0x12, 0x04, 0x02, 0x01, 0x01, 0x03}, expected: 0x17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := XorChecksum(tt.data)
			if result != tt.expected {
				t.Errorf("XorChecksum(%v) = 0x%02X, expected 0x%02X", tt.data, result, tt.expected)
			}
		})
	}
}

func TestXorChecksumCommutative(t *testing.T) {
	// XOR is order independent, unlike the CRC
	a := XorChecksum([]byte{0x01, 0x02, 0x03, 0x7F})
	b := XorChecksum([]byte{0x7F, 0x03, 0x02, 0x01})
	if a != b {
		t.Errorf("XorChecksum should be order independent: 0x%02X != 0x%02X", a, b)
	}
}

func TestAppendAndVerifyCRC(t *testing.T) {
	data := []byte{0x0B, 0x03, 0x20, 0x00, 0x00, 0x22}

	withCRC := AppendCRC(data)
	if len(withCRC) != len(data)+2 {
		t.Fatalf("AppendCRC length = %d, expected %d", len(withCRC), len(data)+2)
	}

	// Little-endian trailer: low byte first
	if withCRC[len(data)] != 0xCE || withCRC[len(data)+1] != 0xB9 {
		t.Errorf("CRC trailer = %02X %02X, expected CE B9",
			withCRC[len(data)], withCRC[len(data)+1])
	}

	if !VerifyCRC(withCRC) {
		t.Error("VerifyCRC rejected a valid trailer")
	}

	withCRC[2] ^= 0xFF
	if VerifyCRC(withCRC) {
		t.Error("VerifyCRC accepted a corrupted span")
	}
}
