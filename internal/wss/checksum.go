package wss

// XorChecksum calculates the single-byte checksum used by short-format frames
// This is a running XOR over the span from the message id through the last
// payload byte
func XorChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// CRC16 calculates the CRC-16 checksum used by long-format frames
// This implements the IBM/ANSI reflected variant (polynomial 0xA001,
// initial value 0xFFFF), the same algorithm used by Modbus RTU
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)

	for _, b := range data {
		crc ^= uint16(b)

		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc >>= 1
				crc ^= 0xA001
			} else {
				crc >>= 1
			}
		}
	}

	return crc
}

// AppendCRC appends the CRC16 checksum to the data
// The CRC is appended in little-endian format (low byte first, high byte
// second), matching every other multi-byte data field on the wire
func AppendCRC(data []byte) []byte {
	crc := CRC16(data)

	result := make([]byte, len(data)+2)
	copy(result, data)
	result[len(data)] = byte(crc & 0xFF)          // Low byte
	result[len(data)+1] = byte((crc >> 8) & 0xFF) // High byte

	return result
}

// VerifyCRC verifies a little-endian CRC16 trailer against the preceding span
// Returns true if the trailer matches the computed checksum
func VerifyCRC(data []byte) bool {
	if len(data) < 3 {
		return false
	}

	span := data[:len(data)-2]
	calculated := CRC16(span)

	trailer := uint16(data[len(data)-2]) | (uint16(data[len(data)-1]) << 8)

	return calculated == trailer
}
