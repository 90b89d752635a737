package wss

// ResponseFrame is the parsed form of the bytes received for one request.
// It is constructed fresh per round trip and discarded after the caller
// extracts typed fields from Data; it never outlives the round trip.
type ResponseFrame struct {
	MessageID      byte
	ResultCode     byte
	DeclaredLength int
	Data           []byte
}

// Minimum sizes of a structurally complete response:
// markers(4) + MID + LEN + RESULT + checksum
const (
	minShortResponse = 4 + 1 + 1 + 1 + 1 // 1-byte length, 1-byte XOR
	minLongResponse  = 4 + 1 + 2 + 1 + 2 // 2-byte length, 2-byte CRC
)

// ParseResponse validates a raw received byte sequence against the request
// that produced it and extracts the payload region.
//
// Checks run in order and the first failure is terminal for the round trip:
// frame markers, checksum trailer, message id against the transmitted one,
// the result byte against the success sentinel, and, for descriptors that
// declare one, the expected response length. The validator never retries;
// retry policy belongs to the caller.
//
// Response structure mirrors the request, with the result byte in the
// command position:
//
//	short: [DD 01][MID][LEN][RESULT][DATA...][XOR][DD 02]
//	long:  [DD 01][MID][LEN_H LEN_L][RESULT][DATA...][CRC_L CRC_H][DD 02]
func ParseResponse(d Descriptor, sentMessageID byte, raw []byte) (*ResponseFrame, error) {
	minSize := minShortResponse
	if d.LongFormat {
		minSize = minLongResponse
	}
	if len(raw) < minSize {
		return nil, &FramingError{Reason: "response too short"}
	}

	// Frame markers at both ends
	if raw[0] != StartMarker[0] || raw[1] != StartMarker[1] {
		return nil, &FramingError{Offset: 0, Expected: StartMarker[1], Actual: raw[1]}
	}
	if raw[len(raw)-2] != StopMarker[0] || raw[len(raw)-1] != StopMarker[1] {
		return nil, &FramingError{Offset: len(raw) - 1, Expected: StopMarker[1], Actual: raw[len(raw)-1]}
	}

	// Checksum trailer over MID..last data byte
	if d.LongFormat {
		span := raw[2 : len(raw)-4]
		expected := CRC16(span)
		actual := JoinUint16LE(raw[len(raw)-4], raw[len(raw)-3])
		if actual != expected {
			return nil, &ChecksumError{Expected: expected, Actual: actual}
		}
	} else {
		span := raw[2 : len(raw)-3]
		expected := XorChecksum(span)
		actual := raw[len(raw)-3]
		if actual != expected {
			return nil, &ChecksumError{Expected: uint16(expected), Actual: uint16(actual)}
		}
	}

	// Message id must echo the one just transmitted
	messageID := raw[2]
	if messageID != sentMessageID {
		return nil, &MessageIDMismatchError{Sent: sentMessageID, Received: messageID}
	}

	var declared int
	var resultOffset int
	var trailerLen int
	if d.LongFormat {
		// Big-endian length field, opposite of the data fields
		declared = int(raw[3])<<8 | int(raw[4])
		resultOffset = 5
		trailerLen = 4 // CRC(2) + stop marker(2)
	} else {
		declared = int(raw[3])
		resultOffset = 4
		trailerLen = 3 // XOR(1) + stop marker(2)
	}

	// The declared length covers the result byte through the last data byte;
	// it must agree with the bytes actually present before the data region
	// can be sliced out
	actualSpan := len(raw) - trailerLen - resultOffset
	if declared != actualSpan {
		return nil, &FramingError{Reason: "declared length disagrees with frame size"}
	}

	resultCode := raw[resultOffset]
	if resultCode != ResultSuccess {
		return nil, &DeviceRejectedError{Operation: d.Name, Code: resultCode}
	}

	if d.ResponseLength != 0 && declared != d.ResponseLength {
		return nil, &LengthMismatchError{Declared: declared, Expected: d.ResponseLength}
	}

	return &ResponseFrame{
		MessageID:      messageID,
		ResultCode:     resultCode,
		DeclaredLength: declared,
		Data:           raw[resultOffset+1 : len(raw)-trailerLen],
	}, nil
}
