package wss

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildShortRequestReadCommand(t *testing.T) {
	d := Commands[CmdMinFrequencyBound]

	frame, err := BuildShortRequest(d, d.MessageID, 0, nil)
	if err != nil {
		t.Fatalf("BuildShortRequest failed: %v", err)
	}

	expected := []byte{
		0xDD, 0x01, // start marker
		0x12,       // message id
		0x04,       // length: CMD + OBJ + INST + PARAM
		0x02,       // read
		0x01, 0x01, 0x03, // object, instance, parameter
		0x17,       // XOR over 12 04 02 01 01 03
		0xDD, 0x02, // stop marker
	}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame mismatch:\ngot      % X\nexpected % X", frame, expected)
	}
}

func TestBuildShortRequestWithTableByte(t *testing.T) {
	d := Commands[CmdSetChannelAtten]

	tableByte, err := PackTableByte(2, 1)
	if err != nil {
		t.Fatalf("PackTableByte failed: %v", err)
	}

	// Channel 5 to 12.3 dB (wire code 0x7B)
	frame, err := BuildShortRequest(d, d.MessageID, tableByte, []byte{5, AttenuationToCode(12.3)})
	if err != nil {
		t.Fatalf("BuildShortRequest failed: %v", err)
	}

	expected := []byte{
		0xDD, 0x01,
		0x21,       // message id
		0x07,       // length: CMD + TABLE + OBJ + INST + PARAM + 2 value bytes
		0x01,       // write
		0x21,       // table byte: sub-address 2, channel-group 1
		0x05, 0x01, 0x03, // object, instance, parameter
		0x05, 0x7B, // channel, attenuation code
		0x7F, // XOR over 21 07 01 21 05 01 03 05 7B
		0xDD, 0x02,
	}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame mismatch:\ngot      % X\nexpected % X", frame, expected)
	}
}

func TestBuildShortRequestChecksumSpan(t *testing.T) {
	d := Commands[CmdVendorName]

	frame, err := BuildShortRequest(d, d.MessageID, 0, nil)
	if err != nil {
		t.Fatalf("BuildShortRequest failed: %v", err)
	}

	// The checksum byte sits just before the stop marker and covers
	// everything from the message id up to it
	xorPos := len(frame) - 3
	if got := XorChecksum(frame[2:xorPos]); got != frame[xorPos] {
		t.Errorf("checksum 0x%02X does not match span XOR 0x%02X", frame[xorPos], got)
	}
}

func TestBuildShortRequestTooLarge(t *testing.T) {
	d := Commands[CmdSetChannelAtten]

	_, err := BuildShortRequest(d, d.MessageID, 0x21, make([]byte, MaxFrameSize))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestBuildLongRequest(t *testing.T) {
	d := Commands[CmdUpdateChannels]

	records, err := BuildChannelRecords(d, 1, 2,
		[]byte{1, 2, 3},        // channels
		[]byte{1, 1, 2},        // ports
		[]float32{0, 12.3, 25.5})
	if err != nil {
		t.Fatalf("BuildChannelRecords failed: %v", err)
	}

	tableByte, _ := PackTableByte(2, 1)
	frame, err := BuildLongRequest(d, d.MessageID, tableByte, records)
	if err != nil {
		t.Fatalf("BuildLongRequest failed: %v", err)
	}

	// markers(4) + MID + LEN(2) + CW(2) + table + 3 records + CRC(2)
	if len(frame) != 4+3+2+1+3*RecordSize+2 {
		t.Fatalf("frame length %d, expected %d", len(frame), 4+3+2+1+3*RecordSize+2)
	}

	header := []byte{
		0xDD, 0x01,
		0x23,       // message id
		0x00, 0x18, // big-endian length: CW(2) + table(1) + 21 record bytes
		0xC4, 0x01, // command word: array-write | long | table, sub-command
		0x21, // table byte
	}
	if !bytes.Equal(frame[:len(header)], header) {
		t.Errorf("header mismatch:\ngot      % X\nexpected % X", frame[:len(header)], header)
	}

	// Second record: object, group, sub, channel, tag, port, code
	rec := frame[len(header)+RecordSize : len(header)+2*RecordSize]
	expectedRec := []byte{0x05, 0x01, 0x02, 0x02, 0x03, 0x01, 0x7B}
	if !bytes.Equal(rec, expectedRec) {
		t.Errorf("record mismatch:\ngot      % X\nexpected % X", rec, expectedRec)
	}

	// Blocked channel carries the sentinel code
	if code := frame[len(header)+3*RecordSize-1]; code != AttenuationCodeBlocked {
		t.Errorf("blocked channel code 0x%02X, expected 0x%02X", code, AttenuationCodeBlocked)
	}

	// CRC trailer covers message id through last record byte
	if !VerifyCRC(frame[2 : len(frame)-2]) {
		t.Error("CRC trailer does not verify against the frame body")
	}
}

func TestBuildLongRequestTooManyRecords(t *testing.T) {
	d := Commands[CmdUpdateChannels]

	// 36 records push the frame past the transport limit
	records := make([]ChannelRecord, 36)
	_, err := BuildLongRequest(d, d.MessageID, 0x21, records)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestBuildChannelRecordsLengthMismatch(t *testing.T) {
	d := Commands[CmdUpdateChannels]

	tests := []struct {
		name         string
		channels     []byte
		ports        []byte
		attenuations []float32
	}{
		{name: "short ports", channels: []byte{1, 2}, ports: []byte{1}, attenuations: []float32{0, 0}},
		{name: "short attenuations", channels: []byte{1, 2}, ports: []byte{1, 1}, attenuations: []float32{0}},
		{name: "extra attenuations", channels: []byte{1}, ports: []byte{1}, attenuations: []float32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildChannelRecords(d, 1, 1, tt.channels, tt.ports, tt.attenuations)
			if !errors.Is(err, ErrArgumentMismatch) {
				t.Errorf("expected ErrArgumentMismatch, got %v", err)
			}
		})
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
	}{
		{op: OpWrite, expected: "write"},
		{op: OpRead, expected: "read"},
		{op: OpMultiWrite, expected: "multi-write"},
		{op: OpArrayWrite, expected: "array-write"},
		{op: Operation(0x7E), expected: "operation 0x7E"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("Operation(0x%02X).String() = %q, expected %q", byte(tt.op), got, tt.expected)
		}
	}
}
