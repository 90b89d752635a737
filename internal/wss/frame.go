package wss

import "fmt"

// Wire format constants
const (
	markerLead  = 0xDD
	markerStart = 0x01
	markerStop  = 0x02

	// MaxFrameSize is the transport-imposed maximum size of a complete frame
	MaxFrameSize = 255

	// RecordSize is the fixed size of one ChannelRecord on the wire
	RecordSize = 7
)

// Command word flag bits, OR'd into the base command byte of long-format
// frames
const (
	flagLongFormat = 0x80
	flagTableByte  = 0x40
)

// Module result codes reported in the response status byte
const (
	ResultSuccess          = 0x00
	ResultInvalidCommand   = 0x01
	ResultInvalidObject    = 0x02
	ResultInvalidInstance  = 0x03
	ResultInvalidParameter = 0x04
	ResultValueOutOfRange  = 0x05
	ResultChecksumError    = 0x06
	ResultBusy             = 0x07
	ResultHardwareFault    = 0x08
)

// StartMarker opens every request and response frame
var StartMarker = [2]byte{markerLead, markerStart}

// StopMarker closes every request and response frame
var StopMarker = [2]byte{markerLead, markerStop}

// Operation is the base command code of a request
type Operation byte

// Base command codes (vendor protocol)
const (
	OpWrite      Operation = 0x01
	OpRead       Operation = 0x02
	OpMultiWrite Operation = 0x03
	OpArrayWrite Operation = 0x04
)

// String returns the operation name
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpRead:
		return "read"
	case OpMultiWrite:
		return "multi-write"
	case OpArrayWrite:
		return "array-write"
	default:
		return fmt.Sprintf("operation 0x%02X", byte(op))
	}
}

// Descriptor describes one distinct module operation: its command code,
// addressing bytes and payload shape. Descriptors are immutable, created
// once per operation in the command table and shared by every call to that
// operation.
type Descriptor struct {
	Name string
	// MessageID is the operation's base message id, used when a builder is
	// invoked directly. The driver ignores it and stamps a rolling id
	// instead.
	MessageID     byte
	Operation     Operation
	LongFormat    bool // long variable-length format with CRC16 trailer
	UsesTableByte bool // a packed sub-address/channel-group byte follows the command
	Object        byte
	Instance      byte
	Parameter     byte
	SubCommand    byte // second byte of the long-format command word
	// ResponseLength is the expected declared length of the response,
	// a fixed per-command value confirmed per firmware revision;
	// zero disables the check
	ResponseLength int
}

// ChannelRecord is one repeating unit inside a long-format multi-record
// payload. Its wire size is RecordSize bytes.
type ChannelRecord struct {
	Object          byte
	Group           byte
	Sub             byte
	Channel         byte
	ParameterTag    byte
	Port            byte
	AttenuationCode byte
}

// appendTo emits the record's fixed 7-byte wire form
func (r ChannelRecord) appendTo(frame []byte) []byte {
	return append(frame,
		r.Object, r.Group, r.Sub, r.Channel, r.ParameterTag, r.Port, r.AttenuationCode)
}

// BuildChannelRecords assembles one ChannelRecord per index from the
// caller's parallel slices. All slices must have the same length; a
// mismatch fails before any byte is emitted.
func BuildChannelRecords(d Descriptor, group, sub byte, channels, ports []byte, attenuations []float32) ([]ChannelRecord, error) {
	if len(ports) != len(channels) || len(attenuations) != len(channels) {
		return nil, fmt.Errorf("channels=%d ports=%d attenuations=%d: %w",
			len(channels), len(ports), len(attenuations), ErrArgumentMismatch)
	}

	records := make([]ChannelRecord, 0, len(channels))
	for i := range channels {
		records = append(records, ChannelRecord{
			Object:          d.Object,
			Group:           group,
			Sub:             sub,
			Channel:         channels[i],
			ParameterTag:    d.Parameter,
			Port:            ports[i],
			AttenuationCode: AttenuationToCode(attenuations[i]),
		})
	}
	return records, nil
}

// BuildShortRequest assembles a complete short-format request frame.
//
// Frame structure:
//
//	[DD 01][MID][LEN][CMD][TABLE?][OBJ][INST][PARAM][VALUE...][XOR][DD 02]
//
// LEN counts the command byte through the last payload byte. The XOR
// checksum spans the message id through the last payload byte.
//
// messageID is stamped by the caller; the driver rolls it per request so a
// delayed answer to an earlier identical poll cannot validate against the
// current one.
func BuildShortRequest(d Descriptor, messageID byte, tableByte byte, value []byte) ([]byte, error) {
	// CMD + optional table byte + OBJ/INST/PARAM + value bytes
	length := 1 + 3 + len(value)
	if d.UsesTableByte {
		length++
	}

	// markers(4) + MID + LEN + body + XOR
	if 4+2+length+1 > MaxFrameSize {
		return nil, fmt.Errorf("%s frame of %d bytes: %w", d.Name, 4+2+length+1, ErrPayloadTooLarge)
	}

	frame := make([]byte, 0, 4+2+length+1)
	frame = append(frame, StartMarker[0], StartMarker[1])
	frame = append(frame, messageID)
	frame = append(frame, byte(length))
	frame = append(frame, byte(d.Operation))
	if d.UsesTableByte {
		frame = append(frame, tableByte)
	}
	frame = append(frame, d.Object, d.Instance, d.Parameter)
	frame = append(frame, value...)

	// XOR over MID..last payload byte, exclusive of markers and checksum
	frame = append(frame, XorChecksum(frame[2:]))
	frame = append(frame, StopMarker[0], StopMarker[1])

	return frame, nil
}

// BuildLongRequest assembles a complete long-format request frame carrying
// zero or more ChannelRecords.
//
// Frame structure:
//
//	[DD 01][MID][LEN_H LEN_L][CW0 CW1][TABLE?][RECORDS...][CRC_L CRC_H][DD 02]
//
// The two-byte length field is big-endian, the opposite byte order from
// the little-endian data fields, and counts the command word through the
// last record byte. It is computed from the assembled payload, never
// hand-typed. CW0 is the base command byte with the long-format flag (and
// the table-byte flag when one follows) OR'd in; CW1 is the descriptor's
// sub-command. The CRC16 trailer spans the message id through the last
// record byte.
func BuildLongRequest(d Descriptor, messageID byte, tableByte byte, records []ChannelRecord) ([]byte, error) {
	length := 2 + len(records)*RecordSize
	if d.UsesTableByte {
		length++
	}

	// markers(4) + MID + LEN(2) + body + CRC(2)
	total := 4 + 3 + length + 2
	if total > MaxFrameSize {
		return nil, fmt.Errorf("%s frame of %d bytes (%d records): %w",
			d.Name, total, len(records), ErrPayloadTooLarge)
	}

	cw0 := byte(d.Operation) | flagLongFormat
	if d.UsesTableByte {
		cw0 |= flagTableByte
	}

	frame := make([]byte, 0, total)
	frame = append(frame, StartMarker[0], StartMarker[1])
	frame = append(frame, messageID)
	frame = append(frame, byte(length>>8), byte(length&0xFF))
	frame = append(frame, cw0, d.SubCommand)
	if d.UsesTableByte {
		frame = append(frame, tableByte)
	}
	for _, r := range records {
		frame = r.appendTo(frame)
	}

	// CRC16 over MID..last record byte, little-endian trailer
	crc := CRC16(frame[2:])
	frame = append(frame, byte(crc&0xFF), byte(crc>>8))
	frame = append(frame, StopMarker[0], StopMarker[1])

	return frame, nil
}
