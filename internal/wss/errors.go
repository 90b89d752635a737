package wss

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller mistakes detected before any byte is emitted
var (
	// ErrArgumentMismatch indicates parallel argument slices of unequal length
	ErrArgumentMismatch = errors.New("argument slices differ in length")

	// ErrOutOfRange indicates a value that does not fit its sub-byte field
	ErrOutOfRange = errors.New("value out of range for field")

	// ErrPayloadTooLarge indicates a frame that would exceed MaxFrameSize
	ErrPayloadTooLarge = errors.New("payload exceeds maximum frame size")
)

// TransportError wraps a send/receive/timeout failure from the serial line
// A timed-out receive means an unanswered command; the codec never retries
type TransportError struct {
	Op  string // Operation that failed ("send", "receive")
	Err error  // Underlying error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// FramingError indicates a response whose start/stop markers or overall
// structure do not match the wire format
type FramingError struct {
	Offset   int
	Expected byte
	Actual   byte
	Reason   string
}

func (e *FramingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("framing error: %s", e.Reason)
	}
	return fmt.Sprintf("framing error at offset %d: got 0x%02X, expected 0x%02X",
		e.Offset, e.Actual, e.Expected)
}

// ChecksumError indicates a response whose checksum trailer does not match
// the span it covers, a strong signal of line corruption
type ChecksumError struct {
	Expected uint16
	Actual   uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: got 0x%04X, expected 0x%04X", e.Actual, e.Expected)
}

// MessageIDMismatchError indicates a response carrying a message id other
// than the one just transmitted (stale or out-of-order response on the
// half-duplex line)
type MessageIDMismatchError struct {
	Sent     byte
	Received byte
}

func (e *MessageIDMismatchError) Error() string {
	return fmt.Sprintf("message id mismatch: sent 0x%02X, received 0x%02X", e.Sent, e.Received)
}

// LengthMismatchError indicates a declared length field that does not match
// the descriptor's expected value, a strong signal of protocol
// desynchronization
type LengthMismatchError struct {
	Declared int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: declared %d, expected %d", e.Declared, e.Expected)
}

// DeviceRejectedError indicates the module answered the request but reported
// a non-success result byte; distinct from any transport-level failure
type DeviceRejectedError struct {
	Operation string
	Code      byte
}

func (e *DeviceRejectedError) Error() string {
	return fmt.Sprintf("%s rejected by module: %s (0x%02X)", e.Operation, resultName(e.Code), e.Code)
}

// IsDeviceRejected returns true if the error is a DeviceRejectedError
func IsDeviceRejected(err error) bool {
	var rejected *DeviceRejectedError
	return errors.As(err, &rejected)
}

// resultName returns a human-readable name for a module result code
func resultName(code byte) string {
	switch code {
	case ResultSuccess:
		return "success"
	case ResultInvalidCommand:
		return "unrecognized command"
	case ResultInvalidObject:
		return "invalid object id"
	case ResultInvalidInstance:
		return "invalid instance"
	case ResultInvalidParameter:
		return "invalid parameter"
	case ResultValueOutOfRange:
		return "value out of range"
	case ResultChecksumError:
		return "checksum rejected"
	case ResultBusy:
		return "module busy"
	case ResultHardwareFault:
		return "hardware fault"
	default:
		return "unknown result code"
	}
}
