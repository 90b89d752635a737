// Package transport provides the byte-oriented serial collaborator the WSS
// codec is layered on top of.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"mqtt-wss-bridge/internal/logger"
	"mqtt-wss-bridge/internal/wss"
)

// Serial drives the module's UART. The line configuration is fixed by the
// module: 115200 baud, 8 data bits, no parity, 1 stop bit, not negotiated.
//
// The half-duplex protocol cannot multiplex overlapping requests, so Serial
// holds an exclusive lock across each Send/Receive pair initiated by the
// driver.
type Serial struct {
	device string
	port   serial.Port
	mu     sync.Mutex
}

// pollSlice is how long each blocking read waits before the deadline is
// rechecked
const pollSlice = 50 * time.Millisecond

// Open opens the module's serial device
func Open(device string) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("error opening serial device %s: %w", device, err)
	}

	logger.LogInfo("🔌 Serial device opened: %s (115200 8N1)", device)

	return &Serial{device: device, port: port}, nil
}

// Send transmits one complete frame, discarding any stale input first
func (s *Serial) Send(ctx context.Context, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Drop bytes left over from an earlier timed-out exchange
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("error resetting input buffer: %w", err)
	}

	n, err := s.port.Write(frame)
	if err != nil {
		return fmt.Errorf("error writing to %s: %w", s.device, err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write to %s: %d of %d bytes", s.device, n, len(frame))
	}

	return nil
}

// Receive accumulates bytes until a complete frame (start marker through
// stop marker) is present or the timeout elapses. A timed-out receive means
// an unanswered command; retrying is the caller's decision.
//
// The protocol has no byte stuffing, so a stop-marker sequence inside a
// payload can end accumulation early; the validator's checksum check
// catches such torn frames.
func (s *Serial) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.port.SetReadTimeout(pollSlice); err != nil {
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, wss.MaxFrameSize)
	chunk := make([]byte, 64)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("receive timeout after %s (%d bytes buffered)", timeout, len(buf))
		}

		n, err := s.port.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("error reading from %s: %w", s.device, err)
		}
		if n == 0 {
			continue
		}
		buf = append(buf, chunk[:n]...)

		if frame := extractFrame(buf); frame != nil {
			return frame, nil
		}
		if len(buf) > wss.MaxFrameSize {
			return nil, fmt.Errorf("no frame within %d buffered bytes", len(buf))
		}
	}
}

// extractFrame returns the first complete frame in buf, or nil if none is
// present yet
func extractFrame(buf []byte) []byte {
	start := -1
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == wss.StartMarker[0] && buf[i+1] == wss.StartMarker[1] {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	for i := start + 2; i+1 < len(buf); i++ {
		if buf[i] == wss.StopMarker[0] && buf[i+1] == wss.StopMarker[1] {
			return buf[start : i+2]
		}
	}
	return nil
}

// Close closes the serial device
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.LogDebug("🔌 Closing serial device: %s", s.device)
	return s.port.Close()
}
