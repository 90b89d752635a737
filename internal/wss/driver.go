package wss

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mqtt-wss-bridge/internal/logger"
)

// Transport is the byte-oriented collaborator the codec is layered on top
// of. Implementations own the serial line (115200 8N1); the codec performs
// no I/O of its own.
type Transport interface {
	// Send transmits one complete frame
	Send(ctx context.Context, frame []byte) error

	// Receive blocks for one complete response frame within the timeout.
	// A timeout means an unanswered command and is surfaced as an error,
	// never retried here.
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Close releases the underlying line
	Close() error
}

// Driver executes module operations as synchronous request/response round
// trips over a Transport. One transmit, one bounded receive, then
// validation; the driver never retries, retry policy belongs to the caller.
//
// The serial line is half-duplex with no request multiplexing, so the
// driver serializes round trips with a mutex. The codec itself is stateless
// between calls.
type Driver struct {
	transport Transport
	table     map[string]Descriptor
	timeout   time.Duration
	mu        sync.Mutex

	// nextMessageID rolls per request so a delayed answer to an earlier
	// identical poll cannot validate against the current one. Zero is
	// skipped; it is reserved as "no message".
	nextMessageID byte
}

// NewDriver creates a driver over the given transport using the package
// command table. The timeout bounds each receive.
func NewDriver(transport Transport, timeout time.Duration) *Driver {
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	return &Driver{
		transport:     transport,
		table:         Commands,
		timeout:       timeout,
		nextMessageID: 1,
	}
}

// nextID returns the message id for the next request and advances the
// counter, wrapping past 0xFF and skipping 0. Callers must hold mu.
func (d *Driver) nextID() byte {
	id := d.nextMessageID
	d.nextMessageID++
	if d.nextMessageID == 0 {
		d.nextMessageID = 1
	}
	return id
}

// descriptor looks up a command table row
func (d *Driver) descriptor(name string) (Descriptor, error) {
	desc, ok := d.table[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown command %q", name)
	}
	return desc, nil
}

// roundTrip performs one full request/response cycle for a short-format
// command: build, send, bounded receive, validate
func (d *Driver) roundTrip(ctx context.Context, desc Descriptor, tableByte byte, value []byte) (*ResponseFrame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	messageID := d.nextID()
	frame, err := BuildShortRequest(desc, messageID, tableByte, value)
	if err != nil {
		return nil, err
	}
	return d.exchange(ctx, desc, messageID, frame)
}

// roundTripLong performs one full cycle for a long-format multi-record
// command
func (d *Driver) roundTripLong(ctx context.Context, desc Descriptor, tableByte byte, records []ChannelRecord) (*ResponseFrame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	messageID := d.nextID()
	frame, err := BuildLongRequest(desc, messageID, tableByte, records)
	if err != nil {
		return nil, err
	}
	return d.exchange(ctx, desc, messageID, frame)
}

// exchange transmits one frame and validates its answer. Callers hold mu
// across the full cycle; the half-duplex line cannot interleave requests.
func (d *Driver) exchange(ctx context.Context, desc Descriptor, messageID byte, frame []byte) (*ResponseFrame, error) {
	logger.LogTrace("📤 %s: sending % X", desc.Name, frame)

	if err := d.transport.Send(ctx, frame); err != nil {
		return nil, &TransportError{Op: "send", Err: err}
	}

	raw, err := d.transport.Receive(ctx, d.timeout)
	if err != nil {
		return nil, &TransportError{Op: "receive", Err: err}
	}

	logger.LogTrace("📥 %s: received % X", desc.Name, raw)

	resp, err := ParseResponse(desc, messageID, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Name, err)
	}
	return resp, nil
}

// readU16 runs a read command whose data field is a single little-endian
// 16-bit quantity
func (d *Driver) readU16(ctx context.Context, name string) (uint16, error) {
	desc, err := d.descriptor(name)
	if err != nil {
		return 0, err
	}
	resp, err := d.roundTrip(ctx, desc, 0, nil)
	if err != nil {
		return 0, err
	}
	if len(resp.Data) < 2 {
		return 0, &FramingError{Reason: fmt.Sprintf("%s: %d data bytes, need 2", name, len(resp.Data))}
	}
	return JoinUint16LE(resp.Data[0], resp.Data[1]), nil
}

// VendorName reads the module vendor identification string
func (d *Driver) VendorName(ctx context.Context) (string, error) {
	desc, err := d.descriptor(CmdVendorName)
	if err != nil {
		return "", err
	}
	resp, err := d.roundTrip(ctx, desc, 0, nil)
	if err != nil {
		return "", err
	}
	// Vendor block is NUL padded to its fixed size
	return strings.TrimRight(string(resp.Data), "\x00"), nil
}

// FirmwareVersion reads the module firmware version (major.minor.patch.build)
func (d *Driver) FirmwareVersion(ctx context.Context) (string, error) {
	desc, err := d.descriptor(CmdFirmwareVersion)
	if err != nil {
		return "", err
	}
	resp, err := d.roundTrip(ctx, desc, 0, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Data) < 4 {
		return "", &FramingError{Reason: "firmware version: short data"}
	}
	return fmt.Sprintf("%d.%d.%d.%d", resp.Data[0], resp.Data[1], resp.Data[2], resp.Data[3]), nil
}

// MinFrequencyBound reads the lower edge of the module's tunable range in
// GHz (wire value is a count of FrequencyStep units)
func (d *Driver) MinFrequencyBound(ctx context.Context) (float64, error) {
	units, err := d.readU16(ctx, CmdMinFrequencyBound)
	if err != nil {
		return 0, err
	}
	return UnitsToValue(int32(units), FrequencyStep), nil
}

// MaxFrequencyBound reads the upper edge of the module's tunable range in GHz
func (d *Driver) MaxFrequencyBound(ctx context.Context) (float64, error) {
	units, err := d.readU16(ctx, CmdMaxFrequencyBound)
	if err != nil {
		return 0, err
	}
	return UnitsToValue(int32(units), FrequencyStep), nil
}

// MinChannelBandwidth reads the narrowest configurable channel width in GHz
func (d *Driver) MinChannelBandwidth(ctx context.Context) (float64, error) {
	units, err := d.readU16(ctx, CmdMinChannelBandwidth)
	if err != nil {
		return 0, err
	}
	return UnitsToValue(int32(units), FrequencyStep), nil
}

// MaxWSSID reads the highest valid WSS id on this module
func (d *Driver) MaxWSSID(ctx context.Context) (int16, error) {
	v, err := d.readU16(ctx, CmdMaxWSSID)
	return int16(v), err
}

// MaxOCMID reads the highest valid OCM id on this module
func (d *Driver) MaxOCMID(ctx context.Context) (int16, error) {
	v, err := d.readU16(ctx, CmdMaxOCMID)
	return int16(v), err
}

// MaxWaveplanID reads the highest valid waveplan id on this module
func (d *Driver) MaxWaveplanID(ctx context.Context) (int16, error) {
	v, err := d.readU16(ctx, CmdMaxWaveplanID)
	return int16(v), err
}

// ChannelAttenuation reads one channel's attenuation. blocked reports the
// reserved 25.5 dB sentinel (channel switched off) rather than a real
// attenuation.
func (d *Driver) ChannelAttenuation(ctx context.Context, subAddress, channelGroup, channel byte) (db float32, blocked bool, err error) {
	desc, err := d.descriptor(CmdGetChannelAtten)
	if err != nil {
		return 0, false, err
	}
	table, err := PackTableByte(subAddress, channelGroup)
	if err != nil {
		return 0, false, err
	}
	resp, err := d.roundTrip(ctx, desc, table, []byte{channel})
	if err != nil {
		return 0, false, err
	}
	if len(resp.Data) < 1 {
		return 0, false, &FramingError{Reason: "channel attenuation: empty data"}
	}
	code := resp.Data[0]
	return CodeToAttenuation(code), code == AttenuationCodeBlocked, nil
}

// SetChannelAttenuation sets one channel's attenuation in dB.
// Passing AttenuationBlocked blocks the channel; any other value is encoded
// in tenths of a dB.
func (d *Driver) SetChannelAttenuation(ctx context.Context, subAddress, channelGroup, channel byte, db float32) error {
	desc, err := d.descriptor(CmdSetChannelAtten)
	if err != nil {
		return err
	}
	table, err := PackTableByte(subAddress, channelGroup)
	if err != nil {
		return err
	}
	_, err = d.roundTrip(ctx, desc, table, []byte{channel, AttenuationToCode(db)})
	return err
}

// BlockChannel switches one channel off via the reserved attenuation sentinel
func (d *Driver) BlockChannel(ctx context.Context, subAddress, channelGroup, channel byte) error {
	return d.SetChannelAttenuation(ctx, subAddress, channelGroup, channel, AttenuationBlocked)
}

// SwitchChannelPort routes one channel to a different output port
func (d *Driver) SwitchChannelPort(ctx context.Context, subAddress, channelGroup, channel, port byte) error {
	desc, err := d.descriptor(CmdSwitchChannelPort)
	if err != nil {
		return err
	}
	table, err := PackTableByte(subAddress, channelGroup)
	if err != nil {
		return err
	}
	_, err = d.roundTrip(ctx, desc, table, []byte{channel, port})
	return err
}

// UpdateChannels applies routing and attenuation for several channels in a
// single long-format frame. The slices are parallel: channels[i] is routed
// to ports[i] at attenuations[i] dB.
func (d *Driver) UpdateChannels(ctx context.Context, subAddress, channelGroup byte, channels, ports []byte, attenuations []float32) error {
	desc, err := d.descriptor(CmdUpdateChannels)
	if err != nil {
		return err
	}
	table, err := PackTableByte(subAddress, channelGroup)
	if err != nil {
		return err
	}
	records, err := BuildChannelRecords(desc, channelGroup, subAddress, channels, ports, attenuations)
	if err != nil {
		return err
	}
	_, err = d.roundTripLong(ctx, desc, table, records)
	return err
}

// Uptime reads the module uptime in seconds (two little-endian words, low
// word first)
func (d *Driver) Uptime(ctx context.Context) (uint32, error) {
	desc, err := d.descriptor(CmdUptime)
	if err != nil {
		return 0, err
	}
	resp, err := d.roundTrip(ctx, desc, 0, nil)
	if err != nil {
		return 0, err
	}
	if len(resp.Data) < 4 {
		return 0, &FramingError{Reason: "uptime: short data"}
	}
	low := JoinUint16LE(resp.Data[0], resp.Data[1])
	high := JoinUint16LE(resp.Data[2], resp.Data[3])
	return uint32(high)<<16 | uint32(low), nil
}

// OperationalStatus reads the module's operational status byte
func (d *Driver) OperationalStatus(ctx context.Context) (byte, error) {
	desc, err := d.descriptor(CmdOperationalStatus)
	if err != nil {
		return 0, err
	}
	resp, err := d.roundTrip(ctx, desc, 0, nil)
	if err != nil {
		return 0, err
	}
	if len(resp.Data) < 1 {
		return 0, &FramingError{Reason: "operational status: empty data"}
	}
	return resp.Data[0], nil
}

// Alarms reads the current alarm bitmask
func (d *Driver) Alarms(ctx context.Context) (uint16, error) {
	return d.readU16(ctx, CmdAlarms)
}

// OCMPower reads one channel's monitored optical power in dBm
// (wire value is a signed 16-bit count of hundredths of a dBm)
func (d *Driver) OCMPower(ctx context.Context, subAddress, channelGroup, channel byte) (float64, error) {
	desc, err := d.descriptor(CmdOCMPower)
	if err != nil {
		return 0, err
	}
	table, err := PackTableByte(subAddress, channelGroup)
	if err != nil {
		return 0, err
	}
	resp, err := d.roundTrip(ctx, desc, table, []byte{channel})
	if err != nil {
		return 0, err
	}
	if len(resp.Data) < 2 {
		return 0, &FramingError{Reason: "ocm power: short data"}
	}
	raw := int16(JoinUint16LE(resp.Data[0], resp.Data[1]))
	return float64(raw) / 100, nil
}

// SaveConfiguration asks the module to persist its running configuration to
// its own non-volatile memory; the driver only issues the command
func (d *Driver) SaveConfiguration(ctx context.Context) error {
	desc, err := d.descriptor(CmdSaveConfiguration)
	if err != nil {
		return err
	}
	_, err = d.roundTrip(ctx, desc, 0, nil)
	return err
}

// RestoreConfiguration asks the module to reload its saved configuration
func (d *Driver) RestoreConfiguration(ctx context.Context) error {
	desc, err := d.descriptor(CmdRestoreConfig)
	if err != nil {
		return err
	}
	_, err = d.roundTrip(ctx, desc, 0, nil)
	return err
}
