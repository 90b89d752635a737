package wss

// Object ids of the module attribute groups
const (
	objModuleInfo byte = 0x01
	objChannel    byte = 0x05
	objOCM        byte = 0x06
	objWaveplan   byte = 0x07
	objAlarm      byte = 0x08
	objSystem     byte = 0x09
)

// Parameter codes within an object
const (
	paramVendorName      byte = 0x01
	paramFirmwareVersion byte = 0x02
	paramMinFrequency    byte = 0x03
	paramMaxFrequency    byte = 0x04
	paramMinBandwidth    byte = 0x05
	paramMaxWSSID        byte = 0x06
	paramMaxOCMID        byte = 0x07
	paramMaxWaveplanID   byte = 0x08

	paramChannelPort        byte = 0x02
	paramChannelAttenuation byte = 0x03

	paramOCMPower byte = 0x01

	paramAlarmMask byte = 0x01

	paramUptime     byte = 0x01
	paramOperStatus byte = 0x02
	paramSaveConfig byte = 0x10
	paramRestore    byte = 0x11
)

// Command names used across the bridge (config, MQTT topics, metrics)
const (
	CmdVendorName          = "vendor_name"
	CmdFirmwareVersion     = "firmware_version"
	CmdMinFrequencyBound   = "min_frequency_bound"
	CmdMaxFrequencyBound   = "max_frequency_bound"
	CmdMinChannelBandwidth = "min_channel_bandwidth"
	CmdMaxWSSID            = "max_wss_id"
	CmdMaxOCMID            = "max_ocm_id"
	CmdMaxWaveplanID       = "max_waveplan_id"
	CmdGetChannelAtten     = "get_channel_attenuation"
	CmdSetChannelAtten     = "set_channel_attenuation"
	CmdSwitchChannelPort   = "switch_channel_port"
	CmdUpdateChannels      = "update_channels"
	CmdUptime              = "uptime"
	CmdOperationalStatus   = "operational_status"
	CmdAlarms              = "alarms"
	CmdOCMPower            = "ocm_power"
	CmdSaveConfiguration   = "save_configuration"
	CmdRestoreConfig       = "restore_configuration"
)

// Commands is the table of every distinct module operation. It is
// configuration consumed by the frame builder and response validator, not
// logic: adding an operation means adding a row here, never another
// hand-assembled byte array.
//
// The message ids here are base values for direct builder use; the driver
// stamps its own rolling id per request. Response lengths are the fixed
// declared values observed per firmware revision; zero disables the check.
var Commands = map[string]Descriptor{
	CmdVendorName: {
		Name:      CmdVendorName,
		MessageID: 0x10,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramVendorName,
		ResponseLength: 0x6C, // full vendor info block, NUL padded
	},
	CmdFirmwareVersion: {
		Name:      CmdFirmwareVersion,
		MessageID: 0x11,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramFirmwareVersion,
		ResponseLength: 5, // result + 4 version bytes
	},
	CmdMinFrequencyBound: {
		Name:      CmdMinFrequencyBound,
		MessageID: 0x12,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramMinFrequency,
		ResponseLength: 3, // result + u16
	},
	CmdMaxFrequencyBound: {
		Name:      CmdMaxFrequencyBound,
		MessageID: 0x13,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramMaxFrequency,
		ResponseLength: 3,
	},
	CmdMinChannelBandwidth: {
		Name:      CmdMinChannelBandwidth,
		MessageID: 0x14,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramMinBandwidth,
		ResponseLength: 3,
	},
	CmdMaxWSSID: {
		Name:      CmdMaxWSSID,
		MessageID: 0x15,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramMaxWSSID,
		ResponseLength: 3,
	},
	CmdMaxOCMID: {
		Name:      CmdMaxOCMID,
		MessageID: 0x16,
		Operation: OpRead,
		Object:    objModuleInfo, Instance: 0x01, Parameter: paramMaxOCMID,
		ResponseLength: 3,
	},
	CmdMaxWaveplanID: {
		Name:      CmdMaxWaveplanID,
		MessageID: 0x17,
		Operation: OpRead,
		Object:    objWaveplan, Instance: 0x01, Parameter: paramMaxWaveplanID,
		ResponseLength: 3,
	},
	CmdGetChannelAtten: {
		Name:      CmdGetChannelAtten,
		MessageID: 0x20,
		Operation: OpRead, UsesTableByte: true,
		Object: objChannel, Instance: 0x01, Parameter: paramChannelAttenuation,
		ResponseLength: 2, // result + attenuation code
	},
	CmdSetChannelAtten: {
		Name:      CmdSetChannelAtten,
		MessageID: 0x21,
		Operation: OpWrite, UsesTableByte: true,
		Object: objChannel, Instance: 0x01, Parameter: paramChannelAttenuation,
		ResponseLength: 1, // result only
	},
	CmdSwitchChannelPort: {
		Name:      CmdSwitchChannelPort,
		MessageID: 0x22,
		Operation: OpWrite, UsesTableByte: true,
		Object: objChannel, Instance: 0x01, Parameter: paramChannelPort,
		ResponseLength: 1,
	},
	CmdUpdateChannels: {
		Name:      CmdUpdateChannels,
		MessageID: 0x23,
		Operation: OpArrayWrite, LongFormat: true, UsesTableByte: true,
		Object: objChannel, Instance: 0x01, Parameter: paramChannelAttenuation,
		SubCommand:     0x01,
		ResponseLength: 1,
	},
	CmdUptime: {
		Name:      CmdUptime,
		MessageID: 0x30,
		Operation: OpRead,
		Object:    objSystem, Instance: 0x01, Parameter: paramUptime,
		ResponseLength: 5, // result + two u16 words
	},
	CmdOperationalStatus: {
		Name:      CmdOperationalStatus,
		MessageID: 0x31,
		Operation: OpRead,
		Object:    objSystem, Instance: 0x01, Parameter: paramOperStatus,
		ResponseLength: 2,
	},
	CmdAlarms: {
		Name:      CmdAlarms,
		MessageID: 0x32,
		Operation: OpRead,
		Object:    objAlarm, Instance: 0x01, Parameter: paramAlarmMask,
		ResponseLength: 3, // result + u16 bitmask
	},
	CmdOCMPower: {
		Name:      CmdOCMPower,
		MessageID: 0x33,
		Operation: OpRead, UsesTableByte: true,
		Object: objOCM, Instance: 0x01, Parameter: paramOCMPower,
		ResponseLength: 3, // result + i16 hundredths of dBm
	},
	CmdSaveConfiguration: {
		Name:      CmdSaveConfiguration,
		MessageID: 0x40,
		Operation: OpWrite,
		Object:    objSystem, Instance: 0x01, Parameter: paramSaveConfig,
		ResponseLength: 1,
	},
	CmdRestoreConfig: {
		Name:      CmdRestoreConfig,
		MessageID: 0x41,
		Operation: OpWrite,
		Object:    objSystem, Instance: 0x01, Parameter: paramRestore,
		ResponseLength: 1,
	},
}
