package config

import "fmt"

// Preset names
const (
	PresetLowPower  = "low_power"
	PresetTimerScan = "timer_scan"
	PresetRTCSingle = "rtc_single"
)

// scanChannels are the three inputs the reference boards wire up, each
// scaled by 1/3 against the internal reference.
func scanChannels() []ChannelConfig {
	return []ChannelConfig{
		{Input: "AIN2", Gain: "1/3", Resolution: 10, Reference: "internal"},
		{Input: "AIN6", Gain: "1/3", Resolution: 10, Reference: "internal"},
		{Input: "AIN7", Gain: "1/3", Resolution: 10, Reference: "internal"},
	}
}

// LowPowerConfig samples three channels every 10 ms from the RTC interrupt,
// running the high-accuracy oscillator only around each burst.
func LowPowerConfig() *Config {
	return &Config{
		PeriodMS:       10,
		TimeBase:       TimeBaseRTC,
		Trigger:        TriggerSoftware,
		Channels:       scanChannels(),
		BufferCapacity: 6,
		HighAccuracy:   true,
		Trace:          TraceText,
		VddMV:          3000,
	}
}

// TimerScanConfig samples three channels once a second from TIMER2 through
// the interconnect.
func TimerScanConfig() *Config {
	return &Config{
		PeriodMS:       1000,
		TimeBase:       TimeBaseTimer,
		Trigger:        TriggerHardware,
		Channels:       scanChannels(),
		BufferCapacity: 6,
		Trace:          TraceText,
		VddMV:          3000,
	}
}

// RTCSingleConfig samples one channel eight times a second from the RTC
// tick through the interconnect, alternating two single-sample buffers.
func RTCSingleConfig() *Config {
	return &Config{
		PeriodMS: 125,
		TimeBase: TimeBaseRTC,
		Trigger:  TriggerHardware,
		Channels: []ChannelConfig{
			{Input: "AIN2", Gain: "1/3", Resolution: 8, Reference: "internal"},
		},
		BufferCapacity: 1,
		DoubleBuffer:   true,
		Trace:          TraceText,
		VddMV:          3000,
	}
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Config, error) {
	switch name {
	case PresetLowPower:
		return LowPowerConfig(), nil
	case PresetTimerScan:
		return TimerScanConfig(), nil
	case PresetRTCSingle:
		return RTCSingleConfig(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// PresetNames lists the presets Preset accepts.
func PresetNames() []string {
	return []string{PresetLowPower, PresetTimerScan, PresetRTCSingle}
}
