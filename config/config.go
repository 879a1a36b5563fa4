// Package config is the configuration surface of the sampling pipeline:
// JSON loading with defaults, named presets matching the reference
// firmwares, validation, and conversion into core types.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adcpipe/core"

	"periph.io/x/conn/v3/physic"
)

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrInvalidOption = errors.New("invalid configuration option")
)

// Time base names
const (
	TimeBaseRTC   = "rtc"
	TimeBaseTimer = "timer"
)

// Trigger names
const (
	TriggerHardware = "hardware"
	TriggerSoftware = "software"
)

// Trace modes
const (
	TraceOff   = "off"
	TraceText  = "text"
	TraceFrame = "frame"
)

// ChannelConfig is one analog channel as written in JSON.
type ChannelConfig struct {
	Input      string `json:"input"`      // "AIN0".."AIN7" or "VDD"
	Gain       string `json:"gain"`       // "1/6".."4"
	Resolution int    `json:"resolution"` // 8, 10, 12 or 14
	Reference  string `json:"reference"`  // "internal", "vdd/4" or "bandgap"
}

// Config is the full pipeline configuration.
type Config struct {
	PeriodMS       uint32          `json:"period_ms"`
	TimeBase       string          `json:"time_base"`
	Trigger        string          `json:"trigger"`
	Channels       []ChannelConfig `json:"channels"`
	BufferCapacity int             `json:"buffer_capacity"`
	DoubleBuffer   bool            `json:"double_buffer"`
	HighAccuracy   bool            `json:"high_accuracy"`
	ClockWaitLimit uint32          `json:"clock_wait_limit"` // polls; 0 waits forever
	Trace          string          `json:"trace"`
	VddMV          uint32          `json:"vdd_mv"`
}

// LoadConfig parses a JSON configuration, fills in defaults and validates it.
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.PeriodMS == 0 {
		config.PeriodMS = 1000
	}
	if config.TimeBase == "" {
		config.TimeBase = TimeBaseTimer
	}
	if config.Trigger == "" {
		if config.HighAccuracy {
			config.Trigger = TriggerSoftware
		} else {
			config.Trigger = TriggerHardware
		}
	}
	if config.Trace == "" {
		config.Trace = TraceOff
	}
	if config.VddMV == 0 {
		config.VddMV = 3000
	}

	for i := range config.Channels {
		ch := &config.Channels[i]
		if ch.Gain == "" {
			ch.Gain = "1/6" // 0..3.6 V with the internal reference
		}
		if ch.Resolution == 0 {
			ch.Resolution = 10
		}
		if ch.Reference == "" {
			ch.Reference = "internal"
		}
	}

	// Two bursts per buffer
	if config.BufferCapacity == 0 {
		config.BufferCapacity = 2 * len(config.Channels)
	}
}

// Validate checks every option and the cross-option rules the pipeline
// enforces, so a bad configuration is reported before any peripheral is
// touched.
func (c *Config) Validate() error {
	switch c.TimeBase {
	case TimeBaseRTC, TimeBaseTimer:
	default:
		return fmt.Errorf("%w: time_base %q", ErrInvalidOption, c.TimeBase)
	}
	switch c.Trigger {
	case TriggerHardware, TriggerSoftware:
	default:
		return fmt.Errorf("%w: trigger %q", ErrInvalidOption, c.Trigger)
	}
	switch c.Trace {
	case TraceOff, TraceText, TraceFrame:
	default:
		return fmt.Errorf("%w: trace %q", ErrInvalidOption, c.Trace)
	}
	if c.PeriodMS == 0 {
		return fmt.Errorf("%w: period_ms must be positive", ErrInvalidOption)
	}
	if c.HighAccuracy && c.Trigger == TriggerHardware {
		return core.ErrHighAccuracyNeedsSoftwareTrigger
	}

	channels, err := c.CoreChannels()
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return core.ErrNoChannels
	}
	if len(channels) > core.MaxChannels {
		return core.ErrTooManyChannels
	}
	if c.BufferCapacity <= 0 || c.BufferCapacity%len(channels) != 0 {
		return fmt.Errorf("%w: buffer_capacity %d, %d channels", core.ErrCapacityMismatch, c.BufferCapacity, len(channels))
	}
	if c.BufferCapacity > core.MaxCapacity {
		return fmt.Errorf("%w: buffer_capacity %d", core.ErrCapacityTooLarge, c.BufferCapacity)
	}
	return nil
}

// CoreChannels converts the channel list.
func (c *Config) CoreChannels() ([]core.ChannelConfig, error) {
	out := make([]core.ChannelConfig, 0, len(c.Channels))
	for i, ch := range c.Channels {
		cc, err := ch.core()
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		out = append(out, cc)
	}
	return out, nil
}

func (ch ChannelConfig) core() (core.ChannelConfig, error) {
	var cc core.ChannelConfig
	var err error
	if cc.Input, err = core.ParseInput(ch.Input); err != nil {
		return cc, fmt.Errorf("input %q: %w", ch.Input, err)
	}
	if cc.Gain, err = core.ParseGain(ch.Gain); err != nil {
		return cc, fmt.Errorf("gain %q: %w", ch.Gain, err)
	}
	if cc.Reference, err = core.ParseReference(ch.Reference); err != nil {
		return cc, fmt.Errorf("reference %q: %w", ch.Reference, err)
	}
	cc.Resolution = core.Resolution(ch.Resolution)
	if err := cc.Validate(); err != nil {
		return cc, fmt.Errorf("resolution %d: %w", ch.Resolution, err)
	}
	return cc, nil
}

// Period returns the trigger period.
func (c *Config) Period() time.Duration {
	return time.Duration(c.PeriodMS) * time.Millisecond
}

// TriggerMode returns the core trigger mode.
func (c *Config) TriggerMode() core.TriggerMode {
	if c.Trigger == TriggerSoftware {
		return core.TriggerSoftware
	}
	return core.TriggerHardware
}

// VDD returns the supply voltage used for VDD-relative references.
func (c *Config) VDD() physic.ElectricPotential {
	return physic.ElectricPotential(c.VddMV) * physic.MilliVolt
}

// PipelineConfig converts c into the core pipeline configuration. Consumers,
// indicators and the fatal handler are left for the caller.
func (c *Config) PipelineConfig() (core.PipelineConfig, error) {
	if err := c.Validate(); err != nil {
		return core.PipelineConfig{}, err
	}
	channels, err := c.CoreChannels()
	if err != nil {
		return core.PipelineConfig{}, err
	}
	return core.PipelineConfig{
		Channels:       channels,
		Period:         c.Period(),
		Trigger:        c.TriggerMode(),
		Capacity:       c.BufferCapacity,
		DoubleBuffer:   c.DoubleBuffer,
		HighAccuracy:   c.HighAccuracy,
		ClockWaitPolls: c.ClockWaitLimit,
	}, nil
}
