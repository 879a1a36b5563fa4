package core

import (
	"fmt"
	"time"
)

// TriggerMode selects how the time base starts a burst.
type TriggerMode uint8

const (
	// TriggerHardware routes the time base event straight to the converter's
	// sample task through the interconnect. The CPU stays asleep.
	TriggerHardware TriggerMode = iota
	// TriggerSoftware takes the time base interrupt and starts the burst
	// from it, running the pre-trigger clock hook first.
	TriggerSoftware
)

func (m TriggerMode) String() string {
	if m == TriggerSoftware {
		return "software"
	}
	return "hardware"
}

// Peripherals bundles the drivers of one physical peripheral set.
type Peripherals struct {
	Clock    ClockDriver
	TimeBase TimeBaseDriver
	Router   RouterDriver // hardware trigger only
	ADC      ADCDriver
}

// PipelineConfig is the full configuration surface.
type PipelineConfig struct {
	Channels     []ChannelConfig
	Period       time.Duration
	Trigger      TriggerMode
	Capacity     int
	DoubleBuffer bool
	HighAccuracy bool

	// ClockWaitPolls bounds clock-stable waits. Zero waits forever.
	ClockWaitPolls uint32
	// ClockWait overrides the polling strategy.
	ClockWait WaitFunc

	Consumer         Consumer
	Indicator        Indicator // toggled per completion
	TriggerIndicator Indicator // toggled per software trigger
	OnFatal          FatalHandler
}

// Pipeline is a running sampling pipeline.
type Pipeline struct {
	clock    *ClockManager
	timeBase *TimeBase
	router   *Router
	engine   *Engine
	rate     TriggerRate

	trigger          TriggerMode
	triggerIndicator Indicator
	onFatal          FatalHandler
}

// NewPipeline configures every peripheral in dependency order and starts the
// time base. It is the only place the trigger route gets armed, and it arms
// it after the channels and the first buffer are in place.
func NewPipeline(cfg PipelineConfig, p Peripherals) (*Pipeline, error) {
	if p.Clock == nil || p.TimeBase == nil || p.ADC == nil {
		return nil, ErrMissingPeripheral
	}
	if cfg.Trigger == TriggerHardware {
		if p.Router == nil {
			return nil, ErrMissingPeripheral
		}
		if cfg.HighAccuracy {
			return nil, ErrHighAccuracyNeedsSoftwareTrigger
		}
	}

	channels, err := NewChannelSet(cfg.Channels...)
	if err != nil {
		return nil, fmt.Errorf("channel set: %w", err)
	}
	if err := p.ADC.Configure(channels); err != nil {
		return nil, fmt.Errorf("configure adc: %w", err)
	}

	pl := &Pipeline{
		trigger:          cfg.Trigger,
		triggerIndicator: cfg.TriggerIndicator,
		onFatal:          cfg.OnFatal,
	}
	if pl.triggerIndicator == nil {
		pl.triggerIndicator = noIndicator{}
	}
	if pl.onFatal == nil {
		pl.onFatal = defaultFatal
	}

	pl.clock = NewClockManager(p.Clock, ClockOptions{
		HighAccuracy: cfg.HighAccuracy,
		MaxPolls:     cfg.ClockWaitPolls,
		Wait:         cfg.ClockWait,
	})
	if err := pl.clock.StartLowFrequency(); err != nil {
		return nil, fmt.Errorf("start low-frequency clock: %w", err)
	}

	pl.timeBase = NewTimeBase(p.TimeBase)
	if pl.rate, err = pl.timeBase.Configure(cfg.Period); err != nil {
		return nil, fmt.Errorf("configure time base for %v: %w", cfg.Period, err)
	}

	pl.engine, err = NewEngine(channels, p.ADC, pl.clock, EngineConfig{
		Capacity:     cfg.Capacity,
		DoubleBuffer: cfg.DoubleBuffer,
		Consumer:     cfg.Consumer,
		Indicator:    cfg.Indicator,
		OnFatal:      pl.onFatal,
	})
	if err != nil {
		return nil, err
	}
	if err := pl.engine.Start(); err != nil {
		return nil, fmt.Errorf("arm first buffer: %w", err)
	}

	switch cfg.Trigger {
	case TriggerHardware:
		pl.router = NewRouter(p.Router)
		if err := pl.router.Connect(pl.timeBase.Event(), p.ADC.SampleTask()); err != nil {
			return nil, fmt.Errorf("connect trigger: %w", err)
		}
		if err := pl.router.Enable(); err != nil {
			return nil, err
		}
	case TriggerSoftware:
		if err := pl.timeBase.SetInterruptHandler(pl.onTrigger); err != nil {
			return nil, err
		}
	}

	if err := pl.timeBase.Start(); err != nil {
		return nil, err
	}
	return pl, nil
}

// onTrigger is the time base interrupt in software-triggered mode.
func (pl *Pipeline) onTrigger() {
	pl.triggerIndicator.Toggle()
	if err := pl.engine.BeginConversion(); err != nil {
		pl.onFatal(err)
	}
}

// Engine returns the sampling engine.
func (pl *Pipeline) Engine() *Engine { return pl.engine }

// Clock returns the clock manager.
func (pl *Pipeline) Clock() *ClockManager { return pl.clock }

// TimeBase returns the time base.
func (pl *Pipeline) TimeBase() *TimeBase { return pl.timeBase }

// Router returns the trigger router, or nil in software mode.
func (pl *Pipeline) Router() *Router { return pl.router }

// Rate returns the configured trigger rate.
func (pl *Pipeline) Rate() TriggerRate { return pl.rate }

// Trigger returns the trigger mode.
func (pl *Pipeline) Trigger() TriggerMode { return pl.trigger }
