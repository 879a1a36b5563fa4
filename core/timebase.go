package core

import (
	"math/bits"
	"time"

	"periph.io/x/conn/v3/physic"
)

// TriggerRate is a trigger period converted into native counter settings.
// It is computed once at configuration time.
type TriggerRate struct {
	Period    time.Duration    // requested period
	Input     physic.Frequency // counter input clock
	Kind      CounterKind
	Prescaler uint32 // CounterTick: input/(Prescaler+1) per tick
	Ticks     uint32 // CounterCompare: compare value
}

// Counts returns the number of input clock cycles per trigger.
func (r TriggerRate) Counts() uint64 {
	if r.Kind == CounterTick {
		return uint64(r.Prescaler) + 1
	}
	return uint64(r.Ticks)
}

// Actual returns the period the counter really produces after truncation.
func (r TriggerRate) Actual() time.Duration {
	mhz := uint64(r.Input / physic.MilliHertz)
	if mhz == 0 {
		return 0
	}
	// counts * 1e12 ns·mHz / mHz
	hi, lo := bits.Mul64(r.Counts(), 1e12)
	if hi >= mhz {
		return time.Duration(1<<63 - 1)
	}
	q, _ := bits.Div64(hi, lo, mhz)
	return time.Duration(q)
}

// Frequency returns the actual trigger frequency.
func (r TriggerRate) Frequency() physic.Frequency {
	return physic.PeriodToFrequency(r.Actual())
}

// NewTriggerRate converts period into counter settings for caps.
func NewTriggerRate(period time.Duration, caps TimeBaseCapabilities) (TriggerRate, error) {
	rate := TriggerRate{Period: period, Input: caps.Input, Kind: caps.Kind}
	if period <= 0 || caps.Input <= 0 {
		return rate, ErrInvalidPeriod
	}
	counts, ok := inputCycles(period, caps.Input)
	if !ok || counts == 0 {
		return rate, ErrInvalidPeriod
	}

	switch caps.Kind {
	case CounterTick:
		if counts-1 > uint64(caps.MaxPrescaler) {
			return rate, ErrInvalidPeriod
		}
		rate.Prescaler = uint32(counts - 1)
	case CounterCompare:
		if caps.CompareBits == 0 || caps.CompareBits > 32 {
			return rate, ErrInvalidPeriod
		}
		if counts > uint64(1)<<caps.CompareBits-1 {
			return rate, ErrInvalidPeriod
		}
		rate.Ticks = uint32(counts)
	default:
		return rate, ErrInvalidPeriod
	}
	return rate, nil
}

// inputCycles returns floor(period * input).
func inputCycles(period time.Duration, input physic.Frequency) (uint64, bool) {
	mhz := uint64(input / physic.MilliHertz)
	ns := uint64(period)
	hi, lo := bits.Mul64(mhz, ns)
	const scale = 1e12 // ns per s * mHz per Hz
	if hi >= scale {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, scale)
	return q, true
}

// TimeBaseState is the time base life cycle.
type TimeBaseState uint8

const (
	TimeBaseUnconfigured TimeBaseState = iota
	TimeBaseConfigured
	TimeBaseRunning
)

func (s TimeBaseState) String() string {
	switch s {
	case TimeBaseConfigured:
		return "configured"
	case TimeBaseRunning:
		return "running"
	default:
		return "unconfigured"
	}
}

// TimeBase produces the periodic trigger event. It owns no sample data and,
// once running, is never stopped.
type TimeBase struct {
	drv   TimeBaseDriver
	state TimeBaseState
	rate  TriggerRate
}

// NewTimeBase wraps a counter driver.
func NewTimeBase(drv TimeBaseDriver) *TimeBase {
	return &TimeBase{drv: drv}
}

// Configure fixes the trigger period. Only valid while unconfigured.
func (tb *TimeBase) Configure(period time.Duration) (TriggerRate, error) {
	if tb.state != TimeBaseUnconfigured {
		return tb.rate, ErrTimeBaseState
	}
	rate, err := NewTriggerRate(period, tb.drv.Capabilities())
	if err != nil {
		return rate, err
	}
	if err := tb.drv.Configure(rate); err != nil {
		return rate, err
	}
	tb.rate = rate
	tb.state = TimeBaseConfigured
	return rate, nil
}

// Start starts the counter. Only valid once configured.
func (tb *TimeBase) Start() error {
	if tb.state != TimeBaseConfigured {
		return ErrTimeBaseState
	}
	tb.drv.Start()
	tb.state = TimeBaseRunning
	return nil
}

// SetInterruptHandler routes the period interrupt to fn. It must be set
// before Start.
func (tb *TimeBase) SetInterruptHandler(fn func()) error {
	if tb.state == TimeBaseRunning {
		return ErrTimeBaseState
	}
	tb.drv.SetInterruptHandler(fn)
	return nil
}

// Event returns the periodic event endpoint.
func (tb *TimeBase) Event() EventID {
	return tb.drv.Event()
}

// State returns the life-cycle state.
func (tb *TimeBase) State() TimeBaseState {
	return tb.state
}

// Rate returns the configured trigger rate.
func (tb *TimeBase) Rate() TriggerRate {
	return tb.rate
}
