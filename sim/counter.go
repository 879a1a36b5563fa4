package sim

import (
	"adcpipe/core"

	"periph.io/x/conn/v3/physic"
)

// Counter simulates a periodic counter peripheral. One Tick is one trigger
// period.
type Counter struct {
	caps    core.TimeBaseCapabilities
	event   core.EventID
	bus     *Bus
	rate    core.TriggerRate
	running bool
	handler func()
	ticks   uint64
}

// NewRTC returns an RTC2-like counter: 32.768 kHz LFCLK input, 12-bit
// prescaler, TICK event.
func NewRTC(bus *Bus) *Counter {
	return &Counter{
		caps: core.TimeBaseCapabilities{
			Kind:         core.CounterTick,
			Input:        32768 * physic.Hertz,
			MaxPrescaler: 1<<12 - 1,
		},
		event: RTCTickEvent,
		bus:   bus,
	}
}

// NewTimer returns a TIMER2-like counter in 16-bit mode, clocked at
// 16 MHz / 2^9 = 31.25 kHz and cleared on COMPARE[0].
func NewTimer(bus *Bus) *Counter {
	return &Counter{
		caps: core.TimeBaseCapabilities{
			Kind:        core.CounterCompare,
			Input:       31250 * physic.Hertz,
			CompareBits: 16,
		},
		event: TimerCompareEvent,
		bus:   bus,
	}
}

func (c *Counter) Capabilities() core.TimeBaseCapabilities { return c.caps }

func (c *Counter) Configure(rate core.TriggerRate) error {
	c.rate = rate
	return nil
}

func (c *Counter) Start() { c.running = true }

func (c *Counter) Event() core.EventID { return c.event }

func (c *Counter) SetInterruptHandler(fn func()) { c.handler = fn }

// Tick completes one period. It is a no-op until the counter is started.
func (c *Counter) Tick() {
	if !c.running {
		return
	}
	c.ticks++
	if c.bus != nil {
		c.bus.Signal(c.event)
	}
	if c.handler != nil {
		c.handler()
	}
}

// Ticks returns the number of completed periods.
func (c *Counter) Ticks() uint64 { return c.ticks }

// Rate returns the programmed rate.
func (c *Counter) Rate() core.TriggerRate { return c.rate }

// Running reports whether the counter was started.
func (c *Counter) Running() bool { return c.running }
