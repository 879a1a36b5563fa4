package sim

import "adcpipe/core"

// Board is one simulated nRF52 with both time base candidates.
type Board struct {
	Clock *Clock
	Bus   *Bus
	RTC   *Counter
	Timer *Counter
	ADC   *ADC
}

// NewBoard wires a board. The ADC's clock probe is always the board clock.
func NewBoard(opts ADCOptions) *Board {
	b := &Board{Clock: &Clock{}, Bus: NewBus()}
	opts.Clock = b.Clock
	b.RTC = NewRTC(b.Bus)
	b.Timer = NewTimer(b.Bus)
	b.ADC = NewADC(b.Bus, opts)
	return b
}

// Peripherals bundles the board drivers around the chosen time base.
func (b *Board) Peripherals(timeBase *Counter) core.Peripherals {
	return core.Peripherals{
		Clock:    b.Clock,
		TimeBase: timeBase,
		Router:   b.Bus,
		ADC:      b.ADC,
	}
}
