package core

import "periph.io/x/conn/v3/physic"

// EventID identifies a hardware event endpoint (an EVENTS_* register on nRF).
type EventID uint32

// TaskID identifies a hardware task endpoint (a TASKS_* register on nRF).
type TaskID uint32

// CounterKind selects how a time base derives its period.
type CounterKind uint8

const (
	// CounterTick divides the input clock with a prescaler and fires on
	// every counter increment (RTC TICK).
	CounterTick CounterKind = iota
	// CounterCompare counts the input clock up to a compare value and
	// clears itself (TIMER/RTC compare-and-clear).
	CounterCompare
)

// TimeBaseCapabilities describes a periodic counter.
type TimeBaseCapabilities struct {
	Kind         CounterKind
	Input        physic.Frequency // counter input clock after any fixed divider
	MaxPrescaler uint32           // CounterTick only
	CompareBits  uint8            // CounterCompare only
}

// TimeBaseDriver is the abstract periodic counter interface.
type TimeBaseDriver interface {
	// Capabilities reports how the counter can be programmed.
	Capabilities() TimeBaseCapabilities

	// Configure programs prescaler/compare registers. The counter stays stopped.
	Configure(rate TriggerRate) error

	// Start starts the counter. It runs until reset.
	Start()

	// Event returns the endpoint that fires once per period.
	Event() EventID

	// SetInterruptHandler enables the period interrupt and calls fn from it.
	// A nil fn disables the interrupt.
	SetInterruptHandler(fn func())
}
