// Package sim provides hosted stand-ins for the nRF52 peripherals the
// sampling pipeline drives: the CLOCK oscillators, an RTC or TIMER time
// base, the PPI interconnect and the SAADC.
//
// The simulated peripherals are synchronous. A Counter.Tick call plays the
// role of one period elapsing: it signals the counter event on the Bus,
// which starts the SAADC sample task for every enabled route, and then runs
// the counter's interrupt handler if one is installed. Completion runs
// inside that call unless the ADC defers it, in which case
// ADC.ServiceInterrupt delivers it later, as a late interrupt would.
//
// Callers on several goroutines must serialize Tick and ServiceInterrupt
// against background work with core.DisableInterrupts; Drive does so.
package sim

import (
	"errors"

	"adcpipe/core"
)

// Endpoint addresses, matching the nRF52 register map so traces read the
// same as on hardware.
const (
	RTCTickEvent      core.EventID = 0x40024100 // RTC2 EVENTS_TICK
	TimerCompareEvent core.EventID = 0x4000A140 // TIMER2 EVENTS_COMPARE[0]
	SampleTask        core.TaskID  = 0x40007004 // SAADC TASKS_SAMPLE
)

var (
	ErrUnknownEndpoint = errors.New("sim: unknown task endpoint")
	ErrBadRoute        = errors.New("sim: route channel not allocated")
	ErrNotConfigured   = errors.New("sim: adc has no channels")
	ErrBufferLength    = errors.New("sim: buffer length is not a whole number of bursts")
)
