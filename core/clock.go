package core

import "sync/atomic"

// ClockState tracks the high-accuracy oscillator request.
type ClockState uint8

const (
	ClockReleased  ClockState = 0
	ClockRequested ClockState = 1
)

func (s ClockState) String() string {
	if s == ClockRequested {
		return "requested"
	}
	return "released"
}

// ClockOptions configures a ClockManager.
type ClockOptions struct {
	// HighAccuracy enables the request/release cycle around each burst.
	HighAccuracy bool

	// MaxPolls bounds every clock-stable wait. Zero waits forever.
	MaxPolls uint32

	// Wait overrides the polling strategy. Takes precedence over MaxPolls.
	Wait WaitFunc
}

// ClockManager starts the low-frequency time base source and gates the
// high-accuracy oscillator around each burst.
//
// The request state has exactly two writers: PrepareConversion (the
// pre-trigger hook) and the completion handler. They never run concurrently,
// so no lock is taken.
type ClockManager struct {
	drv          ClockDriver
	wait         WaitFunc
	highAccuracy bool

	lfStarted bool
	state     ClockState

	requests uint32
	releases uint32
}

// NewClockManager wraps a clock driver.
func NewClockManager(drv ClockDriver, opts ClockOptions) *ClockManager {
	wait := opts.Wait
	if wait == nil {
		if opts.MaxPolls > 0 {
			wait = BoundedWait(opts.MaxPolls)
		} else {
			wait = BusyWait
		}
	}
	return &ClockManager{
		drv:          drv,
		wait:         wait,
		highAccuracy: opts.HighAccuracy,
	}
}

// StartLowFrequency starts the low-frequency clock and blocks until it is
// stable. Calling it again after success is a no-op.
func (c *ClockManager) StartLowFrequency() error {
	if c.lfStarted {
		return nil
	}
	c.drv.StartLowFrequency()
	if err := c.wait(c.drv.LowFrequencyRunning); err != nil {
		return err
	}
	c.lfStarted = true
	return nil
}

// LowFrequencyStarted reports whether StartLowFrequency has completed.
func (c *ClockManager) LowFrequencyStarted() bool {
	return c.lfStarted
}

// HighAccuracy reports whether high-accuracy mode is enabled.
func (c *ClockManager) HighAccuracy() bool {
	return c.highAccuracy
}

// RequestHighAccuracy requests the high-accuracy oscillator. Idempotent, and
// a no-op when high-accuracy mode is off.
func (c *ClockManager) RequestHighAccuracy() {
	if !c.highAccuracy || c.state == ClockRequested {
		return
	}
	c.drv.RequestHighAccuracy()
	c.state = ClockRequested
	atomic.AddUint32(&c.requests, 1)
}

// ReleaseHighAccuracy releases the high-accuracy oscillator. Idempotent, and
// a no-op when high-accuracy mode is off.
func (c *ClockManager) ReleaseHighAccuracy() {
	if !c.highAccuracy || c.state == ClockReleased {
		return
	}
	c.drv.ReleaseHighAccuracy()
	c.state = ClockReleased
	atomic.AddUint32(&c.releases, 1)
}

// PrepareConversion is the pre-trigger hook. In high-accuracy mode it
// requests the oscillator and blocks until the driver reports it running.
func (c *ClockManager) PrepareConversion() error {
	if !c.highAccuracy {
		return nil
	}
	c.RequestHighAccuracy()
	return c.wait(c.drv.HighAccuracyRunning)
}

// State returns the current request state.
func (c *ClockManager) State() ClockState {
	return c.state
}

// Requests returns how many times the oscillator has been requested.
func (c *ClockManager) Requests() uint32 {
	return atomic.LoadUint32(&c.requests)
}

// Releases returns how many times the oscillator has been released.
func (c *ClockManager) Releases() uint32 {
	return atomic.LoadUint32(&c.releases)
}
