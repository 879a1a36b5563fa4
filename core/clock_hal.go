package core

// ClockDriver is the abstract clock-control interface the Clock Manager uses.
// On nRF parts this is the CLOCK peripheral: LFCLK feeds the RTC time base and
// the HFCLK crystal improves conversion accuracy while it runs.
type ClockDriver interface {
	// StartLowFrequency triggers the low-frequency source start task.
	StartLowFrequency()

	// LowFrequencyRunning reports whether the low-frequency source is stable.
	LowFrequencyRunning() bool

	// RequestHighAccuracy starts the high-accuracy oscillator.
	RequestHighAccuracy()

	// ReleaseHighAccuracy stops the high-accuracy oscillator.
	ReleaseHighAccuracy()

	// HighAccuracyRunning reports whether the high-accuracy oscillator is running.
	HighAccuracyRunning() bool
}

// WaitFunc blocks until ready reports true. It returns ErrClockTimeout if it
// gives up. Hardware uses BusyWait; tests inject their own.
type WaitFunc func(ready func() bool) error

// BusyWait polls ready forever. A clock that never starts blocks the caller
// forever, matching the reference firmware.
func BusyWait(ready func() bool) error {
	for !ready() {
	}
	return nil
}

// BoundedWait polls ready at most maxPolls times.
func BoundedWait(maxPolls uint32) WaitFunc {
	return func(ready func() bool) error {
		for i := uint32(0); i < maxPolls; i++ {
			if ready() {
				return nil
			}
		}
		return ErrClockTimeout
	}
}
