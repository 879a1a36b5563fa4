package sim

// Clock simulates the CLOCK peripheral. Each oscillator reports running
// after a configurable number of status polls.
type Clock struct {
	LowFrequencyDelay int // polls until LFCLK is stable; negative never
	HighAccuracyDelay int // polls until HFXO is stable; negative never

	lfStarted bool
	lfPolls   int

	hfOn    bool
	hfPolls int

	requests int
	releases int
}

func (c *Clock) StartLowFrequency() {
	c.lfStarted = true
}

func (c *Clock) LowFrequencyRunning() bool {
	if !c.lfStarted || c.LowFrequencyDelay < 0 {
		return false
	}
	if c.lfPolls < c.LowFrequencyDelay {
		c.lfPolls++
		return false
	}
	return true
}

func (c *Clock) RequestHighAccuracy() {
	if !c.hfOn {
		c.hfPolls = 0
	}
	c.hfOn = true
	c.requests++
}

func (c *Clock) ReleaseHighAccuracy() {
	c.hfOn = false
	c.releases++
}

func (c *Clock) HighAccuracyRunning() bool {
	if !c.hfOn || c.HighAccuracyDelay < 0 {
		return false
	}
	if c.hfPolls < c.HighAccuracyDelay {
		c.hfPolls++
		return false
	}
	return true
}

// HighAccuracyStable reports the oscillator state without counting a poll.
func (c *Clock) HighAccuracyStable() bool {
	return c.hfOn && c.HighAccuracyDelay >= 0 && c.hfPolls >= c.HighAccuracyDelay
}

// Requests returns the number of start requests the driver received.
func (c *Clock) Requests() int { return c.requests }

// Releases returns the number of stop requests the driver received.
func (c *Clock) Releases() int { return c.releases }
