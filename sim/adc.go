package sim

import "adcpipe/core"

// ADCOptions configures a simulated SAADC.
type ADCOptions struct {
	// Source produces conversion results. Defaults to Counting.
	Source Source

	// DeferCompletion holds the END interrupt until ServiceInterrupt is
	// called, so a test can land triggers between buffer-full and rearm.
	DeferCompletion bool

	// Clock, when set, is probed on every burst to count conversions
	// made without the high-accuracy oscillator running.
	Clock *Clock
}

// ADC simulates the SAADC in scan mode with EasyDMA: each sample task
// converts every enabled channel once and writes the results to the next
// slots of the armed buffer.
type ADC struct {
	set      *core.ChannelSet
	source   Source
	clock    *Clock
	deferEnd bool

	buf     []core.Sample
	pos     int
	armed   bool
	pending []core.Sample
	done    func([]core.Sample)

	bursts    uint64
	dropped   uint64
	unclocked uint64
}

// NewADC creates an ADC and attaches its sample task to bus.
func NewADC(bus *Bus, opts ADCOptions) *ADC {
	a := &ADC{
		source:   opts.Source,
		clock:    opts.Clock,
		deferEnd: opts.DeferCompletion,
	}
	if a.source == nil {
		a.source = Counting()
	}
	if bus != nil {
		bus.Attach(SampleTask, a.Sample)
	}
	return a
}

func (a *ADC) Configure(set *core.ChannelSet) error {
	if set == nil || set.Count() == 0 {
		return ErrNotConfigured
	}
	a.set = set
	return nil
}

func (a *ADC) Arm(buf []core.Sample) error {
	if a.set == nil {
		return ErrNotConfigured
	}
	if len(buf) == 0 || len(buf)%a.set.Count() != 0 {
		return ErrBufferLength
	}
	a.buf, a.pos, a.armed = buf, 0, true
	return nil
}

func (a *ADC) SampleTask() core.TaskID { return SampleTask }

// Sample converts one burst. Without an armed buffer the burst is dropped.
func (a *ADC) Sample() {
	if !a.armed {
		a.dropped++
		return
	}
	if a.clock != nil && !a.clock.HighAccuracyStable() {
		a.unclocked++
	}
	n := a.set.Count()
	for ch := 0; ch < n; ch++ {
		a.buf[a.pos] = a.source(a.set.Channel(ch), a.bursts) & a.set.Channel(ch).Resolution.Max()
		a.pos++
	}
	a.bursts++
	if a.pos < len(a.buf) {
		return
	}
	a.armed = false
	if a.deferEnd {
		a.pending = a.buf
		return
	}
	a.complete(a.buf)
}

func (a *ADC) SetCompletionHandler(fn func([]core.Sample)) { a.done = fn }

// ServiceInterrupt delivers a deferred completion. It reports whether one
// was pending.
func (a *ADC) ServiceInterrupt() bool {
	if a.pending == nil {
		return false
	}
	buf := a.pending
	a.pending = nil
	a.complete(buf)
	return true
}

func (a *ADC) complete(buf []core.Sample) {
	if a.done != nil {
		a.done(buf)
	}
}

// Armed reports whether a buffer is armed.
func (a *ADC) Armed() bool { return a.armed }

// Bursts returns the number of converted bursts.
func (a *ADC) Bursts() uint64 { return a.bursts }

// Dropped returns the number of sample tasks that found no armed buffer.
func (a *ADC) Dropped() uint64 { return a.dropped }

// Unclocked returns the number of bursts converted while the high-accuracy
// oscillator was not running. Only counted when a Clock probe is set.
func (a *ADC) Unclocked() uint64 { return a.unclocked }
