package core

import "periph.io/x/conn/v3/physic"

// mockClock starts its oscillators after a fixed number of polls.
type mockClock struct {
	lfPolls, hfPolls int // polls until running; negative never runs
	lfStarts         int
	hfRequests       int
	hfReleases       int
	hfOn             bool
	polled           int
}

func (m *mockClock) StartLowFrequency() { m.lfStarts++ }

func (m *mockClock) LowFrequencyRunning() bool {
	if m.lfPolls < 0 {
		return false
	}
	if m.lfPolls > 0 {
		m.lfPolls--
		return false
	}
	return true
}

func (m *mockClock) RequestHighAccuracy() {
	m.hfRequests++
	m.hfOn = true
	m.polled = 0
}

func (m *mockClock) ReleaseHighAccuracy() {
	m.hfReleases++
	m.hfOn = false
}

func (m *mockClock) HighAccuracyRunning() bool {
	if !m.hfOn || m.hfPolls < 0 {
		return false
	}
	m.polled++
	return m.polled > m.hfPolls
}

// mockCounter is a time base that never fires on its own.
type mockCounter struct {
	caps       TimeBaseCapabilities
	configured TriggerRate
	started    bool
	handler    func()
}

func newTickCounter() *mockCounter {
	return &mockCounter{caps: TimeBaseCapabilities{
		Kind:         CounterTick,
		Input:        32768 * physic.Hertz,
		MaxPrescaler: 1<<12 - 1,
	}}
}

func (m *mockCounter) Capabilities() TimeBaseCapabilities { return m.caps }

func (m *mockCounter) Configure(rate TriggerRate) error {
	m.configured = rate
	return nil
}

func (m *mockCounter) Start()                        { m.started = true }
func (m *mockCounter) Event() EventID                { return 0x40024100 }
func (m *mockCounter) SetInterruptHandler(fn func()) { m.handler = fn }

// mockRouter records assignments.
type mockRouter struct {
	free    int
	event   EventID
	task    TaskID
	enabled bool
	allocs  int
}

func (m *mockRouter) Alloc() (RouteChannel, error) {
	if m.free == 0 {
		return 0, ErrRouteUnavailable
	}
	m.free--
	m.allocs++
	return RouteChannel(m.allocs - 1), nil
}

func (m *mockRouter) Assign(ch RouteChannel, event EventID, task TaskID) error {
	m.event, m.task = event, task
	return nil
}

func (m *mockRouter) Enable(ch RouteChannel)  { m.enabled = true }
func (m *mockRouter) Disable(ch RouteChannel) { m.enabled = false }

// mockADC fills the armed buffer with an increasing sequence, one
// channel-count of samples per Sample call.
type mockADC struct {
	set     *ChannelSet
	buf     []Sample
	pos     int
	armed   bool
	next    Sample
	dropped int
	arms    int
	armErr  error
	done    func([]Sample)
}

func (m *mockADC) Configure(set *ChannelSet) error {
	m.set = set
	return nil
}

func (m *mockADC) Arm(buf []Sample) error {
	if m.armErr != nil {
		return m.armErr
	}
	m.buf, m.pos, m.armed = buf, 0, true
	m.arms++
	return nil
}

func (m *mockADC) SampleTask() TaskID { return 0x40007004 }

func (m *mockADC) Sample() {
	if !m.armed {
		m.dropped++
		return
	}
	for i := 0; i < m.set.Count(); i++ {
		m.buf[m.pos] = m.next
		m.next++
		m.pos++
	}
	if m.pos == len(m.buf) {
		m.armed = false
		m.done(m.buf)
	}
}

func (m *mockADC) SetCompletionHandler(fn func([]Sample)) { m.done = fn }

type countingIndicator struct{ toggles int }

func (c *countingIndicator) Toggle() { c.toggles++ }

// fatalRecorder captures fatal errors instead of panicking.
type fatalRecorder struct{ errs []error }

func (f *fatalRecorder) handle(err error) { f.errs = append(f.errs, err) }

func threeChannels() []ChannelConfig {
	ch := ChannelConfig{Gain: Gain1_3, Resolution: Resolution10, Reference: RefInternal}
	a, b, c := ch, ch, ch
	a.Input, b.Input, c.Input = InputAIN2, InputAIN6, InputAIN7
	return []ChannelConfig{a, b, c}
}
