package core

import (
	"errors"
	"testing"
)

func newTestEngine(t *testing.T, cfgs []ChannelConfig, clock *ClockManager, cfg EngineConfig) (*Engine, *mockADC) {
	t.Helper()
	set, err := NewChannelSet(cfgs...)
	if err != nil {
		t.Fatalf("NewChannelSet failed: %v", err)
	}
	adc := &mockADC{}
	if err := adc.Configure(set); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	e, err := NewEngine(set, adc, clock, cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return e, adc
}

func TestEngineRoundRobinFill(t *testing.T) {
	var got []Burst
	var copied []Sample
	e, adc := newTestEngine(t, threeChannels(), nil, EngineConfig{
		Capacity: 6,
		Consumer: ConsumerFunc(func(b Burst) {
			got = append(got, b)
			copied = append([]Sample(nil), b.Samples...)
		}),
	})

	adc.Sample()
	if len(got) != 0 {
		t.Fatal("Completion after a single burst")
	}
	adc.Sample()
	if len(got) != 1 {
		t.Fatalf("Expected 1 completion, got %d", len(got))
	}

	b := got[0]
	if b.Channels != 3 || b.Bursts() != 2 || b.Sequence != 0 {
		t.Errorf("Unexpected burst shape: channels=%d bursts=%d seq=%d", b.Channels, b.Bursts(), b.Sequence)
	}
	for i, s := range copied {
		if s != Sample(i) {
			t.Errorf("sample %d: expected %d, got %d", i, i, s)
		}
		if b.ChannelOf(i) != i%3 {
			t.Errorf("sample %d: expected channel %d, got %d", i, i%3, b.ChannelOf(i))
		}
	}
	if b.At(1, 2) != 5 {
		t.Errorf("At(1, 2): expected 5, got %d", b.At(1, 2))
	}
	if e.EventCount() != 1 {
		t.Errorf("Expected EventCount 1, got %d", e.EventCount())
	}
	if !e.Armed() || adc.arms != 2 {
		t.Errorf("Expected rearm, armed=%v arms=%d", e.Armed(), adc.arms)
	}

	adc.Sample()
	adc.Sample()
	if len(got) != 2 || got[1].Sequence != 1 {
		t.Errorf("Expected second completion with sequence 1, got %d completions", len(got))
	}
}

func TestEngineCapacityMismatch(t *testing.T) {
	set, err := NewChannelSet(threeChannels()...)
	if err != nil {
		t.Fatalf("NewChannelSet failed: %v", err)
	}
	for _, capacity := range []int{0, -3, 4, 7} {
		_, err := NewEngine(set, &mockADC{}, nil, EngineConfig{Capacity: capacity})
		if !errors.Is(err, ErrCapacityMismatch) {
			t.Errorf("capacity %d: expected ErrCapacityMismatch, got %v", capacity, err)
		}
	}
	if _, err := NewEngine(set, &mockADC{}, nil, EngineConfig{Capacity: 3 * 11000}); !errors.Is(err, ErrCapacityTooLarge) {
		t.Errorf("Expected ErrCapacityTooLarge, got %v", err)
	}
	if _, err := NewEngine(set, &mockADC{}, nil, EngineConfig{Capacity: 3 * 10922}); err != nil {
		t.Errorf("capacity %d rejected: %v", 3*10922, err)
	}
}

func TestEngineRequiresSealedSet(t *testing.T) {
	set := &ChannelSet{}
	if err := set.AddChannel(threeChannels()[0]); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}
	if _, err := NewEngine(set, &mockADC{}, nil, EngineConfig{Capacity: 1}); !errors.Is(err, ErrChannelSetOpen) {
		t.Errorf("Expected ErrChannelSetOpen, got %v", err)
	}
	if _, err := NewEngine(nil, &mockADC{}, nil, EngineConfig{Capacity: 1}); !errors.Is(err, ErrMissingPeripheral) {
		t.Errorf("Expected ErrMissingPeripheral, got %v", err)
	}
}

func TestEngineHighAccuracyReleasedBeforeConsumer(t *testing.T) {
	drv := &mockClock{hfPolls: 2}
	clock := NewClockManager(drv, ClockOptions{HighAccuracy: true, MaxPolls: 10})

	var states []ClockState
	e, _ := newTestEngine(t, threeChannels()[:1], clock, EngineConfig{
		Capacity: 6,
		Consumer: ConsumerFunc(func(b Burst) {
			states = append(states, clock.State())
		}),
	})

	const bursts = 18
	for i := 0; i < bursts; i++ {
		if err := e.BeginConversion(); err != nil {
			t.Fatalf("BeginConversion %d failed: %v", i, err)
		}
	}

	if len(states) != 3 {
		t.Fatalf("Expected 3 completions, got %d", len(states))
	}
	for i, s := range states {
		if s != ClockReleased {
			t.Errorf("completion %d: consumer saw clock %v", i, s)
		}
	}
	if clock.Requests() != 3 || clock.Releases() != 3 {
		t.Errorf("Expected 3 requests and 3 releases, got %d and %d", clock.Requests(), clock.Releases())
	}
}

func TestEngineHighAccuracyTimeout(t *testing.T) {
	clock := NewClockManager(&mockClock{hfPolls: -1}, ClockOptions{HighAccuracy: true, MaxPolls: 4})
	e, adc := newTestEngine(t, threeChannels(), clock, EngineConfig{Capacity: 3})

	if err := e.BeginConversion(); !errors.Is(err, ErrClockTimeout) {
		t.Errorf("Expected ErrClockTimeout, got %v", err)
	}
	if adc.pos != 0 {
		t.Error("Burst started without a running clock")
	}
}

func TestEngineDisarmedTriggerLeavesClockReleased(t *testing.T) {
	clock := NewClockManager(&mockClock{hfPolls: 1}, ClockOptions{HighAccuracy: true, MaxPolls: 10})
	e, adc := newTestEngine(t, threeChannels()[:1], clock, EngineConfig{Capacity: 1})

	e.Pause()
	if err := e.BeginConversion(); err != nil {
		t.Fatalf("BeginConversion failed: %v", err)
	}
	if e.Armed() || e.EventCount() != 1 {
		t.Fatalf("Expected one completion and a disarmed engine, armed=%v count=%d", e.Armed(), e.EventCount())
	}

	for i := 0; i < 3; i++ {
		if err := e.BeginConversion(); err != nil {
			t.Fatalf("BeginConversion %d while paused failed: %v", i, err)
		}
		if clock.State() != ClockReleased {
			t.Fatalf("trigger %d while paused left the clock %v", i, clock.State())
		}
	}
	if e.Dropped() != 3 {
		t.Errorf("Expected 3 dropped triggers, got %d", e.Dropped())
	}
	if adc.dropped != 0 {
		t.Errorf("Dropped triggers reached the converter: %d", adc.dropped)
	}
	if clock.Requests() != 1 || clock.Releases() != 1 {
		t.Errorf("Expected 1 request and 1 release, got %d and %d", clock.Requests(), clock.Releases())
	}
}

func TestEnginePauseResume(t *testing.T) {
	completions := 0
	e, adc := newTestEngine(t, threeChannels()[:1], nil, EngineConfig{
		Capacity: 2,
		Consumer: ConsumerFunc(func(Burst) { completions++ }),
	})

	e.Pause()
	adc.Sample()
	adc.Sample()
	if completions != 1 || e.Armed() {
		t.Fatalf("Expected one completion and a disarmed engine, got %d armed=%v", completions, e.Armed())
	}

	// Triggers while disarmed are dropped; the last fill stays intact.
	adc.Sample()
	adc.Sample()
	if adc.dropped != 2 {
		t.Errorf("Expected 2 dropped bursts, got %d", adc.dropped)
	}
	if buf := e.Buffer(0); buf[0] != 0 || buf[1] != 1 {
		t.Errorf("Buffer overwritten while disarmed: %v", buf)
	}

	if err := e.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	adc.Sample()
	adc.Sample()
	if completions != 2 || !e.Armed() {
		t.Errorf("Expected sampling to continue after Resume, completions=%d", completions)
	}
	if e.EventCount() != 2 {
		t.Errorf("Expected EventCount 2, got %d", e.EventCount())
	}
}

func TestEngineDoubleBuffer(t *testing.T) {
	var firsts []*Sample
	e, adc := newTestEngine(t, threeChannels()[:1], nil, EngineConfig{
		Capacity:     2,
		DoubleBuffer: true,
		Consumer:     ConsumerFunc(func(b Burst) { firsts = append(firsts, &b.Samples[0]) }),
	})

	for i := 0; i < 6; i++ {
		adc.Sample()
	}
	if len(firsts) != 3 {
		t.Fatalf("Expected 3 completions, got %d", len(firsts))
	}
	b0, b1 := &e.Buffer(0)[0], &e.Buffer(1)[0]
	if firsts[0] != b0 || firsts[1] != b1 || firsts[2] != b0 {
		t.Error("Buffers did not alternate")
	}
	if len(e.Buffer(0)) != 2 || cap(e.Buffer(0)) != 2 {
		t.Errorf("Buffer 0 bleeds into buffer 1: len=%d cap=%d", len(e.Buffer(0)), cap(e.Buffer(0)))
	}
}

func TestEngineRearmRejected(t *testing.T) {
	fatal := &fatalRecorder{}
	e, adc := newTestEngine(t, threeChannels()[:1], nil, EngineConfig{Capacity: 1, OnFatal: fatal.handle})

	adc.armErr = errors.New("busy")
	adc.Sample()
	if len(fatal.errs) != 1 || !errors.Is(fatal.errs[0], ErrRearmRejected) {
		t.Fatalf("Expected ErrRearmRejected, got %v", fatal.errs)
	}
	if e.EventCount() != 0 {
		t.Errorf("Failed completion counted: %d", e.EventCount())
	}

	if err := e.Rearm(nil); !errors.Is(err, ErrRearmRejected) {
		t.Errorf("empty rearm: expected ErrRearmRejected, got %v", err)
	}
}

func TestEngineRearmLengthMustMatchChannels(t *testing.T) {
	e, _ := newTestEngine(t, threeChannels(), nil, EngineConfig{Capacity: 3})
	if err := e.Rearm(make([]Sample, 4)); !errors.Is(err, ErrRearmRejected) {
		t.Errorf("Expected ErrRearmRejected, got %v", err)
	}
}

func TestEnginePayloadSize(t *testing.T) {
	fatal := &fatalRecorder{}
	e, _ := newTestEngine(t, threeChannels(), nil, EngineConfig{Capacity: 6, OnFatal: fatal.handle})

	e.handleCompletion(make([]Sample, 3))
	if len(fatal.errs) != 1 || !errors.Is(fatal.errs[0], ErrPayloadSize) {
		t.Errorf("Expected ErrPayloadSize, got %v", fatal.errs)
	}
}

func TestEngineReentry(t *testing.T) {
	fatal := &fatalRecorder{}
	var e *Engine
	e, adc := newTestEngine(t, threeChannels()[:1], nil, EngineConfig{
		Capacity: 1,
		OnFatal:  fatal.handle,
		Consumer: ConsumerFunc(func(b Burst) {
			if len(fatal.errs) == 0 {
				e.handleCompletion(b.Samples)
			}
		}),
	})

	adc.Sample()
	if len(fatal.errs) != 1 || !errors.Is(fatal.errs[0], ErrReentrantHandle) {
		t.Errorf("Expected ErrReentrantHandle, got %v", fatal.errs)
	}
}

func TestEngineIndicator(t *testing.T) {
	led := &countingIndicator{}
	_, adc := newTestEngine(t, threeChannels(), nil, EngineConfig{Capacity: 3, Indicator: led})

	for i := 0; i < 4; i++ {
		adc.Sample()
	}
	if led.toggles != 4 {
		t.Errorf("Expected 4 toggles, got %d", led.toggles)
	}
}
