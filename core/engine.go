package core

import (
	"fmt"
	"sync/atomic"
)

// MaxCapacity is the longest buffer the converter's DMA counter can
// describe (15-bit MAXCNT).
const MaxCapacity = 1<<15 - 1

// EngineConfig is fixed at construction.
type EngineConfig struct {
	// Capacity is the buffer length in samples. Must be a positive
	// multiple of the channel count.
	Capacity int

	// DoubleBuffer allocates a second buffer and alternates between them.
	DoubleBuffer bool

	Consumer  Consumer
	Indicator Indicator
	OnFatal   FatalHandler
}

// Engine owns the sample buffers and runs the completion handler.
//
// Buffer ownership: the converter owns the armed buffer until it reports it
// full. The completion handler then owns it until it rearms, which hands
// either the same buffer or the spare one back to the converter.
type Engine struct {
	channels *ChannelSet
	adc      ADCDriver
	clock    *ClockManager

	bufs         [2][]Sample
	doubleBuffer bool
	armedLen     int
	inHandler    bool

	counter uint32 // EventCounter
	paused  uint32
	armed   uint32
	dropped uint32

	consumer  Consumer
	indicator Indicator
	onFatal   FatalHandler
}

// NewEngine allocates the sample buffers and registers the completion
// handler with adc. clock may be nil when no clock gating is wanted.
func NewEngine(channels *ChannelSet, adc ADCDriver, clock *ClockManager, cfg EngineConfig) (*Engine, error) {
	if channels == nil || adc == nil {
		return nil, ErrMissingPeripheral
	}
	if !channels.Sealed() {
		return nil, ErrChannelSetOpen
	}
	n := channels.Count()
	if cfg.Capacity <= 0 || cfg.Capacity%n != 0 {
		return nil, fmt.Errorf("%w: capacity %d, %d channels", ErrCapacityMismatch, cfg.Capacity, n)
	}
	if cfg.Capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: capacity %d, max %d", ErrCapacityTooLarge, cfg.Capacity, MaxCapacity)
	}

	e := &Engine{
		channels:     channels,
		adc:          adc,
		clock:        clock,
		doubleBuffer: cfg.DoubleBuffer,
		consumer:     cfg.Consumer,
		indicator:    cfg.Indicator,
		onFatal:      cfg.OnFatal,
	}
	if e.consumer == nil {
		e.consumer = noConsumer{}
	}
	if e.indicator == nil {
		e.indicator = noIndicator{}
	}
	if e.onFatal == nil {
		e.onFatal = defaultFatal
	}

	if cfg.DoubleBuffer {
		backing := make([]Sample, 2*cfg.Capacity)
		e.bufs[0] = backing[:cfg.Capacity:cfg.Capacity]
		e.bufs[1] = backing[cfg.Capacity:]
	} else {
		e.bufs[0] = make([]Sample, cfg.Capacity)
	}

	adc.SetCompletionHandler(e.handleCompletion)
	return e, nil
}

// Start arms the first buffer.
func (e *Engine) Start() error {
	return e.Rearm(e.bufs[0])
}

// Rearm hands buf to the converter so that following triggers fill it from
// offset 0. It is called by the completion handler before it returns; if it
// is not called, sampling stops.
func (e *Engine) Rearm(buf []Sample) error {
	n := e.channels.Count()
	if len(buf) == 0 || len(buf)%n != 0 {
		return fmt.Errorf("%w: length %d, %d channels", ErrRearmRejected, len(buf), n)
	}
	if err := e.adc.Arm(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrRearmRejected, err)
	}
	e.armedLen = len(buf)
	atomic.StoreUint32(&e.armed, 1)
	return nil
}

// BeginConversion starts one burst from software. In high-accuracy mode it
// first blocks until the oscillator runs. With no buffer armed the trigger
// is dropped before the clock is requested, since no completion would
// release it.
func (e *Engine) BeginConversion() error {
	if atomic.LoadUint32(&e.armed) == 0 {
		atomic.AddUint32(&e.dropped, 1)
		return nil
	}
	if e.clock != nil {
		if err := e.clock.PrepareConversion(); err != nil {
			return err
		}
	}
	e.adc.Sample()
	return nil
}

// Pause makes the next completion skip the rearm. Sampling then stops
// silently: triggers keep arriving and the converter drops them.
func (e *Engine) Pause() {
	atomic.StoreUint32(&e.paused, 1)
}

// Resume clears a pause and, if the converter was left disarmed, rearms it.
// Background context only.
func (e *Engine) Resume() error {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	atomic.StoreUint32(&e.paused, 0)
	if atomic.LoadUint32(&e.armed) != 0 {
		return nil
	}
	return e.Rearm(e.bufs[0])
}

// Paused reports whether a pause is requested.
func (e *Engine) Paused() bool {
	return atomic.LoadUint32(&e.paused) != 0
}

// Armed reports whether the converter currently holds a buffer.
func (e *Engine) Armed() bool {
	return atomic.LoadUint32(&e.armed) != 0
}

// Dropped returns the software triggers skipped because no buffer was
// armed. Hardware-routed triggers are dropped by the converter instead.
func (e *Engine) Dropped() uint32 {
	return atomic.LoadUint32(&e.dropped)
}

// EventCount returns the number of completed buffers. It wraps at 2^32.
func (e *Engine) EventCount() uint32 {
	return atomic.LoadUint32(&e.counter)
}

// Buffer returns engine buffer i (0, or 1 with double buffering).
func (e *Engine) Buffer(i int) []Sample {
	return e.bufs[i]
}

// Channels returns the channel set.
func (e *Engine) Channels() *ChannelSet {
	return e.channels
}

// handleCompletion is the single completion entry point. It runs at
// interrupt priority and must run to completion:
//  1. release the high-accuracy clock
//  2. hand the buffer to the consumer
//  3. rearm
//  4. count the completion
//  5. toggle the indicator
func (e *Engine) handleCompletion(buf []Sample) {
	if e.inHandler {
		e.onFatal(ErrReentrantHandle)
		return
	}
	e.inHandler = true
	atomic.StoreUint32(&e.armed, 0)

	if len(buf) != e.armedLen {
		e.inHandler = false
		e.onFatal(fmt.Errorf("%w: got %d, armed %d", ErrPayloadSize, len(buf), e.armedLen))
		return
	}

	if e.clock != nil {
		e.clock.ReleaseHighAccuracy()
	}

	e.consumer.OnBurst(Burst{
		Samples:  buf,
		Channels: e.channels.Count(),
		Sequence: atomic.LoadUint32(&e.counter),
	})

	if atomic.LoadUint32(&e.paused) == 0 {
		if err := e.Rearm(e.nextBuffer(buf)); err != nil {
			e.inHandler = false
			e.onFatal(err)
			return
		}
	}

	atomic.AddUint32(&e.counter, 1)
	e.indicator.Toggle()
	e.inHandler = false
}

// nextBuffer picks the buffer to rearm after done completed.
func (e *Engine) nextBuffer(done []Sample) []Sample {
	if !e.doubleBuffer {
		return done
	}
	if sameBuffer(done, e.bufs[0]) {
		return e.bufs[1]
	}
	return e.bufs[0]
}

func sameBuffer(a, b []Sample) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
