package core

import (
	"io"
	"sync/atomic"

	"adcpipe/protocol"
)

// Trace ring sizing
const (
	TraceRingSize = 8                        // records kept between flushes
	TraceSamples  = protocol.FrameSamplesMax // samples captured per record
)

// TraceRecord is a snapshot of one completed buffer.
type TraceRecord struct {
	Sequence uint32
	Channels uint8
	Total    uint16 // samples in the buffer
	Count    uint8  // samples captured, <= TraceSamples
	Samples  [TraceSamples]Sample
}

// TraceWriter renders trace records in the background context.
type TraceWriter interface {
	WriteTrace(rec *TraceRecord) error
}

// TraceRing captures bursts from the completion handler without allocating
// and hands them to a TraceWriter from the background loop. It has one
// producer (the handler) and one consumer (Flush). When the background
// falls behind, new records are dropped and counted.
type TraceRing struct {
	slots   [TraceRingSize]TraceRecord
	head    uint32
	tail    uint32
	dropped uint32
}

// OnBurst records b. Safe to use as a Consumer.
func (r *TraceRing) OnBurst(b Burst) {
	head := atomic.LoadUint32(&r.head)
	if head-atomic.LoadUint32(&r.tail) >= TraceRingSize {
		atomic.AddUint32(&r.dropped, 1)
		return
	}
	rec := &r.slots[head%TraceRingSize]
	rec.Sequence = b.Sequence
	rec.Channels = uint8(b.Channels)
	rec.Total = uint16(len(b.Samples))
	rec.Count = uint8(copy(rec.Samples[:], b.Samples))
	atomic.StoreUint32(&r.head, head+1)
}

// Flush writes every pending record to w and returns how many were written.
// A record is consumed even if w fails on it.
func (r *TraceRing) Flush(w TraceWriter) (int, error) {
	n := 0
	for {
		tail := atomic.LoadUint32(&r.tail)
		if tail == atomic.LoadUint32(&r.head) {
			return n, nil
		}
		err := w.WriteTrace(&r.slots[tail%TraceRingSize])
		atomic.StoreUint32(&r.tail, tail+1)
		if err != nil {
			return n, err
		}
		n++
	}
}

// Pending returns the number of records waiting for Flush.
func (r *TraceRing) Pending() int {
	return int(atomic.LoadUint32(&r.head) - atomic.LoadUint32(&r.tail))
}

// Dropped returns the number of records lost to a full ring.
func (r *TraceRing) Dropped() uint32 {
	return atomic.LoadUint32(&r.dropped)
}

// TextTrace renders records as text lines:
//
//	adc event counter: 3
//	ADC value channel 0: 512
type TextTrace struct {
	out  DebugWriter
	line [48]byte
}

// NewTextTrace writes lines through out.
func NewTextTrace(out DebugWriter) *TextTrace {
	return &TextTrace{out: out}
}

func (t *TextTrace) WriteTrace(rec *TraceRecord) error {
	b := append(t.line[:0], "adc event counter: "...)
	b = appendInt(b, int64(rec.Sequence))
	t.out(string(b))
	if rec.Channels == 0 {
		return nil
	}
	for i, s := range rec.Samples[:rec.Count] {
		b = append(t.line[:0], "ADC value channel "...)
		b = appendInt(b, int64(i%int(rec.Channels)))
		b = append(b, ": "...)
		b = appendInt(b, int64(s))
		t.out(string(b))
	}
	return nil
}

// FrameTrace renders records as protocol burst frames for a host monitor.
type FrameTrace struct {
	w     io.Writer
	out   protocol.ScratchOutput
	frame protocol.BurstFrame
}

// NewFrameTrace writes frames to w.
func NewFrameTrace(w io.Writer) *FrameTrace {
	return &FrameTrace{w: w}
}

func (t *FrameTrace) WriteTrace(rec *TraceRecord) error {
	t.frame.Sequence = rec.Sequence
	t.frame.Channels = rec.Channels
	t.frame.Total = rec.Total
	t.frame.Count = rec.Count
	for i, s := range rec.Samples[:rec.Count] {
		t.frame.Samples[i] = int16(s)
	}
	t.out.Reset()
	protocol.EncodeBurstFrame(&t.out, &t.frame)
	_, err := t.w.Write(t.out.Result())
	return err
}
