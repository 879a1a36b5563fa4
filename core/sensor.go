package core

import (
	"errors"
	"sync/atomic"

	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// ErrNoReading is returned by LatestReading.Update before the first burst.
var ErrNoReading = errors.New("no completed burst yet")

// LatestReading keeps the last burst of the most recent buffer and exposes
// it through the TinyGo drivers.Sensor interface, so application code can
// poll it like any other voltage sensor.
type LatestReading struct {
	channels *ChannelSet
	vdd      physic.ElectricPotential

	// written by OnBurst (handler context)
	pending    [MaxChannels]Sample
	pendingSeq uint32
	fresh      uint32

	// owned by the background context
	values [MaxChannels]Sample
	seq    uint32
	valid  bool
}

var _ drivers.Sensor = (*LatestReading)(nil)

// NewLatestReading converts results of channels using supply vdd.
func NewLatestReading(channels *ChannelSet, vdd physic.ElectricPotential) *LatestReading {
	return &LatestReading{channels: channels, vdd: vdd}
}

// OnBurst copies the last round-robin burst of b.
func (l *LatestReading) OnBurst(b Burst) {
	if b.Bursts() == 0 {
		return
	}
	copy(l.pending[:], b.Samples[len(b.Samples)-b.Channels:])
	l.pendingSeq = b.Sequence
	atomic.StoreUint32(&l.fresh, 1)
}

// Update latches the newest burst when which includes drivers.Voltage.
func (l *LatestReading) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}
	if atomic.LoadUint32(&l.fresh) != 0 {
		state := DisableInterrupts()
		l.values = l.pending
		l.seq = l.pendingSeq
		atomic.StoreUint32(&l.fresh, 0)
		RestoreInterrupts(state)
		l.valid = true
	}
	if !l.valid {
		return ErrNoReading
	}
	return nil
}

// Raw returns the latched result of channel ch.
func (l *LatestReading) Raw(ch int) Sample {
	return l.values[ch]
}

// Voltage returns the latched potential of channel ch in microvolts, the
// unit TinyGo drivers use.
func (l *LatestReading) Voltage(ch int) int32 {
	v := l.channels.Channel(ch).Voltage(l.values[ch], l.vdd)
	return int32(v / physic.MicroVolt)
}

// Potential returns the latched potential of channel ch.
func (l *LatestReading) Potential(ch int) physic.ElectricPotential {
	return l.channels.Channel(ch).Voltage(l.values[ch], l.vdd)
}

// Sequence returns the buffer sequence number of the latched values.
func (l *LatestReading) Sequence() uint32 {
	return l.seq
}
