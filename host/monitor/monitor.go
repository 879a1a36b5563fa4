// Package monitor decodes the burst frames a board streams on its trace
// UART, detects dropped completions from sequence gaps and renders samples
// as voltages.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"adcpipe/config"
	"adcpipe/core"
	"adcpipe/protocol"

	"periph.io/x/conn/v3/physic"
)

// Event is one decoded frame.
type Event struct {
	Frame protocol.BurstFrame

	// Missed is the number of completions between the previous frame and
	// this one that never arrived. Either the board dropped them from its
	// trace ring or the link lost them.
	Missed uint32
}

// Stats summarizes a session.
type Stats struct {
	Frames    uint64
	Gaps      uint64 // frames that followed a gap
	Missed    uint64 // total completions missing
	Truncated uint64 // frames carrying only part of their buffer
	Errors    uint32 // corrupt frames skipped
}

// Options configures a Monitor.
type Options struct {
	// Config supplies channel settings for voltage rendering. Without it
	// only raw values are printed.
	Config *config.Config

	// Follow treats io.EOF as a read timeout and keeps reading, as a
	// serial port with a read timeout reports no data.
	Follow bool

	// IdleDelay is slept after an empty read in Follow mode.
	IdleDelay time.Duration
}

// Monitor reads frames from a byte stream.
type Monitor struct {
	src      io.Reader
	reader   *protocol.FrameReader
	channels []core.ChannelConfig
	vdd      physic.ElectricPotential
	follow   bool
	idle     time.Duration

	frame    protocol.BurstFrame
	last     uint32
	haveLast bool
	stats    Stats
	buf      [256]byte
}

// New creates a monitor reading from src.
func New(src io.Reader, opts Options) (*Monitor, error) {
	m := &Monitor{
		src:    src,
		reader: protocol.NewFrameReader(4 * protocol.MessageMax),
		follow: opts.Follow,
		idle:   opts.IdleDelay,
	}
	if opts.Config != nil {
		channels, err := opts.Config.CoreChannels()
		if err != nil {
			return nil, err
		}
		m.channels = channels
		m.vdd = opts.Config.VDD()
	}
	return m, nil
}

// Run reads until ctx is done, src fails, or src ends outside Follow mode.
// handle is called for each decoded frame.
func (m *Monitor) Run(ctx context.Context, handle func(Event)) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n := m.reader.Free()
		if n > len(m.buf) {
			n = len(m.buf)
		}
		n, err := m.src.Read(m.buf[:n])
		if n > 0 {
			m.Feed(m.buf[:n], handle)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && m.follow:
			if n == 0 && m.idle > 0 {
				time.Sleep(m.idle)
			}
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("read trace: %w", err)
		}
	}
}

// Feed decodes frames from p.
func (m *Monitor) Feed(p []byte, handle func(Event)) {
	for len(p) > 0 {
		n := m.reader.Write(p)
		p = p[n:]
		for m.reader.Next(&m.frame) {
			handle(m.account(&m.frame))
		}
		if n == 0 && len(p) > 0 {
			// FrameReader is full of a frame it cannot finish; it resyncs
			// on its own, so this cannot spin.
			break
		}
	}
}

func (m *Monitor) account(f *protocol.BurstFrame) Event {
	ev := Event{Frame: *f}
	if m.haveLast {
		ev.Missed = f.Sequence - m.last - 1
		if f.Sequence == m.last {
			ev.Missed = 0
		}
	}
	m.last = f.Sequence
	m.haveLast = true

	m.stats.Frames++
	if ev.Missed > 0 {
		m.stats.Gaps++
		m.stats.Missed += uint64(ev.Missed)
	}
	if f.Truncated() {
		m.stats.Truncated++
	}
	m.stats.Errors = m.reader.Errors()
	return ev
}

// Stats returns the session counters.
func (m *Monitor) Stats() Stats {
	return m.stats
}

// Format renders ev as one line:
//
//	#12 ch0 AIN2=512 (900mV) ch1 AIN6=...  [missed 3]
func (m *Monitor) Format(ev Event) string {
	var sb strings.Builder
	f := &ev.Frame
	fmt.Fprintf(&sb, "#%d", f.Sequence)
	for i, s := range f.Carried() {
		ch := 0
		if f.Channels > 0 {
			ch = i % int(f.Channels)
		}
		if ch == 0 && i > 0 {
			sb.WriteString(" |")
		}
		if ch < len(m.channels) {
			c := m.channels[ch]
			fmt.Fprintf(&sb, " %v=%d (%v)", c.Input, s, c.Voltage(core.Sample(s), m.vdd))
		} else {
			fmt.Fprintf(&sb, " ch%d=%d", ch, s)
		}
	}
	if f.Truncated() {
		fmt.Fprintf(&sb, " ... %d of %d", f.Count, f.Total)
	}
	if ev.Missed > 0 {
		fmt.Fprintf(&sb, "  [missed %d]", ev.Missed)
	}
	return sb.String()
}
