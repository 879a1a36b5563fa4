package core

// Burst is the read-only view of a full buffer handed to consumers. Samples
// is only valid for the duration of OnBurst; the engine rearms it right after.
type Burst struct {
	Samples  []Sample
	Channels int
	Sequence uint32 // EventCounter value when the buffer completed
}

// Len returns the number of samples.
func (b Burst) Len() int { return len(b.Samples) }

// Bursts returns how many round-robin bursts the buffer holds.
func (b Burst) Bursts() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// ChannelOf returns the channel index of the sample at offset.
func (b Burst) ChannelOf(offset int) int { return offset % b.Channels }

// At returns channel ch of burst n.
func (b Burst) At(n, ch int) Sample { return b.Samples[n*b.Channels+ch] }

// Consumer receives completed buffers. OnBurst runs at interrupt priority and
// must not block or retain b.Samples.
type Consumer interface {
	OnBurst(b Burst)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(b Burst)

func (f ConsumerFunc) OnBurst(b Burst) { f(b) }

// Consumers fans a burst out to several consumers in order.
type Consumers []Consumer

func (cs Consumers) OnBurst(b Burst) {
	for _, c := range cs {
		c.OnBurst(b)
	}
}

type noConsumer struct{}

func (noConsumer) OnBurst(Burst) {}
