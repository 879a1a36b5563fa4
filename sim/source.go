package sim

import (
	"math"

	"adcpipe/core"
)

// Source returns the conversion result of ch for burst number n.
type Source func(ch core.ChannelConfig, n uint64) core.Sample

// Counting returns 0, 1, 2, ... across channels and bursts, so every sample
// records its own position in the stream.
func Counting() Source {
	var next core.Sample
	return func(core.ChannelConfig, uint64) core.Sample {
		v := next
		next++
		return v
	}
}

// Constant returns v for every channel.
func Constant(v core.Sample) Source {
	return func(core.ChannelConfig, uint64) core.Sample { return v }
}

// PerInput returns values[input] for each channel, or 0 for inputs not in
// the map.
func PerInput(values map[core.AnalogInput]core.Sample) Source {
	return func(ch core.ChannelConfig, _ uint64) core.Sample { return values[ch.Input] }
}

// Sine returns a mid-scale sine wave with the given period in bursts. Each
// input is phase shifted by an eighth of a period.
func Sine(period uint64) Source {
	if period == 0 {
		period = 1
	}
	return func(ch core.ChannelConfig, n uint64) core.Sample {
		half := float64(ch.Resolution.Max()) / 2
		phase := 2 * math.Pi * (float64(n%period)/float64(period) + float64(ch.Input)/8)
		return core.Sample(half + half*math.Sin(phase))
	}
}
