package core

import (
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"
)

// MaxChannels is the number of conversion channels a burst can scan.
const MaxChannels = 8

// Sample is one conversion result as written by the converter.
type Sample int16

// AnalogInput selects the analog input a channel converts.
type AnalogInput uint8

const (
	InputAIN0 AnalogInput = iota
	InputAIN1
	InputAIN2
	InputAIN3
	InputAIN4
	InputAIN5
	InputAIN6
	InputAIN7
	InputVDD
)

func (in AnalogInput) String() string {
	if in == InputVDD {
		return "VDD"
	}
	return "AIN" + strconv.Itoa(int(in))
}

// ParseInput accepts "AIN3", "ain3", "3" or "vdd".
func ParseInput(s string) (AnalogInput, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "vdd" {
		return InputVDD, nil
	}
	s = strings.TrimPrefix(s, "ain")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > int(InputAIN7) {
		return 0, ErrInvalidChannel
	}
	return AnalogInput(n), nil
}

// Gain is the input scaling applied before conversion.
type Gain uint8

const (
	Gain1_6 Gain = iota
	Gain1_5
	Gain1_4
	Gain1_3
	Gain1_2
	Gain1
	Gain2
	Gain4
)

var gainRatios = [...][2]int64{
	Gain1_6: {1, 6},
	Gain1_5: {1, 5},
	Gain1_4: {1, 4},
	Gain1_3: {1, 3},
	Gain1_2: {1, 2},
	Gain1:   {1, 1},
	Gain2:   {2, 1},
	Gain4:   {4, 1},
}

// Ratio returns the gain as numerator and denominator.
func (g Gain) Ratio() (num, den int64) {
	if int(g) >= len(gainRatios) {
		return 0, 1
	}
	r := gainRatios[g]
	return r[0], r[1]
}

func (g Gain) String() string {
	num, den := g.Ratio()
	if den == 1 {
		return strconv.FormatInt(num, 10)
	}
	return strconv.FormatInt(num, 10) + "/" + strconv.FormatInt(den, 10)
}

// ParseGain accepts the forms printed by Gain.String, e.g. "1/3" or "2".
func ParseGain(s string) (Gain, error) {
	s = strings.TrimSpace(s)
	for g := range gainRatios {
		if Gain(g).String() == s {
			return Gain(g), nil
		}
	}
	return 0, ErrInvalidChannel
}

// Resolution is the conversion bit depth.
type Resolution uint8

const (
	Resolution8  Resolution = 8
	Resolution10 Resolution = 10
	Resolution12 Resolution = 12
	Resolution14 Resolution = 14
)

// Bits returns the bit depth.
func (r Resolution) Bits() uint8 { return uint8(r) }

// Max returns the largest single-ended result.
func (r Resolution) Max() Sample { return Sample(1<<r.Bits() - 1) }

func (r Resolution) valid() bool {
	switch r {
	case Resolution8, Resolution10, Resolution12, Resolution14:
		return true
	}
	return false
}

// Reference is the conversion reference source.
type Reference uint8

const (
	RefInternal Reference = iota // 0.6 V internal reference
	RefVDD4                      // VDD/4
	RefBandgap                   // 1.2 V bandgap
)

// Voltage returns the reference potential for a given supply.
func (r Reference) Voltage(vdd physic.ElectricPotential) physic.ElectricPotential {
	switch r {
	case RefVDD4:
		return vdd / 4
	case RefBandgap:
		return 1200 * physic.MilliVolt
	default:
		return 600 * physic.MilliVolt
	}
}

func (r Reference) String() string {
	switch r {
	case RefVDD4:
		return "vdd/4"
	case RefBandgap:
		return "bandgap"
	default:
		return "internal"
	}
}

// ParseReference accepts "internal", "vdd/4" or "bandgap".
func ParseReference(s string) (Reference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "internal":
		return RefInternal, nil
	case "vdd/4", "vdd4":
		return RefVDD4, nil
	case "bandgap", "vbg":
		return RefBandgap, nil
	}
	return 0, ErrInvalidChannel
}

// ChannelConfig describes one analog channel. Immutable once added.
type ChannelConfig struct {
	Input      AnalogInput
	Gain       Gain
	Resolution Resolution
	Reference  Reference
}

// Validate checks field ranges.
func (c ChannelConfig) Validate() error {
	if c.Input > InputVDD || int(c.Gain) >= len(gainRatios) || !c.Resolution.valid() || c.Reference > RefBandgap {
		return ErrInvalidChannel
	}
	return nil
}

// FullScale returns the input potential that converts to 2^bits.
func (c ChannelConfig) FullScale(vdd physic.ElectricPotential) physic.ElectricPotential {
	num, den := c.Gain.Ratio()
	if num == 0 {
		return 0
	}
	return c.Reference.Voltage(vdd) * physic.ElectricPotential(den) / physic.ElectricPotential(num)
}

// Voltage converts a single-ended raw result into a potential.
func (c ChannelConfig) Voltage(raw Sample, vdd physic.ElectricPotential) physic.ElectricPotential {
	return c.FullScale(vdd) * physic.ElectricPotential(raw) >> c.Resolution.Bits()
}

// ChannelSet is the ordered set of channels converted on every burst. It is
// filled during initialization and sealed before the engine is built.
type ChannelSet struct {
	channels [MaxChannels]ChannelConfig
	count    uint8
	sealed   bool
}

// NewChannelSet builds and seals a set from cfgs.
func NewChannelSet(cfgs ...ChannelConfig) (*ChannelSet, error) {
	s := &ChannelSet{}
	for _, c := range cfgs {
		if err := s.AddChannel(c); err != nil {
			return nil, err
		}
	}
	if err := s.Seal(); err != nil {
		return nil, err
	}
	return s, nil
}

// AddChannel appends a channel. Only valid before Seal.
func (s *ChannelSet) AddChannel(cfg ChannelConfig) error {
	if s.sealed {
		return ErrChannelSetSealed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if s.count >= MaxChannels {
		return ErrTooManyChannels
	}
	s.channels[s.count] = cfg
	s.count++
	return nil
}

// Seal freezes the set. An empty set cannot be sealed.
func (s *ChannelSet) Seal() error {
	if s.count == 0 {
		return ErrNoChannels
	}
	s.sealed = true
	return nil
}

// Sealed reports whether the set is frozen.
func (s *ChannelSet) Sealed() bool { return s.sealed }

// Count returns the number of channels.
func (s *ChannelSet) Count() int { return int(s.count) }

// Channel returns the i-th channel in configuration order.
func (s *ChannelSet) Channel(i int) ChannelConfig { return s.channels[i] }

// ChannelOf returns the channel index that produced the sample at offset
// within a buffer.
func (s *ChannelSet) ChannelOf(offset int) int { return offset % int(s.count) }
