package core

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestChannelSetBuild(t *testing.T) {
	set, err := NewChannelSet(threeChannels()...)
	if err != nil {
		t.Fatalf("NewChannelSet failed: %v", err)
	}
	if !set.Sealed() || set.Count() != 3 {
		t.Fatalf("Expected sealed set of 3, got sealed=%v count=%d", set.Sealed(), set.Count())
	}
	if set.Channel(1).Input != InputAIN6 {
		t.Errorf("Expected AIN6 at index 1, got %v", set.Channel(1).Input)
	}
	for offset, want := range []int{0, 1, 2, 0, 1, 2} {
		if got := set.ChannelOf(offset); got != want {
			t.Errorf("ChannelOf(%d) = %d, expected %d", offset, got, want)
		}
	}
	if err := set.AddChannel(threeChannels()[0]); !errors.Is(err, ErrChannelSetSealed) {
		t.Errorf("Expected ErrChannelSetSealed, got %v", err)
	}
}

func TestChannelSetErrors(t *testing.T) {
	if _, err := NewChannelSet(); !errors.Is(err, ErrNoChannels) {
		t.Errorf("empty set: expected ErrNoChannels, got %v", err)
	}

	many := make([]ChannelConfig, MaxChannels+1)
	for i := range many {
		many[i] = ChannelConfig{Input: InputAIN0, Gain: Gain1, Resolution: Resolution12}
	}
	if _, err := NewChannelSet(many...); !errors.Is(err, ErrTooManyChannels) {
		t.Errorf("oversized set: expected ErrTooManyChannels, got %v", err)
	}

	bad := []ChannelConfig{
		{Input: InputVDD + 1, Resolution: Resolution10},
		{Gain: Gain4 + 1, Resolution: Resolution10},
		{Resolution: 9},
		{Resolution: Resolution10, Reference: RefBandgap + 1},
	}
	for i, c := range bad {
		if _, err := NewChannelSet(c); !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("bad[%d]: expected ErrInvalidChannel, got %v", i, err)
		}
	}
}

func TestChannelVoltage(t *testing.T) {
	vdd := 3 * physic.Volt
	tests := []struct {
		cfg  ChannelConfig
		raw  Sample
		want physic.ElectricPotential
	}{
		{ChannelConfig{Gain: Gain1_3, Resolution: Resolution10, Reference: RefInternal}, 512, 900 * physic.MilliVolt},
		{ChannelConfig{Gain: Gain1_6, Resolution: Resolution12, Reference: RefInternal}, 2048, 1800 * physic.MilliVolt},
		{ChannelConfig{Gain: Gain1_4, Resolution: Resolution8, Reference: RefVDD4}, 128, 1500 * physic.MilliVolt},
		{ChannelConfig{Gain: Gain1, Resolution: Resolution10, Reference: RefBandgap}, 0, 0},
	}
	for _, tt := range tests {
		if got := tt.cfg.Voltage(tt.raw, vdd); got != tt.want {
			t.Errorf("%v gain %v raw %d: expected %v, got %v", tt.cfg.Reference, tt.cfg.Gain, tt.raw, tt.want, got)
		}
	}
}

func TestParseChannelFields(t *testing.T) {
	if in, err := ParseInput("AIN7"); err != nil || in != InputAIN7 {
		t.Errorf("ParseInput(AIN7) = %v, %v", in, err)
	}
	if in, err := ParseInput("vdd"); err != nil || in != InputVDD {
		t.Errorf("ParseInput(vdd) = %v, %v", in, err)
	}
	if _, err := ParseInput("AIN8"); err == nil {
		t.Error("ParseInput(AIN8) accepted")
	}
	for g := Gain1_6; g <= Gain4; g++ {
		got, err := ParseGain(g.String())
		if err != nil || got != g {
			t.Errorf("ParseGain(%q) = %v, %v", g.String(), got, err)
		}
	}
	if _, err := ParseGain("3"); err == nil {
		t.Error("ParseGain(3) accepted")
	}
	if r, err := ParseReference("VBG"); err != nil || r != RefBandgap {
		t.Errorf("ParseReference(VBG) = %v, %v", r, err)
	}
}
