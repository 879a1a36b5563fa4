package core

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

var (
	rtcCaps = TimeBaseCapabilities{
		Kind:         CounterTick,
		Input:        32768 * physic.Hertz,
		MaxPrescaler: 1<<12 - 1,
	}
	timerCaps = TimeBaseCapabilities{
		Kind:        CounterCompare,
		Input:       31250 * physic.Hertz,
		CompareBits: 16,
	}
)

func TestNewTriggerRate(t *testing.T) {
	tests := []struct {
		name      string
		period    time.Duration
		caps      TimeBaseCapabilities
		prescaler uint32
		ticks     uint32
		err       error
	}{
		{"rtc 125ms", 125 * time.Millisecond, rtcCaps, 4095, 0, nil},
		{"rtc 10ms", 10 * time.Millisecond, rtcCaps, 326, 0, nil},
		{"rtc 1s too long", time.Second, rtcCaps, 0, 0, ErrInvalidPeriod},
		{"rtc below one tick", 10 * time.Microsecond, rtcCaps, 0, 0, ErrInvalidPeriod},
		{"timer 1s", time.Second, timerCaps, 0, 31250, nil},
		{"timer 3s overflows 16 bits", 3 * time.Second, timerCaps, 0, 0, ErrInvalidPeriod},
		{"zero period", 0, timerCaps, 0, 0, ErrInvalidPeriod},
		{"negative period", -time.Second, timerCaps, 0, 0, ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := NewTriggerRate(tt.period, tt.caps)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected error %v, got %v", tt.err, err)
			}
			if err != nil {
				return
			}
			if rate.Prescaler != tt.prescaler {
				t.Errorf("Expected prescaler %d, got %d", tt.prescaler, rate.Prescaler)
			}
			if rate.Ticks != tt.ticks {
				t.Errorf("Expected ticks %d, got %d", tt.ticks, rate.Ticks)
			}
		})
	}
}

func TestTriggerRateWideCompare(t *testing.T) {
	caps := timerCaps
	caps.CompareBits = 32
	rate, err := NewTriggerRate(3*time.Second, caps)
	if err != nil {
		t.Fatalf("NewTriggerRate failed: %v", err)
	}
	if rate.Ticks != 93750 {
		t.Errorf("Expected 93750 ticks, got %d", rate.Ticks)
	}
}

func TestTriggerRateActual(t *testing.T) {
	rate, err := NewTriggerRate(125*time.Millisecond, rtcCaps)
	if err != nil {
		t.Fatalf("NewTriggerRate failed: %v", err)
	}
	if rate.Actual() != 125*time.Millisecond {
		t.Errorf("Expected exact 125ms, got %v", rate.Actual())
	}
	if rate.Frequency() != 8*physic.Hertz {
		t.Errorf("Expected 8Hz, got %v", rate.Frequency())
	}

	// 10ms is not a whole number of 32768 Hz cycles; the period truncates.
	rate, err = NewTriggerRate(10*time.Millisecond, rtcCaps)
	if err != nil {
		t.Fatalf("NewTriggerRate failed: %v", err)
	}
	if got := rate.Actual(); got != 9979248*time.Nanosecond {
		t.Errorf("Expected 9.979248ms, got %v", got)
	}
}

func TestTimeBaseLifecycle(t *testing.T) {
	drv := newTickCounter()
	tb := NewTimeBase(drv)

	if err := tb.Start(); !errors.Is(err, ErrTimeBaseState) {
		t.Errorf("Start before Configure: expected ErrTimeBaseState, got %v", err)
	}
	rate, err := tb.Configure(125 * time.Millisecond)
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if drv.configured != rate {
		t.Errorf("Driver saw %+v, expected %+v", drv.configured, rate)
	}
	if tb.State() != TimeBaseConfigured {
		t.Errorf("Expected configured, got %v", tb.State())
	}
	if _, err := tb.Configure(time.Second); !errors.Is(err, ErrTimeBaseState) {
		t.Errorf("second Configure: expected ErrTimeBaseState, got %v", err)
	}

	if err := tb.SetInterruptHandler(func() {}); err != nil {
		t.Errorf("SetInterruptHandler before Start failed: %v", err)
	}
	if err := tb.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !drv.started || tb.State() != TimeBaseRunning {
		t.Errorf("Expected running, got %v", tb.State())
	}
	if err := tb.SetInterruptHandler(nil); !errors.Is(err, ErrTimeBaseState) {
		t.Errorf("SetInterruptHandler while running: expected ErrTimeBaseState, got %v", err)
	}
}

func TestTimeBaseRejectsPeriod(t *testing.T) {
	tb := NewTimeBase(newTickCounter())
	if _, err := tb.Configure(2 * time.Second); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod, got %v", err)
	}
	if tb.State() != TimeBaseUnconfigured {
		t.Errorf("Expected unconfigured after failure, got %v", tb.State())
	}
}
