package sim

import (
	"context"
	"testing"
	"time"

	"adcpipe/core"
)

func TestDrive(t *testing.T) {
	board := NewBoard(ADCOptions{DeferCompletion: true})
	var ring core.TraceRing
	_, err := core.NewPipeline(core.PipelineConfig{
		Channels: scanChannels(core.InputAIN2),
		Period:   125 * time.Millisecond,
		Trigger:  core.TriggerHardware,
		Capacity: 2,
		Consumer: &ring,
	}, board.Peripherals(board.RTC))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	Drive(ctx, board.RTC, board.ADC, time.Millisecond)

	if board.RTC.Ticks() < 2 {
		t.Fatalf("Expected several ticks, got %d", board.RTC.Ticks())
	}
	if ring.Pending() == 0 {
		t.Error("No completions recorded")
	}
	if board.ADC.Dropped() != 0 {
		t.Errorf("Deferred completions serviced late: %d dropped", board.ADC.Dropped())
	}
}
