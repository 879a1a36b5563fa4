package sim

import (
	"context"
	"time"

	"adcpipe/core"
)

// Drive ticks c every interval until ctx is done, delivering any deferred
// ADC completion after each tick. Each step runs with simulated interrupts
// masked. adc may be nil.
func Drive(ctx context.Context, c *Counter, adc *ADC, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state := core.DisableInterrupts()
			c.Tick()
			if adc != nil {
				adc.ServiceInterrupt()
			}
			core.RestoreInterrupts(state)
		}
	}
}
