//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// irqMask stands in for the interrupt mask on hosted Go. The simulated
// peripherals run their "interrupts" while holding it, so background code
// that masks interrupts is serialized against them.
var irqMask sync.Mutex

// DisableInterrupts masks simulated interrupts. Not reentrant.
func DisableInterrupts() State {
	irqMask.Lock()
	return 0
}

// RestoreInterrupts unmasks simulated interrupts.
func RestoreInterrupts(state State) {
	irqMask.Unlock()
}
