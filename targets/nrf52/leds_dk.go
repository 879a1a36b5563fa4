//go:build pca10040 || pca10056

package main

import "machine"

// Development kits carry four LEDs: one toggles per trigger, one per
// completed buffer.
var (
	triggerLEDPin    = machine.LED1
	completionLEDPin = machine.LED2
)
