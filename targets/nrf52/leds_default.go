//go:build (nrf52 || nrf52840) && !pca10040 && !pca10056

package main

import "machine"

var (
	triggerLEDPin    = machine.NoPin
	completionLEDPin = machine.LED
)
