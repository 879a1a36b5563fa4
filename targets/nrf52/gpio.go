//go:build nrf52 || nrf52840

package main

import (
	"machine"

	"adcpipe/core"
)

// nrfGPIODriver implements core.GPIODriver with TinyGo's machine.Pin.
type nrfGPIODriver struct{}

func (nrfGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (nrfGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machine.Pin(pin).Set(value)
	return nil
}

// newLED returns an indicator on pin, or nil when the board has no such LED.
func newLED(pin machine.Pin) core.Indicator {
	if pin == machine.NoPin {
		return nil
	}
	led, err := core.NewPinIndicator(nrfGPIODriver{}, core.GPIOPin(pin))
	if err != nil {
		return nil
	}
	return led
}
