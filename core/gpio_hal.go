package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the minimal GPIO interface an indicator needs.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

// Indicator is an externally observable side effect, typically an LED.
type Indicator interface {
	Toggle()
}

// PinIndicator toggles a GPIO output.
type PinIndicator struct {
	drv   GPIODriver
	pin   GPIOPin
	level bool
}

// NewPinIndicator configures pin as an output driven low.
func NewPinIndicator(drv GPIODriver, pin GPIOPin) (*PinIndicator, error) {
	if err := drv.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	if err := drv.SetPin(pin, false); err != nil {
		return nil, err
	}
	return &PinIndicator{drv: drv, pin: pin}, nil
}

// Toggle inverts the pin. Errors are ignored; the pin was validated at
// construction.
func (p *PinIndicator) Toggle() {
	p.level = !p.level
	_ = p.drv.SetPin(p.pin, p.level)
}

// Level returns the last driven level.
func (p *PinIndicator) Level() bool {
	return p.level
}

type noIndicator struct{}

func (noIndicator) Toggle() {}
