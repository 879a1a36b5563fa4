package core

import "errors"

// Initialization errors. These are returned before the trigger is armed.
var (
	ErrNoChannels        = errors.New("channel set is empty")
	ErrTooManyChannels   = errors.New("too many ADC channels")
	ErrInvalidChannel    = errors.New("invalid ADC channel configuration")
	ErrChannelSetSealed  = errors.New("channel set is sealed")
	ErrChannelSetOpen    = errors.New("channel set is not sealed")
	ErrCapacityMismatch  = errors.New("buffer capacity is not a multiple of the channel count")
	ErrCapacityTooLarge  = errors.New("buffer capacity exceeds the converter limit")
	ErrInvalidPeriod     = errors.New("trigger period out of range for time base")
	ErrTimeBaseState     = errors.New("time base in wrong state")
	ErrRouteUnavailable  = errors.New("no free trigger route")
	ErrRouteNotConnected = errors.New("trigger route not connected")
	ErrClockTimeout      = errors.New("clock did not report stable")
	ErrMissingPeripheral = errors.New("peripheral driver not provided")

	ErrHighAccuracyNeedsSoftwareTrigger = errors.New("high-accuracy mode requires the software trigger path")
)

// Runtime errors. All of them are fatal.
var (
	ErrRearmRejected   = errors.New("rearm rejected")
	ErrPayloadSize     = errors.New("unexpected completion payload size")
	ErrReentrantHandle = errors.New("completion handler reentered")
)

// FatalHandler receives runtime errors that have no recovery path. It is
// expected not to return on hardware.
type FatalHandler func(err error)

// defaultFatal halts the goroutine the way a firmware fault would.
func defaultFatal(err error) {
	panic("adcpipe: fatal: " + err.Error())
}
