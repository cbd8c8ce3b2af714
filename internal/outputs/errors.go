package outputs

import "errors"

// Domain errors for the outputs package.
//
//	if errors.Is(err, outputs.ErrUnknownPin) {
//	    // the driver cannot resolve the pin table on this board
//	}
var (
	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("outputs: bank already initialised")

	// ErrNotInitialized is returned when the bank is used before Initialize.
	ErrNotInitialized = errors.New("outputs: bank not initialised")

	// ErrUnknownPin is returned by drivers that cannot resolve a pin.
	ErrUnknownPin = errors.New("outputs: unknown pin")

	// ErrDriverInit is returned when the GPIO host cannot be initialised.
	ErrDriverInit = errors.New("outputs: driver initialisation failed")
)
