package outputs

// Driver is the digital I/O collaborator used by the Bank.
//
// Implementations map directly onto the board's GPIO primitives. They are
// called with the bank lock held and must not call back into the bank.
type Driver interface {
	// Reset returns the pin to its power-on state.
	Reset(pin Pin) error

	// SetDirection configures the pin as an input or output.
	SetDirection(pin Pin, dir Direction) error

	// SetLevel drives an output pin high (true) or low (false).
	SetLevel(pin Pin, level bool) error

	// GetLevel reads the current pin level.
	GetLevel(pin Pin) (bool, error)
}
