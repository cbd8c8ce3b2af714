package outputs

import (
	"fmt"
	"time"
)

// Count is the number of relay channels on the board.
const Count = 8

// Pin is an opaque hardware line address (BCM numbering on the Pi).
type Pin int

// String returns the periph-style name of the pin, e.g. "GPIO17".
func (p Pin) String() string {
	return fmt.Sprintf("GPIO%d", int(p))
}

// DefaultPins maps output index to hardware pin for the 8-channel relay HAT.
// The mapping is fixed at build time.
var DefaultPins = [Count]Pin{5, 6, 13, 16, 19, 20, 21, 26}

// Direction is the configured data direction of a pin.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Line is one relay channel.
type Line struct {
	Index int  `json:"index"`
	Pin   Pin  `json:"pin"`
	Level bool `json:"level"`
}

// Change describes a successful write to a line.
type Change struct {
	Index    int
	Pin      Pin
	Level    bool
	Previous bool
	At       time.Time
}

// Observer is notified after every successful write.
//
// Observers run synchronously on the writer's goroutine and must not block
// or call back into Write.
type Observer interface {
	OutputChanged(change Change)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(change Change)

// OutputChanged implements Observer.
func (f ObserverFunc) OutputChanged(change Change) {
	f(change)
}

// LevelValue encodes a level the way the HTTP API does: 1 for ON, 0 for OFF.
func LevelValue(level bool) int {
	if level {
		return 1
	}
	return 0
}
