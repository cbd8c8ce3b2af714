package outputs

import (
	"fmt"
	"sync"
)

// SimCall records one driver invocation on a SimDriver.
type SimCall struct {
	Op    string
	Pin   Pin
	Level bool
	Dir   Direction
}

// SimDriver is an in-memory driver for tests and hosts without GPIO.
type SimDriver struct {
	mu     sync.Mutex
	levels map[Pin]bool
	dirs   map[Pin]Direction
	calls  []SimCall

	// op ("reset", "direction", "set", "get") -> pin -> injected error
	failOn map[string]map[Pin]error
}

// NewSimDriver creates an empty simulated driver.
func NewSimDriver() *SimDriver {
	return &SimDriver{
		levels: make(map[Pin]bool),
		dirs:   make(map[Pin]Direction),
		failOn: make(map[string]map[Pin]error),
	}
}

// FailOn arranges for op on pin to return err. A nil err clears it.
func (d *SimDriver) FailOn(op string, pin Pin, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		delete(d.failOn[op], pin)
		return
	}
	if d.failOn[op] == nil {
		d.failOn[op] = make(map[Pin]error)
	}
	d.failOn[op][pin] = err
}

// Calls returns a copy of the recorded driver calls.
func (d *SimDriver) Calls() []SimCall {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]SimCall, len(d.calls))
	copy(out, d.calls)
	return out
}

// Level returns the simulated pin level.
func (d *SimDriver) Level(pin Pin) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[pin]
}

// Direction returns the simulated pin direction.
func (d *SimDriver) Direction(pin Pin) Direction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirs[pin]
}

func (d *SimDriver) record(call SimCall) error {
	d.calls = append(d.calls, call)
	if err, ok := d.failOn[call.Op][call.Pin]; ok {
		return err
	}
	return nil
}

// Reset implements Driver.
func (d *SimDriver) Reset(pin Pin) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(SimCall{Op: "reset", Pin: pin}); err != nil {
		return err
	}
	d.dirs[pin] = DirectionInput
	return nil
}

// SetDirection implements Driver.
func (d *SimDriver) SetDirection(pin Pin, dir Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(SimCall{Op: "direction", Pin: pin, Dir: dir}); err != nil {
		return err
	}
	d.dirs[pin] = dir
	return nil
}

// SetLevel implements Driver.
func (d *SimDriver) SetLevel(pin Pin, level bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(SimCall{Op: "set", Pin: pin, Level: level}); err != nil {
		return err
	}
	if d.dirs[pin] != DirectionOutput {
		return fmt.Errorf("outputs: %s is not an output", pin)
	}
	d.levels[pin] = level
	return nil
}

// GetLevel implements Driver.
func (d *SimDriver) GetLevel(pin Pin) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record(SimCall{Op: "get", Pin: pin}); err != nil {
		return false, err
	}
	return d.levels[pin], nil
}
