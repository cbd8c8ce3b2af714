package outputs

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphDriver drives relay lines through periph.io.
//
// Pins are addressed by BCM number and resolved through the periph GPIO
// registry on first use. host.Init is called once per driver.
type PeriphDriver struct {
	mu   sync.Mutex
	pins map[Pin]gpio.PinIO

	initOnce sync.Once
	initErr  error
}

// NewPeriphDriver creates a periph-backed driver.
//
// The periph host is not touched until the first pin operation, so
// constructing the driver is safe on hosts without GPIO.
func NewPeriphDriver() *PeriphDriver {
	return &PeriphDriver{pins: make(map[Pin]gpio.PinIO, Count)}
}

func (d *PeriphDriver) resolve(pin Pin) (gpio.PinIO, error) {
	d.initOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			d.initErr = fmt.Errorf("%w: %v", ErrDriverInit, err)
		}
	})
	if d.initErr != nil {
		return nil, d.initErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pins[pin]; ok {
		return p, nil
	}
	p := gpioreg.ByName(pin.String())
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPin, pin)
	}
	d.pins[pin] = p
	return p, nil
}

// Reset halts any pending operation on the pin.
func (d *PeriphDriver) Reset(pin Pin) error {
	p, err := d.resolve(pin)
	if err != nil {
		return err
	}
	return p.Halt()
}

// SetDirection configures the pin. Outputs start low.
func (d *PeriphDriver) SetDirection(pin Pin, dir Direction) error {
	p, err := d.resolve(pin)
	if err != nil {
		return err
	}
	switch dir {
	case DirectionOutput:
		return p.Out(gpio.Low)
	case DirectionInput:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	default:
		return fmt.Errorf("outputs: unsupported direction %s", dir)
	}
}

// SetLevel drives the pin high or low.
func (d *PeriphDriver) SetLevel(pin Pin, level bool) error {
	p, err := d.resolve(pin)
	if err != nil {
		return err
	}
	return p.Out(gpio.Level(level))
}

// GetLevel reads the pin.
func (d *PeriphDriver) GetLevel(pin Pin) (bool, error) {
	p, err := d.resolve(pin)
	if err != nil {
		return false, err
	}
	return p.Read() == gpio.High, nil
}
