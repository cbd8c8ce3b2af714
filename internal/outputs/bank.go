package outputs

import (
	"fmt"
	"sync"
	"time"
)

// Bank is the fixed, ordered set of relay lines.
//
// Index validity is the caller's responsibility: Read and Write treat the
// index like a slice index. Use Valid before passing untrusted input.
type Bank struct {
	driver Driver

	mu          sync.Mutex
	lines       [Count]Line
	initialized bool

	obsMu     sync.RWMutex
	observers []Observer

	now func() time.Time
}

// NewBank creates a bank bound to the given driver and pin table.
//
// The returned bank must be initialised before use.
func NewBank(driver Driver, pins [Count]Pin) *Bank {
	b := &Bank{
		driver: driver,
		now:    time.Now,
	}
	for i, pin := range pins {
		b.lines[i] = Line{Index: i, Pin: pin}
	}
	return b
}

// Initialize configures every pin as an output and forces it OFF.
//
// Lines are processed in index order. The first driver error aborts
// initialisation and is returned wrapped with the failing line.
//
// Returns:
//   - error: ErrAlreadyInitialized on a second call, or a wrapped driver error
func (b *Bank) Initialize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return ErrAlreadyInitialized
	}

	for i := range b.lines {
		pin := b.lines[i].Pin
		if err := b.driver.Reset(pin); err != nil {
			return fmt.Errorf("resetting output %d (%s): %w", i, pin, err)
		}
		if err := b.driver.SetDirection(pin, DirectionOutput); err != nil {
			return fmt.Errorf("configuring output %d (%s): %w", i, pin, err)
		}
		if err := b.driver.SetLevel(pin, false); err != nil {
			return fmt.Errorf("clearing output %d (%s): %w", i, pin, err)
		}
		b.lines[i].Level = false
	}

	b.initialized = true
	return nil
}

// Initialized reports whether Initialize has completed.
func (b *Bank) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// Len returns the number of lines.
func (b *Bank) Len() int {
	return Count
}

// Valid reports whether index addresses a line.
func (b *Bank) Valid(index int) bool {
	return index >= 0 && index < Count
}

// Read returns the level the driver reports for a line.
//
// The level is read back from the hardware on every call, so a line changed
// outside the bank is reported as it is.
//
// Returns:
//   - bool: true when the line is ON
//   - error: ErrNotInitialized, or the wrapped driver error
func (b *Bank) Read(index int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return false, ErrNotInitialized
	}
	return b.readLocked(index)
}

// readLocked reads one line from the driver and refreshes its cached level.
func (b *Bank) readLocked(index int) (bool, error) {
	line := &b.lines[index]
	level, err := b.driver.GetLevel(line.Pin)
	if err != nil {
		return false, fmt.Errorf("reading output %d (%s): %w", index, line.Pin, err)
	}
	line.Level = level
	return level, nil
}

// Write drives a line to the given level and notifies observers.
//
// The cached level is updated only after the driver accepts the write, so a
// failed write leaves the reported state unchanged.
func (b *Bank) Write(index int, level bool) error {
	b.mu.Lock()
	if !b.initialized {
		b.mu.Unlock()
		return ErrNotInitialized
	}

	line := &b.lines[index]
	if err := b.driver.SetLevel(line.Pin, level); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("writing output %d (%s): %w", index, line.Pin, err)
	}

	change := Change{
		Index:    index,
		Pin:      line.Pin,
		Level:    level,
		Previous: line.Level,
		At:       b.now(),
	}
	line.Level = level
	b.mu.Unlock()

	b.notify(change)
	return nil
}

// Snapshot reads every line from the driver in index order.
//
// The first driver error aborts the snapshot; no partial result is returned.
func (b *Bank) Snapshot() ([]bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, ErrNotInitialized
	}

	levels := make([]bool, Count)
	for i := range b.lines {
		level, err := b.readLocked(i)
		if err != nil {
			return nil, err
		}
		levels[i] = level
	}
	return levels, nil
}

// Lines returns a copy of every line in index order. Levels are the last
// ones written or read; Lines does not touch the driver.
func (b *Bank) Lines() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Line, Count)
	copy(out, b.lines[:])
	return out
}

// AddObserver registers an observer for successful writes.
func (b *Bank) AddObserver(o Observer) {
	if o == nil {
		return
	}
	b.obsMu.Lock()
	b.observers = append(b.observers, o)
	b.obsMu.Unlock()
}

func (b *Bank) notify(change Change) {
	b.obsMu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.obsMu.RUnlock()

	for _, o := range observers {
		o.OutputChanged(change)
	}
}
