// Package outputs provides the Output Bank for Relay Core.
//
// The Output Bank is the fixed, ordered collection of binary relay channels
// wired to the controller. Each line has a stable index, a build-time pin
// assignment and a current ON/OFF level. The bank owns its digital I/O
// driver; nothing else in the process touches the pins.
//
// # Architecture
//
//	┌────────────────────────────────────────────────┐
//	│                  Output Bank                   │
//	│                                                │
//	│  ┌──────────────┐      ┌────────────────────┐  │
//	│  │     Bank     │─────▶│       Driver       │  │
//	│  │  (bank.go)   │      │ PeriphDriver (Pi)  │  │
//	│  │ • Initialize │      │ SimDriver (bench)  │  │
//	│  │ • Read/Write │      └────────────────────┘  │
//	│  │ • Observers  │                              │
//	│  └──────────────┘                              │
//	└────────────────────────────────────────────────┘
//
// # Lifecycle
//
// The bank is constructed once during bootstrap and Initialize forces every
// line OFF before any HTTP handler can be reached. Levels are then changed
// only by the set handler for the remainder of the process lifetime. Output
// state is not persisted; a restart always begins with every line OFF.
//
// # Thread Safety
//
// net/http dispatches requests concurrently, so the bank serialises line
// access with a mutex. Observers are invoked after the lock is released.
//
// # Usage
//
//	bank := outputs.NewBank(outputs.NewSimDriver(), outputs.DefaultPins)
//	if err := bank.Initialize(); err != nil {
//	    return err
//	}
//	_ = bank.Write(2, true)
//	levels, err := bank.Snapshot() // read back from the driver: [false false true false ...]
package outputs
