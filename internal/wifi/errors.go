package wifi

import "errors"

// Domain errors for the wifi package.
var (
	// ErrMissingSSID is returned when no network name is configured.
	ErrMissingSSID = errors.New("wifi: ssid is required")

	// ErrSSIDTooLong is returned for SSIDs over 32 octets.
	ErrSSIDTooLong = errors.New("wifi: ssid too long")

	// ErrInvalidPassphrase is returned for passphrases wpa_supplicant rejects.
	ErrInvalidPassphrase = errors.New("wifi: invalid passphrase")

	// ErrRadioClosed is returned by radio operations after Close.
	ErrRadioClosed = errors.New("wifi: radio closed")

	// ErrNotInitialised is returned when Start or Connect precede Init.
	ErrNotInitialised = errors.New("wifi: radio not initialised")

	// ErrUnsupported is returned by radios unavailable on this platform.
	ErrUnsupported = errors.New("wifi: radio not supported on this platform")
)
