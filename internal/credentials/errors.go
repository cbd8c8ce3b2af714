package credentials

import "errors"

var (
	// ErrNotFound is returned by Load when nothing is stored.
	ErrNotFound = errors.New("credentials: none stored")

	// ErrMissingSSID is returned when no source provides a network name.
	ErrMissingSSID = errors.New("credentials: no ssid configured")
)
