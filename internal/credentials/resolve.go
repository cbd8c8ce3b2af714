package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Credential sources, highest precedence first.
const (
	SourceEnv    = "env"
	SourceBuild  = "build"
	SourceStored = "stored"
)

// Loader is the read/write surface Resolve needs from a Store.
type Loader interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
}

// Resolve picks the station credentials for this boot.
//
// The first candidate with a non-empty SSID wins and is saved so later
// boots without overrides reuse it. With no usable candidate the stored
// credentials are returned.
//
// Parameters:
//   - ctx: Context for store access
//   - store: persisted credentials
//   - candidates: overrides in precedence order, e.g. env then build-time
//
// Returns:
//   - Credentials: the chosen credentials with Source set
//   - error: ErrMissingSSID when nothing provides an SSID
func Resolve(ctx context.Context, store Loader, candidates ...Credentials) (Credentials, error) {
	for _, c := range candidates {
		if c.Empty() {
			continue
		}
		if err := store.Save(ctx, c); err != nil {
			return Credentials{}, err
		}
		return c, nil
	}

	stored, err := store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return Credentials{}, ErrMissingSSID
	}
	if err != nil {
		return Credentials{}, err
	}
	if stored.Empty() {
		return Credentials{}, fmt.Errorf("%w: stored row has no ssid", ErrMissingSSID)
	}
	return stored, nil
}
