package credentials

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nerrad567/relay-core/internal/infrastructure/database"
	_ "github.com/nerrad567/relay-core/migrations" // registers the schema
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.OpenWithRecovery(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "relaycore.db"),
		WALMode:     true,
		BusyTimeout: 1,
	}, nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	return NewStore(db)
}

func TestStore_LoadEmpty(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, Credentials{SSID: "home", Passphrase: "correct horse", Source: SourceBuild}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, Credentials{SSID: "office", Passphrase: "battery staple", Source: SourceEnv}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SSID != "office" || got.Passphrase != "battery staple" {
		t.Errorf("Load() = %+v, want office credentials", got)
	}
	if got.Source != SourceStored {
		t.Errorf("Source = %q, want %q", got.Source, SourceStored)
	}
}

func TestStore_SaveRejectsEmpty(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(context.Background(), Credentials{}); !errors.Is(err, ErrMissingSSID) {
		t.Errorf("Save() error = %v, want ErrMissingSSID", err)
	}
}

func TestStore_Erase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, Credentials{SSID: "home"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Erase(ctx); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Erase error = %v, want ErrNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	env := Credentials{SSID: "env-net", Passphrase: "env-pass", Source: SourceEnv}
	build := Credentials{SSID: "build-net", Passphrase: "build-pass", Source: SourceBuild}
	stored := Credentials{SSID: "stored-net", Passphrase: "stored-pass"}

	tests := []struct {
		name       string
		stored     *Credentials
		candidates []Credentials
		wantSSID   string
		wantSource string
		wantErr    error
	}{
		{"env beats build", &stored, []Credentials{env, build}, "env-net", SourceEnv, nil},
		{"build when no env", &stored, []Credentials{{}, build}, "build-net", SourceBuild, nil},
		{"stored when no overrides", &stored, []Credentials{{}, {}}, "stored-net", SourceStored, nil},
		{"nothing anywhere", nil, []Credentials{{}, {}}, "", "", ErrMissingSSID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			if tt.stored != nil {
				if err := s.Save(ctx, *tt.stored); err != nil {
					t.Fatal(err)
				}
			}

			got, err := Resolve(ctx, s, tt.candidates...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got.SSID != tt.wantSSID || got.Source != tt.wantSource {
				t.Errorf("Resolve() = %+v, want %s from %s", got, tt.wantSSID, tt.wantSource)
			}

			// The winner is what a later boot without overrides sees.
			again, err := Resolve(ctx, s)
			if err != nil {
				t.Fatalf("second Resolve() error = %v", err)
			}
			if again.SSID != tt.wantSSID {
				t.Errorf("persisted SSID = %q, want %q", again.SSID, tt.wantSSID)
			}
		})
	}
}

type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context) (Credentials, error) { return Credentials{}, f.err }
func (f failingLoader) Save(context.Context, Credentials) error    { return f.err }

func TestResolve_StoreErrors(t *testing.T) {
	boom := errors.New("disk gone")

	if _, err := Resolve(context.Background(), failingLoader{boom}, Credentials{SSID: "x"}); !errors.Is(err, boom) {
		t.Errorf("Resolve() save error = %v, want %v", err, boom)
	}
	if _, err := Resolve(context.Background(), failingLoader{boom}); !errors.Is(err, boom) {
		t.Errorf("Resolve() load error = %v, want %v", err, boom)
	}
}
