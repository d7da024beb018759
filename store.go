package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists whole kitchen snapshots.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*JSONFile)(nil)
)

// JSONFile keeps a snapshot as one JSON document, in the same shape the
// browser build kept under its storage keys.
type JSONFile struct {
	Path string
}

func (f *JSONFile) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save writes to a temporary file and renames it over Path.
func (f *JSONFile) Save(_ context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.Path, data)
}

func (f *JSONFile) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// AutosaveHook returns a ledger hook that saves k to s after every mutation.
func AutosaveHook(s Store, k *Kitchen) HookFunc {
	return func(_ Event, _ *Ledger) error {
		return s.Save(context.Background(), k.Snapshot())
	}
}
