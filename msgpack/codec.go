package kitchenmsgpack

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"kitchen"
)

// MarshalSnapshot encodes s. Timestamps travel as unix milliseconds.
func MarshalSnapshot(s kitchen.Snapshot) ([]byte, error) {
	return msgpack.Marshal(NewSnapshot(s))
}

func UnmarshalSnapshot(data []byte) (kitchen.Snapshot, error) {
	var wire Snapshot
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return kitchen.Snapshot{}, err
	}
	return ToSnapshot(wire), nil
}

// File stores a snapshot as a single msgpack document.
type File struct {
	Path string
}

var _ kitchen.Store = (*File)(nil)

func (f *File) Load(_ context.Context) (kitchen.Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return kitchen.Snapshot{}, nil
	}
	if err != nil {
		return kitchen.Snapshot{}, err
	}
	return UnmarshalSnapshot(data)
}

func (f *File) Save(_ context.Context, s kitchen.Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *File) Close() error { return nil }
