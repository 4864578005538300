// Package filekv provides a kv.Backend that keeps one JSON file per key
// under a data directory. It assumes a single writer process.
package filekv

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/storage/kv"
)

const fileExt = ".json"

type Backend struct {
	dir string
}

var _ kv.Backend = (*Backend)(nil)

func Open(dir string) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &Backend{dir: dir}, nil
}

func (b *Backend) path(key string) string {
	return filepath.Join(b.dir, key+fileExt)
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, err := ioutil.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading %s", key)
	}
	return value, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	return b.write(key, value)
}

func (b *Backend) SetMulti(_ context.Context, values map[string][]byte) error {
	for key, value := range values {
		if err := b.write(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	entries, err := ioutil.ReadDir(b.dir)
	if err != nil {
		return errors.Wrap(err, "reading data directory")
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(b.dir, entry.Name())); err != nil {
			return errors.Wrapf(err, "removing %s", entry.Name())
		}
	}
	return nil
}

// write replaces the key's file via a temp file and rename so that a
// crashed write never leaves a truncated payload behind.
func (b *Backend) write(key string, value []byte) error {
	tmp, err := ioutil.TempFile(b.dir, key+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", key)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", key)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), b.path(key)), "renaming %s", key)
}
