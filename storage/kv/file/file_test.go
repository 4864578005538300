package filekv

import (
	"context"
	"path/filepath"
	"testing"
)

var ctx = context.Background()

func Test_Backend_roundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	backend, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if _, ok, err := backend.Get(ctx, "users"); err != nil || ok {
		t.Errorf("Get(absent) = ok %v, err %v; want false, nil", ok, err)
	}

	if err = backend.Set(ctx, "users", []byte(`[{"id":"u1"}]`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	value, ok, err := backend.Get(ctx, "users")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v; want true, nil", ok, err)
	}
	if string(value) != `[{"id":"u1"}]` {
		t.Errorf("Get() = %s; want stored payload", value)
	}

	// values survive a re-open
	backend, err = Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, ok, _ = backend.Get(ctx, "users"); !ok {
		t.Error("Get() after re-open = false; want true")
	}
}

func Test_Backend_SetMulti(t *testing.T) {
	backend, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	err = backend.SetMulti(ctx, map[string][]byte{
		"users":   []byte(`[]`),
		"batches": []byte(`[{"id":"b1"}]`),
	})
	if err != nil {
		t.Fatalf("SetMulti() failed: %v", err)
	}

	for _, key := range []string{"users", "batches"} {
		if _, ok, _ := backend.Get(ctx, key); !ok {
			t.Errorf("Get(%s) = false; want true", key)
		}
	}
}

func Test_Backend_Clear(t *testing.T) {
	backend, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err = backend.Set(ctx, "users", []byte(`[]`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err = backend.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if _, ok, _ := backend.Get(ctx, "users"); ok {
		t.Error("Get() after Clear() = true; want false")
	}
}
