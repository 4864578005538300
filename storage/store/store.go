// Package store implements the persistence and integrity layer: the four
// entity collections behind a keyed-blob backend, with identifier/email
// uniqueness and cascade rules enforced on every mutating call. It is the
// only code path permitted to mutate durable state; domain validation
// beyond that belongs to the calling workflow.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
	"github.com/nexuslms/nexus/storage/kv"
)

// Persisted collection keys.
const (
	usersKey       = "users"
	batchesKey     = "batches"
	assignmentsKey = "assignments"
	submissionsKey = "submissions"
)

type Store struct {
	// mu serializes the load-modify-save sequence of every operation;
	// without it, concurrent writers exposed over HTTP can drop records
	// or let two creates pass the same uniqueness check. Reads take the
	// shared lock (the lazy seed write is idempotent).
	mu      sync.RWMutex
	backend kv.Backend
}

// interface compliance checks
var (
	_ user.Repository       = (*Store)(nil)
	_ batch.Repository      = (*Store)(nil)
	_ assignment.Repository = (*Store)(nil)
	_ submission.Repository = (*Store)(nil)
)

func New(backend kv.Backend) *Store {
	return &Store{backend: backend}
}

// Reset clears every collection and re-seeds the fixed initial dataset.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Clear(ctx); err != nil {
		return errors.Wrap(err, "clearing store")
	}
	return s.saveAll(ctx, map[string]interface{}{
		usersKey:       SeedUsers(),
		batchesKey:     SeedBatches(),
		assignmentsKey: SeedAssignments(),
		submissionsKey: SeedSubmissions(),
	})
}

// load deserializes the collection stored under key into out. The first
// read of a key materializes its seed. An unparseable payload is a
// core.ErrStoreCorrupted: terminal for the session, never silently
// recovered.
func (s *Store) load(ctx context.Context, key string, out interface{}, seed interface{}) error {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "reading %s", key)
	}
	if !ok {
		if raw, err = marshal(key, seed); err != nil {
			return err
		}
		if err = s.backend.Set(ctx, key, raw); err != nil {
			return errors.Wrapf(err, "seeding %s", key)
		}
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(core.ErrStoreCorrupted, "decoding %s: %v", key, err)
	}
	return nil
}

// save writes the full collection back to the backend.
func (s *Store) save(ctx context.Context, key string, collection interface{}) error {
	raw, err := marshal(key, collection)
	if err != nil {
		return err
	}
	return errors.Wrapf(s.backend.Set(ctx, key, raw), "writing %s", key)
}

// saveAll writes several collections as a single logical unit.
func (s *Store) saveAll(ctx context.Context, collections map[string]interface{}) error {
	values := make(map[string][]byte, len(collections))
	for key, collection := range collections {
		raw, err := marshal(key, collection)
		if err != nil {
			return err
		}
		values[key] = raw
	}
	return errors.Wrap(s.backend.SetMulti(ctx, values), "writing collections")
}

func marshal(key string, collection interface{}) ([]byte, error) {
	raw, err := json.Marshal(collection)
	return raw, errors.Wrapf(err, "encoding %s", key)
}

func (s *Store) loadUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := s.load(ctx, usersKey, &users, SeedUsers())
	return users, err
}

func (s *Store) loadBatches(ctx context.Context) ([]batch.Batch, error) {
	var batches []batch.Batch
	err := s.load(ctx, batchesKey, &batches, SeedBatches())
	return batches, err
}

func (s *Store) loadAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	var assignments []assignment.Assignment
	err := s.load(ctx, assignmentsKey, &assignments, SeedAssignments())
	return assignments, err
}

func (s *Store) loadSubmissions(ctx context.Context) ([]submission.Submission, error) {
	var submissions []submission.Submission
	err := s.load(ctx, submissionsKey, &submissions, SeedSubmissions())
	return submissions, err
}
