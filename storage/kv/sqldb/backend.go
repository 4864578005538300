package sqlkv

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/storage/kv"
)

type Backend struct {
	db *sqlx.DB
}

var _ kv.Backend = (*Backend)(nil)

func NewBackend(db *sqlx.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	query := b.db.Rebind("SELECT value FROM kv WHERE key = ?")
	if err := b.db.GetContext(ctx, &value, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "selecting %s", key)
	}
	return []byte(value), true, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	query := b.db.Rebind(upsertQuery)
	_, err := b.db.ExecContext(ctx, query, key, string(value))
	return errors.Wrapf(err, "upserting %s", key)
}

// SetMulti writes all keys inside one transaction; a cascade is either
// fully applied or not at all.
func (b *Backend) SetMulti(ctx context.Context, values map[string][]byte) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	query := tx.Rebind(upsertQuery)
	for key, value := range values {
		if _, err = tx.ExecContext(ctx, query, key, string(value)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "upserting %s", key)
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (b *Backend) Clear(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, "DELETE FROM kv")
	return errors.Wrap(err, "clearing kv")
}

// works on both postgres and sqlite
const upsertQuery = "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value"
