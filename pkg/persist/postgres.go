package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const kvTable = "kv_store"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres stores every key as a row of a single key-value table.
type Postgres struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// OpenPostgres connects with the lib/pq driver.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewPostgres(db), nil
}

// Migrate creates the key-value table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+kvTable+` (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`)
	return err
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psql.Select("value").From(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	var value string
	err = p.db.GetContext(ctx, &value, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := psql.Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), p.now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, query, args...)
	return err
}

func (p *Postgres) Delete(ctx context.Context, keys ...string) error {
	query, args, err := psql.Delete(kvTable).Where(sq.Eq{"key": keys}).ToSql()
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, query, args...)
	return err
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
