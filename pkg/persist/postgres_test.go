package persist

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p := NewPostgres(sqlx.NewDb(db, "postgres"))
	p.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return p, mock
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT value FROM kv_store WHERE key = \$1`).
			WithArgs("tasks").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[{"id":1}]`))

		bs, err := p.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":1}]`, string(bs))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get missing key", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT value FROM kv_store WHERE key = \$1`).
			WithArgs("goals").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, err := p.Get(ctx, "goals")
		assert.ErrorIs(t, err, ErrNotExist)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Set upserts", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectExec(`INSERT INTO kv_store \(key,value,updated_at\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \(key\) DO UPDATE`).
			WithArgs("tasks", "[]", p.now()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, p.Set(ctx, "tasks", []byte("[]")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectExec(`DELETE FROM kv_store WHERE key IN \(\$1,\$2\)`).
			WithArgs("user", "isAuthenticated").
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, p.Delete(ctx, "user", "isAuthenticated"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Migrate", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, p.Migrate(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("through Store", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT value FROM kv_store WHERE key = \$1`).
			WithArgs("dayplan:goals").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`not json`))

		s := New(p, WithNamespace("dayplan:"))
		assert.Equal(t, []int{42}, Load(s, "goals", []int{42}))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
