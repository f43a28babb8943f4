package pgxutil_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/order-notify/internal/data/pgxutil"
	"github.com/target/order-notify/internal/testutil"
)

func TestWithSQLTx_RequiresFn(t *testing.T) {
	err := pgxutil.WithSQLTx(context.Background(), nil, pgxutil.SQLTxConfig{})
	require.Error(t, err)
}

func TestPgxBridge_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE bridge_check (id INT PRIMARY KEY)`)
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		err := pgxutil.WithSQLTx(ctx, db, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
			_, execErr := tx.ExecContext(ctx, `INSERT INTO bridge_check (id) VALUES (1)`)
			return execErr
		}})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := pgxutil.WithSQLTx(ctx, db, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
			if _, execErr := tx.ExecContext(ctx, `INSERT INTO bridge_check (id) VALUES (2)`); execErr != nil {
				return execErr
			}
			return boom
		}})
		require.ErrorIs(t, err, boom)
	})

	t.Run("native conn sees committed rows only", func(t *testing.T) {
		var count int
		err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
			return conn.QueryRow(ctx, `SELECT count(*) FROM bridge_check`).Scan(&count)
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
