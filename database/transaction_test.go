package database_test

import (
	"context"
	"errors"
	"testing"

	"hoshikuzu/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countValues(t *testing.T, ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}) int {
	t.Helper()
	var n int
	require.NoError(t, q.QueryRow(ctx, `SELECT COUNT(*) FROM guild_config`).Scan(&n))
	return n
}

func TestWithTransaction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	insert := func(tx pgx.Tx, key string) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO guild_config (guild_id, key, value) VALUES ('100', $1, '"x"'::jsonb)`, key)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			return insert(tx, "logChannelId")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countValues(t, ctx, testDB.DB))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			require.NoError(t, insert(tx, "welcomeChannelId"))
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countValues(t, ctx, testDB.DB))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
				require.NoError(t, insert(tx, "autoRoleId"))
				panic("boom")
			})
		})
		assert.Equal(t, 1, countValues(t, ctx, testDB.DB))
	})
}
