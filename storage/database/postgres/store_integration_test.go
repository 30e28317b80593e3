//go:build integration

package postgresdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgresdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/postgres"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/storetest"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	conf := testutil.PostgresConfig(t)

	store, err := postgresdb.Open(ctx, conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	storetest.Run(t, store)

	t.Run("open is idempotent", func(t *testing.T) {
		again, err := postgresdb.Open(ctx, conf)
		require.NoError(t, err)
		defer again.Close(ctx)

		n, err := again.Count(ctx, "st_roundtrip", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("truncate", func(t *testing.T) {
		require.NoError(t, store.Truncate(ctx))
		n, err := store.Count(ctx, "st_find", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
