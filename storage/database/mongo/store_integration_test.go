//go:build integration

package mongodb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	mongodb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/mongo"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/storetest"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := mongodb.Open(ctx, testutil.MongoConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Drop(ctx)
		_ = store.Close(ctx)
	})

	storetest.Run(t, store)
}
