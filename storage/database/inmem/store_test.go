package inmemdb_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	inmemdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/inmem"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, inmemdb.New())
}

func TestStore_Insert_invalid(t *testing.T) {
	store := inmemdb.New()
	ctx := context.Background()

	raw, err := bson.Marshal(bson.M{"name": "no id"})
	require.NoError(t, err)
	assert.Error(t, store.Insert(ctx, "things", raw))

	raw, err = bson.Marshal(bson.M{"_id": 42})
	require.NoError(t, err)
	assert.Error(t, store.Insert(ctx, "things", raw))
}

func TestStore_Reset(t *testing.T) {
	store := inmemdb.New()
	ctx := context.Background()
	require.NoError(t, store.EnsureUnique(ctx, "things", "code"))

	raw, err := bson.Marshal(bson.M{"_id": "a", "code": "X"})
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, "things", raw))

	store.Reset()
	n, err := store.Count(ctx, "things", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the index survives the reset
	require.NoError(t, store.Insert(ctx, "things", raw))
	raw, err = bson.Marshal(bson.M{"_id": "b", "code": "X"})
	require.NoError(t, err)
	var dup *core.DuplicateKeyError
	assert.ErrorAs(t, store.Insert(ctx, "things", raw), &dup)
}

func TestStore_Increment_concurrent(t *testing.T) {
	store := inmemdb.New()
	ctx := context.Background()

	raw, err := bson.Marshal(bson.M{"_id": "p", "options": bson.A{bson.M{"text": "a", "votes": 0}}})
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, "polls", raw))

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Increment(ctx, "polls", "p", "options", 0, "votes")
		}()
	}
	wg.Wait()

	doc, err := store.Get(ctx, "polls", "p")
	require.NoError(t, err)
	votes := doc.Lookup("options", "0", "votes").AsInt64()
	assert.EqualValues(t, voters, votes)
}
