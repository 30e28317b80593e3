package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database"
	inmemdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/inmem"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := database.Open(ctx, core.DatabaseConfig{Engine: core.EngineMemory})
	require.NoError(t, err)
	assert.IsType(t, &inmemdb.Store{}, store)
	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close(ctx))

	_, err = database.Open(ctx, core.DatabaseConfig{Engine: "couch"})
	assert.EqualError(t, err, `unknown database engine "couch"`)
}
