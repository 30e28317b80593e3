// Package storetest holds the behaviour every core.DocumentStore must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

type option struct {
	Text  string `bson:"text"`
	Votes int    `bson:"votes"`
}

type doc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Code      string    `bson:"code,omitempty"`
	Status    string    `bson:"status,omitempty"`
	Tags      []string  `bson:"tags,omitempty"`
	Year      int       `bson:"year,omitempty"`
	Options   []option  `bson:"options,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func insert(t *testing.T, store core.DocumentStore, coll string, d doc) {
	t.Helper()
	raw, err := bson.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), coll, raw))
}

func decode(t *testing.T, raw bson.Raw) doc {
	t.Helper()
	var d doc
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func names(t *testing.T, raws []bson.Raw) []string {
	t.Helper()
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		out = append(out, decode(t, raw).Name)
	}
	return out
}

// Run exercises store. Every case writes to its own collection so one store serves them all.
func Run(t *testing.T, store core.DocumentStore) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	t.Run("insert and get", func(t *testing.T) {
		coll := "st_roundtrip"
		insert(t, store, coll, doc{ID: "a", Name: "Alpha", Tags: []string{"x"}, Year: 2, CreatedAt: now})

		raw, err := store.Get(ctx, coll, "a")
		require.NoError(t, err)
		got := decode(t, raw)
		assert.Equal(t, "Alpha", got.Name)
		assert.Equal(t, []string{"x"}, got.Tags)
		assert.Equal(t, 2, got.Year)
		assert.True(t, now.Equal(got.CreatedAt), "createdAt = %v, want %v", got.CreatedAt, now)

		_, err = store.Get(ctx, coll, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		coll := "st_dupid"
		insert(t, store, coll, doc{ID: "a", Name: "Alpha", CreatedAt: now})

		raw, err := bson.Marshal(doc{ID: "a", Name: "Again", CreatedAt: now})
		require.NoError(t, err)
		err = store.Insert(ctx, coll, raw)
		var dup *core.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "_id", dup.Field)
	})

	t.Run("unique index", func(t *testing.T) {
		coll := "st_unique"
		require.NoError(t, store.EnsureUnique(ctx, coll, "code"))
		require.NoError(t, store.EnsureUnique(ctx, coll, "code"), "EnsureUnique must be idempotent")

		insert(t, store, coll, doc{ID: "a", Name: "Alpha", Code: "A1", CreatedAt: now})
		raw, err := bson.Marshal(doc{ID: "b", Name: "Beta", Code: "A1", CreatedAt: now})
		require.NoError(t, err)

		err = store.Insert(ctx, coll, raw)
		var dup *core.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "code", dup.Field)

		insert(t, store, coll, doc{ID: "c", Name: "Gamma", Code: "C1", CreatedAt: now})
		_, err = store.Update(ctx, coll, "c", nil, core.Fields{"code": "A1"})
		require.ErrorAs(t, err, &dup)
	})

	t.Run("find", func(t *testing.T) {
		coll := "st_find"
		insert(t, store, coll, doc{ID: "1", Name: "one", Status: "open", Tags: []string{"red", "blue"}, Year: 1, CreatedAt: now})
		insert(t, store, coll, doc{ID: "2", Name: "two", Status: "closed", Tags: []string{"blue"}, Year: 2, CreatedAt: now})
		insert(t, store, coll, doc{ID: "3", Name: "three", Status: "open", Year: 2, CreatedAt: now})

		tests := []struct {
			name   string
			filter core.Filter
			want   []string
		}{
			{name: "no filter", filter: nil, want: []string{"one", "two", "three"}},
			{name: "string", filter: core.Filter{"status": "open"}, want: []string{"one", "three"}},
			{name: "number", filter: core.Filter{"year": 2}, want: []string{"two", "three"}},
			{name: "array element", filter: core.Filter{"tags": "blue"}, want: []string{"one", "two"}},
			{name: "combined", filter: core.Filter{"status": "open", "year": 2}, want: []string{"three"}},
			{name: "by id", filter: core.Filter{"_id": "2"}, want: []string{"two"}},
			{name: "no match", filter: core.Filter{"status": "archived"}, want: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				raws, err := store.Find(ctx, coll, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(t, raws))

				n, err := store.Count(ctx, coll, tt.filter)
				require.NoError(t, err)
				assert.EqualValues(t, len(tt.want), n)
			})
		}

		raws, err := store.Find(ctx, "st_empty", nil)
		require.NoError(t, err)
		assert.Empty(t, raws)
	})

	t.Run("find by ids", func(t *testing.T) {
		coll := "st_byids"
		insert(t, store, coll, doc{ID: "1", Name: "one", CreatedAt: now})
		insert(t, store, coll, doc{ID: "2", Name: "two", CreatedAt: now})

		raws, err := store.FindByIDs(ctx, coll, []string{"2", "missing", "1"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"one", "two"}, names(t, raws))

		raws, err = store.FindByIDs(ctx, coll, nil)
		require.NoError(t, err)
		assert.Empty(t, raws)
	})

	t.Run("update", func(t *testing.T) {
		coll := "st_update"
		insert(t, store, coll, doc{ID: "a", Name: "Alpha", Status: "pending", CreatedAt: now})

		raw, err := store.Update(ctx, coll, "a", core.Filter{"status": "pending"}, core.Fields{"status": "approved", "year": 3})
		require.NoError(t, err)
		got := decode(t, raw)
		assert.Equal(t, "approved", got.Status)
		assert.Equal(t, 3, got.Year)
		assert.Equal(t, "Alpha", got.Name)

		_, err = store.Update(ctx, coll, "a", core.Filter{"status": "pending"}, core.Fields{"status": "rejected"})
		assert.ErrorIs(t, err, core.ErrPreconditionFailed)

		_, err = store.Update(ctx, coll, "missing", core.Filter{"status": "pending"}, core.Fields{"status": "rejected"})
		assert.ErrorIs(t, err, core.ErrNotFound)

		_, err = store.Update(ctx, coll, "missing", nil, core.Fields{"status": "rejected"})
		assert.ErrorIs(t, err, core.ErrNotFound)

		raw, err = store.Get(ctx, coll, "a")
		require.NoError(t, err)
		assert.Equal(t, "approved", decode(t, raw).Status)
	})

	t.Run("increment", func(t *testing.T) {
		coll := "st_increment"
		insert(t, store, coll, doc{ID: "p", Name: "poll", Options: []option{{Text: "yes"}, {Text: "no"}}, CreatedAt: now})

		for i := 0; i < 3; i++ {
			_, err := store.Increment(ctx, coll, "p", "options", 1, "votes")
			require.NoError(t, err)
		}
		raw, err := store.Increment(ctx, coll, "p", "options", 0, "votes")
		require.NoError(t, err)
		got := decode(t, raw)
		assert.Equal(t, []option{{Text: "yes", Votes: 1}, {Text: "no", Votes: 3}}, got.Options)

		_, err = store.Increment(ctx, coll, "p", "options", 2, "votes")
		assert.ErrorIs(t, err, core.ErrPreconditionFailed)

		_, err = store.Increment(ctx, coll, "missing", "options", 0, "votes")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
