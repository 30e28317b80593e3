package core

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

type (
	// Filter holds equality conditions on top-level document fields (bson names).
	// The "_id" key matches the document ID.
	Filter map[string]interface{}

	// Fields holds top-level document fields to overwrite.
	Fields map[string]interface{}

	// DocumentStore persists schemaless documents grouped in collections.
	// Every document carries a string "_id" assigned by the caller.
	DocumentStore interface {
		// EnsureUnique creates a unique index on field; it is a no-op if the index already exists.
		EnsureUnique(ctx context.Context, collection, field string) error

		// Insert fails with a *DuplicateKeyError when a unique index is violated.
		Insert(ctx context.Context, collection string, doc bson.Raw) error

		// Get fails with ErrNotFound when no document has the given id.
		Get(ctx context.Context, collection, id string) (bson.Raw, error)

		// Find returns all documents matching filter, in natural storage order.
		Find(ctx context.Context, collection string, filter Filter) ([]bson.Raw, error)
		FindByIDs(ctx context.Context, collection string, ids []string) ([]bson.Raw, error)
		Count(ctx context.Context, collection string, filter Filter) (int64, error)

		// Update atomically overwrites fields of the document when it matches cond.
		// It fails with ErrNotFound when the id is unknown and ErrPreconditionFailed when cond does not hold.
		Update(ctx context.Context, collection, id string, cond Filter, fields Fields) (bson.Raw, error)

		// Increment atomically adds 1 to document[array][index][counter].
		// It fails with ErrNotFound when the id is unknown and ErrPreconditionFailed when index is out of range.
		Increment(ctx context.Context, collection, id, array string, index int, counter string) (bson.Raw, error)

		Ping(ctx context.Context) error
		Close(ctx context.Context) error
	}
)
