// Package database opens the core.DocumentStore selected by `database.engine`.
package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	inmemdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/inmem"
	mongodb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/mongo"
	postgresdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/postgres"
)

// Open connects to the configured engine. Postgres databases are created and migrated if needed.
func Open(ctx context.Context, conf core.DatabaseConfig) (core.DocumentStore, error) {
	switch conf.Engine {
	case core.EngineMongo:
		store, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return store, nil
	case core.EnginePostgres:
		store, err := postgresdb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return store, nil
	case core.EngineMemory:
		return inmemdb.New(), nil
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Engine)
	}
}
