package main

import (
	"context"
	"errors"

	"github.com/pressly/goose/v3"

	postgresdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/postgres"
)

var (
	gooseRunFunc = goose.RunContext // mockable

	errNoSQLDatabase = errors.New("migrations require the postgres engine")
)

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if cli.db == nil {
		return errNoSQLDatabase
	}
	if err := postgresdb.SetupGoose(); err != nil {
		return err
	}
	return gooseRunFunc(ctx, args[0], cli.db, postgresdb.MigrationsDir, args[1:]...)
}
