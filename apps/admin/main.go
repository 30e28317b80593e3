package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/campus"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/internship"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/placement"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
	logsvc "github.com/LEKKALA-BHASKAR/AITS-sub001/services/logger"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database"
	postgresdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/postgres"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.New("ADMIN", conf)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout)
	store, err := database.Open(ctx, conf.Database)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	deps := resource.Deps{Store: store, Validate: validate, Translator: translator}
	usrSvc := user.NewService(deps)

	var db *sql.DB
	if pg, ok := store.(*postgresdb.Store); ok {
		db = pg.DB().DB
	}

	// start CLI
	cli := commandLine{
		usrSvc: usrSvc,
		db:     db,
		indexers: []resource.Indexer{
			usrSvc,
			student.NewService(deps),
			campus.NewService(deps),
			internship.NewService(deps),
			placement.NewService(deps),
		},
	}
	err = cli.run(os.Args)
	if cErr := store.Close(context.Background()); cErr != nil {
		logger.Error(fmt.Sprintf("closing database: %v", cErr), cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		logger.Wait()
		os.Exit(1)
	}
	logger.Wait()
}
