package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/LEKKALA-BHASKAR/AITS-sub001/apps/api/echo"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/assets"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/academic"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/campus"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/finance"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/internship"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/placement"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/project"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
	emailsvc "github.com/LEKKALA-BHASKAR/AITS-sub001/services/email"
	logsvc "github.com/LEKKALA-BHASKAR/AITS-sub001/services/logger"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/services/metrics"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/services/realtime"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.New("API", conf)
	logger.Enable(!conf.Debug)
	defer logger.Wait()

	dbLogger := logsvc.New("DB", conf)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout)
	store, err := database.Open(ctx, conf.Database)
	cancel()
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer closeStore(store, conf.Database.Timeout, dbLogger)

	// set up metrics & realtime
	mtx := metrics.New()
	hub := realtime.NewHub(conf.Realtime.ClientBuffer, logger, mtx.SetClients)
	defer hub.Close()

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	var broadcaster core.Broadcaster = hub
	if conf.Realtime.RedisURL != "" {
		rdb, err := realtime.OpenRedis(relayCtx, conf.Realtime.RedisURL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		defer rdb.Close()

		rb := realtime.NewRedisBroadcaster(rdb, conf.Realtime.Channel, hub, logger)
		defer rb.Close()
		broadcaster = rb
		go func() {
			if err := rb.Relay(relayCtx); err != nil {
				logger.Error(fmt.Sprintf("relaying realtime events: %v", err), err)
			}
		}()
	}

	// set up validators
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	if err := user.LoadCommonPasswords(assets.FS, assets.CommonPasswordsFile); err != nil {
		logger.Fatal(fmt.Sprintf("loading common passwords: %v", err), err)
	}

	// set up services
	renderer := core.NewEmailRenderer(assets.FS, conf)
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, renderer, logger, os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, renderer, logger)
	}

	deps := resource.Deps{
		Store:       store,
		Broadcaster: broadcaster,
		Observer:    mtx,
		Validate:    validate,
		Translator:  translator,
	}
	usrSvc := user.NewService(deps)
	stdSvc := student.NewService(deps)
	academicSvc := academic.NewService(deps, conf.Location)
	financeSvc := finance.NewService(deps, stdSvc, mailSvc)
	campusSvc := campus.NewService(deps)
	internshipSvc := internship.NewService(deps)
	projectSvc := project.NewService(deps)
	placementSvc := placement.NewService(deps)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err := resource.EnsureIndexes(context.Background(), usrSvc, stdSvc, campusSvc, internshipSvc, placementSvc); err != nil {
		dbLogger.Fatal(fmt.Sprintf("ensuring indexes: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", mtx.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			Realtime:      hub,
			UserSvc:       usrSvc,
			StudentSvc:    stdSvc,
			AcademicSvc:   academicSvc,
			FinanceSvc:    financeSvc,
			CampusSvc:     campusSvc,
			InternshipSvc: internshipSvc,
			ProjectSvc:    projectSvc,
			PlacementSvc:  placementSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// closeStore disconnects from the database, waiting at most timeout.
func closeStore(store core.DocumentStore, timeout time.Duration, logger core.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Error(fmt.Sprintf("closing database: %v", err), err)
	}
}
