// Package echoapi is the HTTP surface of the api, built on echo.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/academic"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/campus"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/finance"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/internship"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/placement"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/project"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Realtime   http.Handler // websocket endpoint

		UserSvc       *user.Service
		StudentSvc    *student.Service
		AcademicSvc   *academic.Service
		FinanceSvc    *finance.Service
		CampusSvc     *campus.Service
		InternshipSvc *internship.Service
		ProjectSvc    *project.Service
		PlacementSvc  *placement.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := s.auth.middleware("header:" + echo.HeaderAuthorization)

	api := &resourceAPI{validate: s.deps.Validate, translator: s.deps.Translator}
	registerUserAPI(v1, jwt, api, s.auth, s.deps.UserSvc)
	if s.deps.Realtime != nil {
		v1.GET("/ws", echo.WrapHandler(s.deps.Realtime), s.auth.middleware("query:token"))
	}

	ag := v1.Group("", jwt)
	registerStudentAPI(ag, s.deps.StudentSvc)
	registerAcademicAPI(ag, api, s.deps.AcademicSvc)
	registerFinanceAPI(ag, s.deps.FinanceSvc)
	registerCampusAPI(ag, api, s.deps.CampusSvc)
	registerInternshipAPI(ag, api, s.deps.InternshipSvc)
	registerProjectAPI(ag, api, s.deps.ProjectSvc)
	registerPlacementAPI(ag, api, s.deps.PlacementSvc)
}

// Start listens on the configured address; failures are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
