package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/attendance"
	"github.com/LukaszKielczewski66/fightclub/core/session"
)

type (
	Options struct {
		Address        string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool
		SecretKey      string
		AppName        string
		ReadTimeout    time.Duration
		WriteTimeout   time.Duration
	}

	Deps struct {
		Logger        core.Logger
		Store         core.Store
		SessionSvc    *session.Service
		AttendanceSvc *attendance.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts           *Options
		deps           *Deps
		app            *echo.Echo
		signalShutdown func()
	}
)

var _ Server = (*server)(nil)

// NewServer builds the HTTP API. signalShutdown is called when a handler hits a core shutdown error.
func NewServer(opts *Options, signalShutdown func(), deps *Deps) Server {
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s := &server{
		opts:           opts,
		deps:           deps,
		app:            echo.New(),
		signalShutdown: signalShutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.opts.ReadTimeout
	s.app.Server.WriteTimeout = s.opts.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	jwt := jwtMiddleware([]byte(s.opts.SecretKey))

	registerHealthAPI(api, s.deps.Store)
	registerScheduleAPI(api, jwt, s.deps.SessionSvc)
	registerAttendanceAPI(api, jwt, s.deps.AttendanceSvc, s.deps.Validate)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.app.Logger.Fatal(err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	name := s.opts.AppName
	if name == "" {
		name = "FightClub"
	}
	return ctx.String(http.StatusOK, "Welcome to "+name+" API!")
}

type listResponse struct {
	Items interface{} `json:"items"`
}
