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

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

// Deps are the services the API exposes.
type Deps struct {
	ProfileSvc    *profile.Service
	PasswordReset *profile.PasswordReset
	AssessmentSvc *assessment.Service
	TrainingSvc   *training.Service
}

type Server struct {
	conf       *core.Config
	app        *echo.Echo
	auth       *Auth
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	deps       *Deps

	shutdown chan os.Signal
	errors   chan error
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	deps *Deps,
) *Server {
	s := &Server{
		conf:       conf,
		app:        echo.New(),
		auth:       NewAuth(conf),
		logger:     logger,
		validate:   validate,
		translator: translator,
		deps:       deps,
		shutdown:   make(chan os.Signal, 1),
		errors:     make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.translator, s.SignalShutdown)

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)
	authed := []echo.MiddlewareFunc{jwt, profileMiddleware(s.deps.ProfileSvc)}

	registerProfileAPI(v1, authed, s)
	registerSettingsAPI(v1, authed, s)
	registerQuestionAPI(v1, authed, s)
	registerTemplateAPI(v1, authed, s)
	registerSubmissionAPI(v1, authed, s)
	registerTrainingAPI(v1, authed, s)
}

func (s *Server) Start() {
	s.logger.Info("API listening on " + s.conf.Server.Host)
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the errors that stopped the server.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives the OS signals, or the internal request, to shut the server down.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) SignalShutdown() {
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

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Auth returns the token issuer of the server.
func (s *Server) Auth() *Auth {
	return s.auth
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to PlataformaAPA API!")
}
