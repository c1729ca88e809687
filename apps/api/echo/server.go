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

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/core/review"
)

type (
	// ServerDeps defines the API server's dependencies.
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		LearnerSvc    *learner.Service
		CurriculumSvc *curriculum.Service
		ReviewSvc     *review.Service
		FileStore     core.FileStore
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps      ServerDeps
		app       *echo.Echo
		jwtConfig middleware.JWTConfig
		errors    chan error
		shutdown  chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps: deps,
		app:  echo.New(),
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(deps.Conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    "userToken",
			Claims:        new(Claims),
		},
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = s.appHTTPErrorHandler()
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	s.registerAuthAPI(v1)
	s.registerLearnerAPI(v1)
	s.registerCurriculumAPI(v1, jwt)
	s.registerReviewAPI(v1, jwt)
	s.registerUploadAPI(v1, jwt)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// Errors reports a failed listener.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal delivers OS termination signals.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown requests a graceful shutdown, used on unrecoverable errors.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Paathshala API!")
}

// validateStruct runs the injected validator; failures surface as
// validator.ValidationErrors which the HTTP error handler translates.
func (s *Server) validateStruct(data interface{}) error {
	return s.deps.Validate.Struct(data)
}
