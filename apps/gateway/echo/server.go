package echogw

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/connectivity"
	"github.com/trezcool/darasa/core/offline"
)

type (
	// Deps carries the gateway server's dependencies; explicitly
	// constructed and owned by the composition root.
	Deps struct {
		Conf           *core.Config
		Logger         core.Logger
		Store          offline.Store
		Monitor        *connectivity.Monitor
		Preloader      *offline.Preloader
		Dispatcher     offline.Dispatcher
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps   Deps
		app    *echo.Echo
		client *http.Client
		replay *replayer

		errCh chan error
		sigCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps Deps) Server {
	s := &server{
		deps:   deps,
		app:    echo.New(),
		client: &http.Client{Timeout: deps.Conf.Upstream.Timeout},
		errCh:  make(chan error, 1),
		sigCh:  make(chan os.Signal, 1),
	}
	s.replay = newReplayer(deps.Store, deps.Dispatcher, deps.Monitor, deps.Logger)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newGatewayHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	// local control surface (the "platform signal" edge)
	internal := s.app.Group("/internal")
	internal.GET("/status", s.status)
	internal.POST("/sync", s.backgroundSync)
	internal.POST("/connectivity", s.connectivitySignal)
	internal.POST("/visibility", s.visibilitySignal)

	// network-interception layer: API requests are network-first,
	// everything else is a static asset served cache-first
	s.app.Any("/api/*", s.handleAPI)
	s.app.Any("/*", s.handleStatic)
}

func (s *server) Start() {
	signal.Notify(s.sigCh, syscall.SIGINT, syscall.SIGTERM)
	s.replay.bind()
	go func() {
		s.errCh <- s.app.Start(s.deps.Conf.Server.Addr)
	}()
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.sigCh
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	s.sigCh <- syscall.SIGTERM
}
