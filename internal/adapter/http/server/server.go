package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/campus-ride/config"
	"github.com/Temutjin2k/campus-ride/internal/adapter/http/handler"
	"github.com/Temutjin2k/campus-ride/internal/adapter/http/middleware"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%s"

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

// Services are the dependencies of the HTTP surface. Only Checks is used in location-ingest mode.
type Services struct {
	Auth          middleware.AuthService
	Requests      handler.RequestService
	Negotiations  handler.NegotiationService
	Discovery     handler.DiscoveryService
	Locations     handler.LocationService
	Notifications handler.NotificationService
	Sessions      handler.SessionServer
	Checks        map[string]handler.CheckFunc
}

type handlers struct {
	health       *handler.Health
	request      *handler.Request
	negotiation  *handler.Negotiation
	discovery    *handler.Discovery
	location     *handler.Location
	notification *handler.Notification
	ws           *handler.WebSocket
}

func New(cfg config.Config, svc Services, logger logger.Logger) (*API, error) {
	handlers := &handlers{
		health: handler.NewHealth(string(cfg.Mode), svc.Checks, logger),
	}

	switch cfg.Mode {
	case types.MatchingService:
		if svc.Auth == nil {
			return nil, errors.New("auth service is required")
		}
		handlers.request = handler.NewRequest(svc.Requests, logger)
		handlers.negotiation = handler.NewNegotiation(svc.Negotiations, logger)
		handlers.discovery = handler.NewDiscovery(svc.Discovery, logger)
		handlers.location = handler.NewLocation(svc.Locations, logger)
		handlers.notification = handler.NewNotification(svc.Notifications, logger)
		handlers.ws = handler.NewWebSocket(svc.Sessions, logger)
	case types.LocationIngestService:
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	api := &API{
		mode:   cfg.Mode,
		mux:    http.NewServeMux(),
		routes: handlers,
		m:      middleware.NewMiddleware(svc.Auth, logger),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Port()),
		cfg:    cfg,
		log:    logger,
	}

	setupRoutes(api.mux, api.routes, api.m, api.mode, logger)

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler exposes the full middleware chain, for tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	var h http.Handler = a.mux
	if a.mode == types.MatchingService {
		h = a.m.Auth(h)
	}
	h = a.m.Metrics(string(a.mode))(h)
	h = a.m.Logging(h)
	h = a.m.RequestID(h)
	return a.m.Recover(h)
}
