package server

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/campus-ride/internal/adapter/http/middleware"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Temutjin2k/campus-ride/docs/matching"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, mode types.ServiceMode, log logger.Logger) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupMetricsRoute(mux)

	switch mode {
	case types.MatchingService:
		setupSwaggerRoutes(mux, mode, log)
		setupLocationRoutes(mux, routes, m)
		setupRequestRoutes(mux, routes, m)
		setupNegotiationRoutes(mux, routes, m)
		setupDiscoveryRoutes(mux, routes, m)
		setupNotificationRoutes(mux, routes, m)
		mux.HandleFunc("GET /ws/actors/{actor_id}", routes.ws.Connect) // WebSocket push channel, auth by header or first message
	}
}

func setupLocationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /locations", m.RequireRoles(routes.location.Heartbeat, types.RiderRole, types.DriverRole))
	mux.Handle("GET /locations/{actor_id}/history", m.RequireRoles(routes.location.History, types.RiderRole, types.DriverRole))
}

func setupRequestRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /requests", m.RequireRoles(routes.request.Submit, types.RiderRole))
	mux.Handle("GET /requests", m.RequireRoles(routes.request.List, types.DriverRole))
	mux.Handle("GET /requests/{request_id}", m.RequireRoles(routes.request.Get, types.RiderRole, types.DriverRole))
	mux.Handle("POST /requests/{request_id}/cancel", m.RequireRoles(routes.request.Cancel, types.RiderRole))
}

func setupNegotiationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /requests/{request_id}/negotiations", m.RequireRoles(routes.negotiation.Open, types.RiderRole, types.DriverRole))
	mux.Handle("GET /requests/{request_id}/negotiations", m.RequireRoles(routes.negotiation.List, types.RiderRole, types.DriverRole))
	mux.Handle("GET /negotiations/{negotiation_id}", m.RequireRoles(routes.negotiation.Get, types.RiderRole, types.DriverRole))
	mux.Handle("POST /negotiations/{negotiation_id}/counter", m.RequireRoles(routes.negotiation.Counter, types.RiderRole, types.DriverRole))
	mux.Handle("POST /negotiations/{negotiation_id}/accept", m.RequireRoles(routes.negotiation.Accept, types.RiderRole, types.DriverRole))
	mux.Handle("POST /negotiations/{negotiation_id}/reject", m.RequireRoles(routes.negotiation.Reject, types.RiderRole, types.DriverRole))
}

func setupDiscoveryRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /drivers/nearby", m.RequireRoles(routes.discovery.NearbyDrivers, types.RiderRole, types.DriverRole))
	mux.Handle("POST /fares/estimate", m.RequireRoles(routes.discovery.EstimateFare, types.RiderRole, types.DriverRole))
	mux.Handle("POST /rides", m.RequireRoles(routes.discovery.PostRide, types.DriverRole))
	mux.Handle("GET /rides/nearby", m.RequireRoles(routes.discovery.NearbyRides, types.RiderRole, types.DriverRole))
	mux.Handle("GET /map", m.RequireRoles(routes.discovery.Map, types.RiderRole, types.DriverRole))
}

func setupNotificationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /notifications", m.RequireRoles(routes.notification.List))
	mux.Handle("GET /notifications/unread-count", m.RequireRoles(routes.notification.UnreadCount))
	mux.Handle("POST /notifications/read-all", m.RequireRoles(routes.notification.MarkAllRead))
	mux.Handle("POST /notifications/{notification_id}/read", m.RequireRoles(routes.notification.MarkRead))
}

// setupSwaggerRoutes configures Swagger UI endpoints based on service mode
func setupSwaggerRoutes(mux *http.ServeMux, mode types.ServiceMode, log logger.Logger) {
	var instanceName string

	switch mode {
	case types.MatchingService:
		instanceName = "matching"
	default:
		log.Warn(wrap.WithAction(context.Background(), "setup swagger routes"), "unknown service mode for swagger setup", "mode", mode)
		return
	}

	swaggerURL := httpSwagger.InstanceName(instanceName)
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
