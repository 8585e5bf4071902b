// Package api composes the HTTP surface (C8) out of internal/httpapi's
// domain routes plus the operational endpoints (health, metrics,
// debug/routes) that sit alongside them. Grounded on the teacher's
// SetupRouter — same subrouter-with-middleware shape, wired to this
// service's own dependencies instead of the teacher's gorm-backed services.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vikasavnish/marketaggregator/internal/auth"
	"github.com/vikasavnish/marketaggregator/internal/cache"
	"github.com/vikasavnish/marketaggregator/internal/config"
	"github.com/vikasavnish/marketaggregator/internal/httpapi"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/middleware"
	"github.com/vikasavnish/marketaggregator/internal/options"
	"github.com/vikasavnish/marketaggregator/internal/subscriptions"
)

// SetupRouter configures every route this service exposes and returns the
// router ready to hand to an http.Server.
func SetupRouter(
	c *cache.Cache,
	subs *subscriptions.Store,
	registry httpapi.Registry,
	pipeline *options.Pipeline,
	authSvc *auth.Service,
	cfg *config.Config,
	m *metrics.Collectors,
	log *logging.Logger,
) *mux.Router {
	server := httpapi.New(c, subs, registry, pipeline, authSvc, cfg.JWT.SecretKey, log, m)
	router := server.Routes(middleware.AuthMiddleware(cfg.JWT.SecretKey, cfg.JWT.Required))

	router.HandleFunc("/health", HealthHandler(c)).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/debug/routes", PrintRoutesHandler(router)).Methods(http.MethodGet)

	return router
}
