// Package httpapi implements the HTTP surface (C8) and request validation
// (C15). Handlers translate query parameters and JSON bodies to core calls;
// they hold no business logic beyond parameter parsing, validation, and
// response shaping, per spec.md §4.8. Grounded on the teacher's
// handlers/*.go request-decode-then-delegate style, adapted from a
// gorm-service backend to this service's cache/registry/pipeline core.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/vikasavnish/marketaggregator/internal/analytics"
	"github.com/vikasavnish/marketaggregator/internal/auth"
	"github.com/vikasavnish/marketaggregator/internal/cache"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/models"
	"github.com/vikasavnish/marketaggregator/internal/options"
	"github.com/vikasavnish/marketaggregator/internal/providers"
	"github.com/vikasavnish/marketaggregator/internal/subscriptions"
)

// Registry is the C2/C1 capability the HTTP surface routes through.
type Registry interface {
	Route(symbol string) (providers.QuoteProvider, models.SymbolClass)
}

// Server holds every dependency the HTTP handlers need.
type Server struct {
	cache     *cache.Cache
	subs      *subscriptions.Store
	registry  Registry
	pipeline  *options.Pipeline
	auth      *auth.Service
	jwtSecret []byte
	log       *logging.Logger
	metrics   *metrics.Collectors
	validate  *validator.Validate
}

func New(c *cache.Cache, subs *subscriptions.Store, registry Registry, pipeline *options.Pipeline, authSvc *auth.Service, jwtSecret []byte, log *logging.Logger, m *metrics.Collectors) *Server {
	return &Server{
		cache:     c,
		subs:      subs,
		registry:  registry,
		pipeline:  pipeline,
		auth:      authSvc,
		jwtSecret: jwtSecret,
		log:       log,
		metrics:   m,
		validate:  validator.New(),
	}
}

// SubscribeRequest is C15's validated DTO for POST /subscribe.
type SubscribeRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

// FetchOptionsRequest is C15's validated DTO for POST /options/fetch.
type FetchOptionsRequest struct {
	Index      string `json:"index" validate:"required"`
	NumStrikes int    `json:"num_strikes" validate:"gte=0"`
}

// FetchOptionsExpiryRequest is C15's validated DTO for
// POST /options/fetch/expiry.
type FetchOptionsExpiryRequest struct {
	Index      string `json:"index" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	NumStrikes int    `json:"num_strikes" validate:"gte=0"`
}

const defaultNumStrikes = 10

// Routes builds the mux.Router for the full HTTP surface. authMiddleware
// wraps only the mutating routes (/subscribe, /options/fetch,
// /options/fetch/expiry); callers pass a passthrough when auth is not
// required.
func (s *Server) Routes(authMiddleware func(http.Handler) http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/quote/{symbol}", s.handleGetQuote).Methods(http.MethodGet)
	r.HandleFunc("/fetch/{symbol}", s.handleFetchQuote).Methods(http.MethodGet)
	r.HandleFunc("/historical/{symbol}", s.handleHistorical).Methods(http.MethodGet)
	r.HandleFunc("/quotes", s.handleQuotesSnapshot).Methods(http.MethodGet)

	r.HandleFunc("/options/expiries", s.handleOptionExpiries).Methods(http.MethodGet)
	r.HandleFunc("/options/analytics", s.handleOptionAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/options/live-analytics", s.handleOptionLiveAnalytics).Methods(http.MethodGet)

	mutating := r.NewRoute().Subrouter()
	mutating.Use(authMiddleware)
	mutating.HandleFunc("/subscribe", s.handleSubscribe).Methods(http.MethodPost)
	mutating.HandleFunc("/options/fetch", s.handleFetchOptions).Methods(http.MethodPost)
	mutating.HandleFunc("/options/fetch/expiry", s.handleFetchOptionsExpiry).Methods(http.MethodPost)

	return r
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveHTTPRequest(r.URL.Path, rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("malformed login request body"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, models.NewValidation("username and password are required"))
		return
	}
	user, err := s.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.GenerateToken(user, s.jwtSecret)
	if err != nil {
		writeError(w, models.NewPermanent(err, "could not generate token"))
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	quote, ok := s.cache.Get(symbol)
	if !ok {
		writeError(w, models.NewNotFound("no cached quote for %s", symbol))
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleFetchQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	provider, _ := s.registry.Route(symbol)
	quote, err := provider.GetQuote(r.Context(), symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.Set(symbol, quote)
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	period := r.URL.Query().Get("period")
	interval := r.URL.Query().Get("interval")

	provider, _ := s.registry.Route(symbol)
	historical, ok := provider.(providers.HistoricalProvider)
	if !ok {
		writeError(w, models.NewNotImplemented("historical data is not supported by current provider for %s", symbol))
		return
	}
	bars, err := historical.GetHistorical(r.Context(), symbol, period, interval)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bars)
}

func (s *Server) handleQuotesSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Snapshot())
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("malformed subscribe request body"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, models.NewValidation("symbol is required"))
		return
	}
	s.subs.Add(req.Symbol)
	if err := s.subs.Save(); err != nil {
		s.log.WithError(err).Warn("subscribe: failed to persist subscription store")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "subscribed", "symbol": strings.ToUpper(req.Symbol)})
}

func (s *Server) handleOptionExpiries(w http.ResponseWriter, r *http.Request) {
	index := r.URL.Query().Get("index")
	if index == "" {
		writeError(w, models.NewValidation("index query parameter is required"))
		return
	}
	expiries, err := s.pipeline.Expiries(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"expiries": expiries})
}

func (s *Server) handleFetchOptions(w http.ResponseWriter, r *http.Request) {
	var req FetchOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("malformed options fetch request body"))
		return
	}
	if req.NumStrikes == 0 {
		req.NumStrikes = defaultNumStrikes
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, models.NewValidation("index is required"))
		return
	}
	snap, err := s.pipeline.FetchNearest(r.Context(), req.Index, req.NumStrikes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Meta)
}

func (s *Server) handleFetchOptionsExpiry(w http.ResponseWriter, r *http.Request) {
	var req FetchOptionsExpiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("malformed options fetch/expiry request body"))
		return
	}
	if req.NumStrikes == 0 {
		req.NumStrikes = defaultNumStrikes
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, models.NewValidation("index and expiry are required"))
		return
	}
	snap, err := s.pipeline.FetchExpiry(r.Context(), req.Index, options.NormalizeExpiry(req.Expiry), req.NumStrikes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Meta)
}

func (s *Server) handleOptionAnalytics(w http.ResponseWriter, r *http.Request) {
	index := r.URL.Query().Get("index")
	if index == "" {
		writeError(w, models.NewValidation("index query parameter is required"))
		return
	}
	topN := parseTopN(r)
	rows, err := s.pipeline.LatestSnapshot(index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Compute(rows, topN))
}

func (s *Server) handleOptionLiveAnalytics(w http.ResponseWriter, r *http.Request) {
	index := r.URL.Query().Get("index")
	if index == "" {
		writeError(w, models.NewValidation("index query parameter is required"))
		return
	}
	expiry := options.NormalizeExpiry(r.URL.Query().Get("expiry"))
	numStrikes := defaultNumStrikes
	if raw := r.URL.Query().Get("num_strikes"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			numStrikes = n
		}
	}
	topN := parseTopN(r)

	rows, _, err := s.pipeline.LiveAnalytics(r.Context(), index, expiry, numStrikes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Compute(rows, topN))
}

func parseTopN(r *http.Request) int {
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 5
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch models.KindOf(err) {
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindValidation:
		status = http.StatusBadRequest
	case models.KindSchema, models.KindTransient, models.KindPermanent:
		status = http.StatusInternalServerError
	case models.KindConflict:
		status = http.StatusConflict
	case models.KindNotImplemented:
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
