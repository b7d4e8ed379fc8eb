package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/api/handlers"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// Handlers groups the endpoint handlers
type Handlers struct {
	Estimate *handlers.EstimateHandler
	Model    *handlers.ModelHandler
	Stats    *handlers.StatsHandler
	Jobs     *handlers.JobsHandler
	Stream   *handlers.ModelStream
}

// NewRouter creates and configures the HTTP router.
// limiter may be nil (rate limiting disabled). trustProxy keys the limiter on
// X-Forwarded-For and must only be set behind a reverse proxy that rewrites it.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, limiter Limiter, trustProxy bool, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Model events
	r.Handle("/ws/model", h.Stream).Methods("GET")

	// /api 라우트는 루트 라우터에 직접 등록: 서브라우터는 메서드 불일치를 404로 응답함
	limit := func(next http.HandlerFunc) http.Handler { return next }
	if limiter != nil {
		mw := rateLimitMiddleware(limiter, trustProxy, log)
		limit = func(next http.HandlerFunc) http.Handler { return mw(next) }
	}
	api := func(method, path string, handler http.HandlerFunc) {
		r.Handle("/api"+path, limit(handler)).Methods(method)
	}

	// Estimation
	api("POST", "/estimate", h.Estimate.Estimate)
	api("GET", "/similar", h.Estimate.Similar)

	// Model
	api("GET", "/model", h.Model.Info)
	api("POST", "/model/refresh", h.Model.Refresh)
	api("GET", "/jobs", h.Jobs.Stats)

	// Charts
	api("GET", "/stats/regions", h.Stats.Regions)
	api("GET", "/stats/prices", h.Stats.Prices)
	api("GET", "/stats/scatter", h.Stats.Scatter)

	// Cascading selection
	api("GET", "/options/provinces", h.Stats.Provinces)
	api("GET", "/options/districts", h.Stats.Districts)
	api("GET", "/options/neighborhoods", h.Stats.Neighborhoods)
	api("GET", "/options/seller-types", h.Stats.SellerTypes)

	// Apply middleware
	r.Use(loggingMiddleware(log, trustProxy))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "house-price-estimator",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger, trustProxy bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"client":   clientKey(r, trustProxy),
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
