package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/divcal/internal/api/handlers"
	"github.com/wonny/divcal/pkg/logger"
)

// ClientCookie identifies an anonymous browser for its watchlist
const ClientCookie = "divcal_cid"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// Handlers groups every endpoint handler the router mounts
type Handlers struct {
	Calendar   *handlers.CalendarHandler
	Stock      *handlers.StockHandler
	Calculator *handlers.CalculatorHandler
	Watchlist  *handlers.WatchlistHandler
	SEO        *handlers.SEOHandler

	// Checks are dependency probes reported by /health
	Checks map[string]HealthCheck
}

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// healthTimeout bounds all probes of one /health request
const healthTimeout = 2 * time.Second

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Checks)).Methods("GET")

	// Crawlable pages
	r.HandleFunc("/", h.Calendar.Page).Methods("GET")
	r.HandleFunc("/stock/{code}", h.Stock.Page).Methods("GET")
	r.HandleFunc("/sitemap.xml", h.SEO.Sitemap).Methods("GET")
	r.HandleFunc("/robots.txt", h.SEO.Robots).Methods("GET")

	// Calculator websocket
	r.HandleFunc("/ws/calculator", h.Calculator.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Calendar endpoints
	api.HandleFunc("/calendar", h.Calendar.GetMonth).Methods("GET")
	api.HandleFunc("/calendar/day", h.Calendar.GetDay).Methods("GET")
	api.HandleFunc("/yield-list", h.Calendar.GetYieldList).Methods("GET")

	// Stock endpoints (suggest before {code})
	api.HandleFunc("/stocks/suggest", h.Stock.Suggest).Methods("GET")
	api.HandleFunc("/stocks/{code}", h.Stock.Get).Methods("GET")
	api.HandleFunc("/stocks/{code}/jump", h.Stock.Jump).Methods("GET")
	api.HandleFunc("/stocks/{code}/chart.png", h.Stock.Chart).Methods("GET")
	api.HandleFunc("/stocks/{code}/calendar.ics", h.Stock.ICS).Methods("GET")

	// Calculator endpoints
	api.HandleFunc("/calculator", h.Calculator.Reduce).Methods("POST")
	api.HandleFunc("/calculator/format", h.Calculator.Format).Methods("POST")

	// Watchlist endpoints
	api.HandleFunc("/watchlist", h.Watchlist.List).Methods("GET")
	api.HandleFunc("/watchlist", h.Watchlist.Add).Methods("POST")
	api.HandleFunc("/watchlist/{code}", h.Watchlist.Remove).Methods("DELETE")
	api.HandleFunc("/watchlist/{code}/toggle", h.Watchlist.Toggle).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(clientIDMiddleware)

	return r
}

// healthCheckHandler returns server health status.
// Any failing probe turns the response into 503 "degraded".
func healthCheckHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"service": "divcal-api",
			"checks":  results,
		})
	}
}

// clientIDMiddleware issues or reuses the anonymous client cookie
func clientIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(ClientCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   clientCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithClientID(r.Context(), id)))
	})
}

// loggingMiddleware logs HTTP requests and hands handlers a
// request-scoped logger carrying request_id
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := log.WithField("request_id", uuid.NewString())
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r.WithContext(reqLog.IntoContext(r.Context())))

			// Log request
			reqLog.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// statusRecorder captures the status code for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through for the calculator websocket upgrade
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
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
