package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/divcal/internal/calendar"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/filter"
	"github.com/wonny/divcal/internal/history"
	"github.com/wonny/divcal/internal/watchlist"
	"github.com/wonny/divcal/pkg/logger"
)

// Clock supplies "now"; handlers derive today in the calendar timezone
type Clock func() time.Time

type clientIDKey struct{}

// WithClientID stores the anonymous client id on ctx
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientID returns the anonymous client id set by the router middleware
func ClientID(r *http.Request) string {
	id, _ := r.Context().Value(clientIDKey{}).(string)
	return id
}

func today(now Clock, loc *time.Location) contracts.Date {
	return contracts.DateOf(now().In(loc))
}

// parseMonth reads year/month query params, defaulting to today's month
func parseMonth(r *http.Request, t contracts.Date) (contracts.Date, error) {
	q := r.URL.Query()
	year, month := t.Year, int(t.Month)

	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1900 || y > 9999 {
			return contracts.Date{}, errors.New("year must be between 1900 and 9999")
		}
		year = y
	}
	if s := q.Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return contracts.Date{}, errors.New("month must be between 1 and 12")
		}
		month = m
	}

	return contracts.NewDate(year, time.Month(month), 1), nil
}

// parseFilter reads q/watchlist_only/high_yield/threshold
func parseFilter(r *http.Request, defaultThreshold float64) (filter.State, error) {
	q := r.URL.Query()
	state := filter.State{
		FreeText:       strings.TrimSpace(q.Get("q")),
		WatchlistOnly:  parseBool(q.Get("watchlist_only")),
		YieldFilter:    parseBool(q.Get("high_yield")),
		YieldThreshold: defaultThreshold,
	}

	if s := q.Get("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return filter.State{}, errors.New("threshold must be a non-negative number")
		}
		state.YieldThreshold = v
	}

	return state, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// loadWatchlist returns the client's set; failures degrade to an empty set
func loadWatchlist(r *http.Request, svc *watchlist.Service, log *logger.Logger) watchlist.Set {
	set, err := svc.Set(r.Context(), ClientID(r))
	if err != nil {
		log.WithError(err).Warn("Failed to load watchlist")
		return watchlist.NewSet()
	}
	return set
}

// respondServiceError maps service errors to HTTP status codes.
// Upstream failures are logged with the request-scoped logger when present.
func respondServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, fields map[string]interface{}) {
	switch {
	case errors.Is(err, dividends.ErrNotFound):
		respondError(w, http.StatusNotFound, "stock not found")
	case errors.Is(err, dividends.ErrNoRecentDividend):
		respondError(w, http.StatusNotFound, "no recent dividend")
	case errors.Is(err, history.ErrEmptyChart):
		respondError(w, http.StatusNotFound, "no cash dividends to chart")
	case errors.Is(err, calendar.ErrNoPayDate):
		respondError(w, http.StatusNotFound, "pay date not announced")
	case errors.Is(err, watchlist.ErrInvalidCode):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(r.Context(), log).WithError(err).WithFields(fields).Error("Upstream request failed")
		respondError(w, http.StatusBadGateway, "upstream unavailable")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
