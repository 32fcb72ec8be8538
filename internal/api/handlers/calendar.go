package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/filter"
	"github.com/wonny/divcal/internal/seo"
	"github.com/wonny/divcal/internal/watchlist"
	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/logger"
)

// CalendarHandler serves the month view, day drill-down and yield list
// ⭐ SSOT: 달력 API 핸들러
type CalendarHandler struct {
	dividends *dividends.Service
	watchlist *watchlist.Service
	cfg       config.CalendarConfig
	site      config.SiteConfig
	loc       *time.Location
	now       Clock
	logger    *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(div *dividends.Service, wl *watchlist.Service, cfg *config.Config, now Clock, log *logger.Logger) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	return &CalendarHandler{
		dividends: div,
		watchlist: wl,
		cfg:       cfg.Calendar,
		site:      cfg.Site,
		loc:       cfg.Calendar.Location(),
		now:       now,
		logger:    log,
	}
}

// GetMonth returns the filtered month grid
// GET /api/calendar?year=2024&month=6&q=台積&watchlist_only=1&high_yield=1&threshold=5
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	t := today(h.now, h.loc)

	ref, err := parseMonth(r, t)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := parseFilter(r, h.cfg.HighYieldThreshold)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	state.Watchlist = loadWatchlist(r, h.watchlist, h.logger)

	respondJSON(w, http.StatusOK, h.dividends.Calendar(r.Context(), ref, state, t))
}

// Page renders the month calendar as HTML for crawlers and first paint.
// Accepts the same query as GetMonth.
// GET /
func (h *CalendarHandler) Page(w http.ResponseWriter, r *http.Request) {
	t := today(h.now, h.loc)

	ref, err := parseMonth(r, t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := parseFilter(r, h.cfg.HighYieldThreshold)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state.Watchlist = loadWatchlist(r, h.watchlist, h.logger)

	var buf bytes.Buffer
	if err := seo.RenderHomePage(&buf, h.site, h.dividends.Calendar(r.Context(), ref, state, t)); err != nil {
		h.logger.WithError(err).Error("Failed to render home page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// GetDay returns the filtered events paying on one day
// GET /api/calendar/day?date=2024-07-11
func (h *CalendarHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, err := contracts.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date is required (YYYY-MM-DD)")
		return
	}

	state, err := parseFilter(r, h.cfg.HighYieldThreshold)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	state.Watchlist = loadWatchlist(r, h.watchlist, h.logger)

	events, err := h.dividends.DayEvents(r.Context(), day, state)
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{"date": day.String()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   day,
		"count":  len(events),
		"events": events,
	})
}

// GetYieldList returns high-yield events ranked by yield_rate
// GET /api/yield-list?year=2024&month=6&threshold=5&scope=month|year
func (h *CalendarHandler) GetYieldList(w http.ResponseWriter, r *http.Request) {
	ref, err := parseMonth(r, today(h.now, h.loc))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := parseFilter(r, h.cfg.HighYieldThreshold)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scope := dividends.ScopeMonth
	switch r.URL.Query().Get("scope") {
	case "", string(dividends.ScopeMonth):
	case string(dividends.ScopeYear):
		scope = dividends.ScopeYear
	default:
		respondError(w, http.StatusBadRequest, "scope must be month or year")
		return
	}

	events, err := h.dividends.YieldList(r.Context(), ref, state.YieldThreshold, scope)
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{
			"year":  ref.Year,
			"scope": scope,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":      ref.Year,
		"month":     int(ref.Month),
		"scope":     scope,
		"threshold": state.YieldThreshold,
		"count":     len(events),
		"events":    events,
	})
}

// defaultSuggestLimit falls back when config leaves it unset
func defaultSuggestLimit(cfg config.CalendarConfig) int {
	if cfg.SuggestLimit > 0 {
		return cfg.SuggestLimit
	}
	return filter.DefaultSuggestLimit
}
