package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/history"
	"github.com/wonny/divcal/internal/seo"
	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/logger"
)

// StockHandler handles stock search and detail endpoints
// ⭐ SSOT: 종목 상세 API 핸들러는 이 구조체에서만
type StockHandler struct {
	dividends *dividends.Service
	cfg       config.CalendarConfig
	site      config.SiteConfig
	loc       *time.Location
	now       Clock
	logger    *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(div *dividends.Service, cfg *config.Config, now Clock, log *logger.Logger) *StockHandler {
	if now == nil {
		now = time.Now
	}
	return &StockHandler{
		dividends: div,
		cfg:       cfg.Calendar,
		site:      cfg.Site,
		loc:       cfg.Calendar.Location(),
		now:       now,
		logger:    log,
	}
}

// stockCode reads and validates {code}
func stockCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code, ok := contracts.NormalizeStockCode(mux.Vars(r)["code"])
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid stock code")
		return "", false
	}
	return code, true
}

// Suggest returns autocomplete matches
// GET /api/stocks/suggest?q=23&limit=4
func (h *StockHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestLimit(h.cfg)
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	items, err := h.dividends.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{"q": r.URL.Query().Get("q")})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// Jump returns the month the calendar should switch to for a stock
// GET /api/stocks/{code}/jump
func (h *StockHandler) Jump(w http.ResponseWriter, r *http.Request) {
	code, ok := stockCode(w, r)
	if !ok {
		return
	}

	target, date, err := h.dividends.JumpTarget(r.Context(), code)
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{"code": code})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stock_code": code,
		"year":       target.Year,
		"month":      target.Month,
		"date":       date,
	})
}

// Get returns the stock detail view
// GET /api/stocks/{code}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, ok := stockCode(w, r)
	if !ok {
		return
	}

	view, err := h.dividends.StockView(r.Context(), code, today(h.now, h.loc))
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{"code": code})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stock":   view,
		"display": view.CalculatorSum.Display(),
	})
}

// Chart renders the cash dividend chart as PNG
// GET /api/stocks/{code}/chart.png?mode=annual|detail
func (h *StockHandler) Chart(w http.ResponseWriter, r *http.Request) {
	code, ok := stockCode(w, r)
	if !ok {
		return
	}

	png, err := h.dividends.StockChart(r.Context(), code, history.ParseChartMode(r.URL.Query().Get("mode")))
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{"code": code})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ICS downloads the latest pay date as an iCalendar file
// GET /api/stocks/{code}/calendar.ics
func (h *StockHandler) ICS(w http.ResponseWriter, r *http.Request) {
	code, ok := stockCode(w, r)
	if !ok {
		return
	}

	body, filename, err := h.dividends.StockICS(r.Context(), code, today(h.now, h.loc))
	if err != nil {
		respondServiceError(w, r, h.logger, err, map[string]interface{}{"code": code})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Page serves the crawlable stock page
// GET /stock/{code}
func (h *StockHandler) Page(w http.ResponseWriter, r *http.Request) {
	code, ok := contracts.NormalizeStockCode(mux.Vars(r)["code"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	t := today(h.now, h.loc)
	view, err := h.dividends.StockView(r.Context(), code, t)
	if err != nil {
		if errors.Is(err, dividends.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"code": code,
		}).Error("Failed to load stock page")
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := seo.RenderStockPage(&buf, h.site, view, t.Year, h.cfg.Presets); err != nil {
		h.logger.WithError(err).Error("Failed to render stock page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
