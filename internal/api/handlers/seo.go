package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/seo"
	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/logger"
)

// SEOHandler serves sitemap.xml and robots.txt
type SEOHandler struct {
	dividends *dividends.Service
	site      config.SiteConfig
	now       Clock
	logger    *logger.Logger
}

// NewSEOHandler creates a new SEO handler
func NewSEOHandler(div *dividends.Service, site config.SiteConfig, now Clock, log *logger.Logger) *SEOHandler {
	if now == nil {
		now = time.Now
	}
	return &SEOHandler{dividends: div, site: site, now: now, logger: log}
}

// Sitemap lists static routes and stocks paying this year.
// An upstream failure still serves the static routes.
// GET /sitemap.xml
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.dividends.StockList(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Sitemap stock list unavailable, serving static routes only")
		stocks = nil
	}

	body, err := seo.Sitemap(h.site, stocks, h.now())
	if err != nil {
		h.logger.WithError(err).Error("Failed to render sitemap")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Robots serves robots.txt
// GET /robots.txt
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(seo.Robots(h.site)))
}
