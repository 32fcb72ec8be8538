package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/watchlist"
	"github.com/wonny/divcal/pkg/logger"
)

// WatchlistHandler manages the anonymous client's tracked stocks
type WatchlistHandler struct {
	watchlist *watchlist.Service
	logger    *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(svc *watchlist.Service, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlist: svc, logger: log}
}

// WatchlistRequest is the body of POST /api/watchlist
type WatchlistRequest struct {
	Code string `json:"code"`
}

func (h *WatchlistHandler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, watchlist.ErrInvalidCode) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.WithError(err).WithFields(map[string]interface{}{
		"client_id": ClientID(r),
	}).Error("Watchlist store failed")
	respondError(w, http.StatusInternalServerError, "Failed to update watchlist")
}

// List returns tracked codes in insertion order
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.watchlist.List(r.Context(), ClientID(r))
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"codes": codes,
	})
}

// Add tracks a stock
// POST /api/watchlist {"code":"2330"}
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req WatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code, err := h.watchlist.Add(r.Context(), ClientID(r), req.Code)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"code":    code,
		"tracked": true,
	})
}

// Remove untracks a stock
// DELETE /api/watchlist/{code}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	code, err := h.watchlist.Remove(r.Context(), ClientID(r), mux.Vars(r)["code"])
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":    code,
		"tracked": false,
	})
}

// Toggle flips a stock's tracked state
// POST /api/watchlist/{code}/toggle
func (h *WatchlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	tracked, err := h.watchlist.Toggle(r.Context(), ClientID(r), code)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	normalized, _ := contracts.NormalizeStockCode(code)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":    normalized,
		"tracked": tracked,
	})
}
