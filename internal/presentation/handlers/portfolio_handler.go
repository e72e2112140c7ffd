package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
)

// PortfolioHandler handles portfolio and history requests
type PortfolioHandler struct {
	portfolio *services.PortfolioService
	history   *services.HistoryService
	logger    *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(portfolio *services.PortfolioService, history *services.HistoryService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		history:   history,
		logger:    logger,
	}
}

// RegisterRoutes registers portfolio and history routes
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolio/overview", h.Overview)
	r.Post("/history/snapshot", h.RecordSnapshot)
	r.Get("/history/snapshots", h.ListSnapshots)
}

// Overview handles GET /api/portfolio/overview
func (h *PortfolioHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	overview, err := h.portfolio.GetOverview(r.Context(), user.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "", "Failed to get portfolio overview")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// RecordSnapshot handles POST /api/history/snapshot
func (h *PortfolioHandler) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	record, err := h.history.RecordSnapshot(r.Context(), user.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "", "Failed to record snapshot")
		return
	}

	respondJSON(w, http.StatusOK, services.ToHistorySnapshotDTO(record))
}

// ListSnapshots handles GET /api/history/snapshots
func (h *PortfolioHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	records, err := h.history.ListSnapshots(r.Context(), user.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "", "Failed to get snapshots")
		return
	}

	result := make([]services.HistorySnapshotDTO, len(records))
	for i := range records {
		result[i] = services.ToHistorySnapshotDTO(&records[i])
	}
	respondJSON(w, http.StatusOK, result)
}
