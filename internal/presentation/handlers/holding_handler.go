package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// HoldingHandler handles the crypto, stock and coin endpoints.
// One handler serves one kind; the three share every route shape.
type HoldingHandler struct {
	service  *services.HoldingService
	kind     entities.HoldingKind
	notFound string
	logger   *zap.Logger
}

// NewHoldingHandler creates a handler for one holding kind
func NewHoldingHandler(service *services.HoldingService, kind entities.HoldingKind, logger *zap.Logger) *HoldingHandler {
	return &HoldingHandler{
		service:  service,
		kind:     kind,
		notFound: notFoundMessage(kind),
		logger:   logger.With(zap.String("kind", string(kind))),
	}
}

// RoutePrefix returns the path the kind is mounted under
func RoutePrefix(kind entities.HoldingKind) string {
	switch kind {
	case entities.KindCrypto:
		return "/crypto"
	case entities.KindStock:
		return "/stocks"
	default:
		return "/coins"
	}
}

func notFoundMessage(kind entities.HoldingKind) string {
	switch kind {
	case entities.KindCrypto:
		return "Crypto not found"
	case entities.KindStock:
		return "Stock not found"
	default:
		return "Coin not found"
	}
}

// RegisterRoutes registers the holding routes for this handler's kind
func (h *HoldingHandler) RegisterRoutes(r chi.Router) {
	r.Route(RoutePrefix(h.kind), func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/price", h.Price)
	})
}

// Create handles POST /api/{kind}
func (h *HoldingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input services.CreateHoldingInput
	if !decodeBody(w, r, &input) {
		return
	}

	holding, err := h.service.Create(r.Context(), user.UserID, h.kind, input)
	if err != nil {
		respondServiceError(w, h.logger, err, h.notFound, "Failed to create holding")
		return
	}

	respondJSON(w, http.StatusOK, holding)
}

// List handles GET /api/{kind}
func (h *HoldingHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	holdings, err := h.service.List(r.Context(), user.UserID, h.kind)
	if err != nil {
		respondServiceError(w, h.logger, err, h.notFound, "Failed to get holdings")
		return
	}

	respondJSON(w, http.StatusOK, holdings)
}

// Delete handles DELETE /api/{kind}/{id}
func (h *HoldingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.UserID, h.kind, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, h.notFound, "Failed to delete holding")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Deleted successfully"})
}

// Price handles GET /api/{kind}/{id}/price
func (h *HoldingHandler) Price(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	price, err := h.service.CurrentPrice(r.Context(), user.UserID, h.kind, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, h.notFound, "Failed to get price")
		return
	}

	respondJSON(w, http.StatusOK, price)
}
