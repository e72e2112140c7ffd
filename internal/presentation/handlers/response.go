package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/presentation/middleware"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// messageResponse is the body of endpoints that only confirm an action
type messageResponse struct {
	Message string `json:"message"`
}

// respondServiceError maps a service error to a status and message.
// notFound is the message for ErrNotFound; fallback is used for unexpected errors, which are logged.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, notFound, fallback string) {
	var ve *services.ValidationError

	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, services.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrPriceUnavailable):
		logger.Warn("Price unavailable", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Unable to fetch price")
	case errors.Is(err, services.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrAuthProvider):
		logger.Error(fallback, zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Authentication provider unavailable")
	default:
		logger.Error(fallback, zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// currentUser returns the authenticated user or writes a 401
func currentUser(w http.ResponseWriter, r *http.Request) (*entities.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return user, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
