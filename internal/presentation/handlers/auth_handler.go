package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
	"github.com/bimakw/portfolio-tracker/internal/presentation/middleware"
)

// AuthHandler handles signup, login and session requests
type AuthHandler struct {
	service      *services.AuthService
	cookieSecure bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler.
// cookieSecure should only be off for local development over plain HTTP.
func NewAuthHandler(service *services.AuthService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User    services.UserDTO `json:"user"`
	Message string           `json:"message"`
}

// SessionResponse is returned by the session exchange
type SessionResponse struct {
	User         services.UserDTO `json:"user"`
	SessionToken string           `json:"session_token"`
}

// RegisterRoutes registers the auth routes.
// credentialLimit throttles the endpoints that accept credentials.
func (h *AuthHandler) RegisterRoutes(r chi.Router, requireAuth, credentialLimit func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.With(credentialLimit).Post("/signup", h.Signup)
		r.With(credentialLimit).Post("/login", h.Login)
		r.With(credentialLimit).Post("/session", h.Session)
		r.Post("/logout", h.Logout)
		r.With(requireAuth).Get("/me", h.Me)
	})
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err, "", "Failed to create account")
		return
	}

	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, AuthResponse{User: result.User, Message: "Account created successfully"})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err, "", "Failed to log in")
		return
	}

	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, AuthResponse{User: result.User, Message: "Login successful"})
}

// Session handles POST /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ExchangeSession(r.Context(), req.SessionID)
	if err != nil {
		respondServiceError(w, h.logger, err, "", "Failed to exchange session")
		return
	}

	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, SessionResponse{User: result.User, SessionToken: result.Token})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		h.logger.Error("Failed to log out", zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: h.sameSite(),
	})
	respondJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, services.ToUserDTO(user))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: h.sameSite(),
	})
}

// sameSite allows cross-site cookies only over HTTPS, browsers drop SameSite=None without Secure
func (h *AuthHandler) sameSite() http.SameSite {
	if h.cookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
