package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/thesahilsinghh/shoppers/internal/auth"
	"github.com/thesahilsinghh/shoppers/internal/backend"
	"github.com/thesahilsinghh/shoppers/internal/cart"
	"github.com/thesahilsinghh/shoppers/internal/orders"
)

type AuthHandler struct {
	gql       *backend.GraphQLClient
	sessions  *cart.Sessions
	histories *orders.Histories
	timeout   time.Duration
}

func NewAuthHandler(gql *backend.GraphQLClient, sessions *cart.Sessions, histories *orders.Histories, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		gql:       gql,
		sessions:  sessions,
		histories: histories,
		timeout:   timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login passes credentials through to the auth backend and installs the
// returned token as the session cookie so browser navigations (the gateway
// callback in particular) stay authenticated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := h.gql.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "login_failed", "invalid credentials")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, result)
}

// Logout tears down the per-user session state; responses from requests
// still in flight are discarded rather than applied.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cred, ok := auth.FromContext(r.Context())
	if ok {
		h.sessions.Drop(cred)
		h.histories.Drop(cred)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
