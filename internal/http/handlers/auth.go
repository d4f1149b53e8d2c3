package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/http/respond"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/service"
)

// AuthHandler owns register, login and the current-user lookup.
type AuthHandler struct {
	errorRenderer
	users *service.Users
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users *service.Users, log logrus.FieldLogger, debug bool) *AuthHandler {
	return &AuthHandler{errorRenderer: errorRenderer{log: log, debug: debug}, users: users}
}

// RegisterPublic attaches register and login. loginGuard wraps login, e.g.
// with a rate limiter.
func (h *AuthHandler) RegisterPublic(r *mux.Router, loginGuard func(http.Handler) http.Handler) {
	r.HandleFunc("/api/auth/register", h.handleRegister).Methods(http.MethodPost)
	r.Handle("/api/auth/login", loginGuard(http.HandlerFunc(h.handleLogin))).Methods(http.MethodPost)
}

// RegisterProtected attaches routes that need an authenticated user.
func (h *AuthHandler) RegisterProtected(r *mux.Router) {
	r.HandleFunc("/api/auth/me", h.handleMe).Methods(http.MethodGet)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User registered successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.users.Authenticate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), userID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", user)
}
