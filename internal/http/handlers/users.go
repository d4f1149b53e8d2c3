package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/http/respond"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/service"
)

// UserHandler serves a user's own profile.
type UserHandler struct {
	errorRenderer
	users *service.Users
}

// NewUserHandler constructs the profile routes.
func NewUserHandler(users *service.Users, log logrus.FieldLogger, debug bool) *UserHandler {
	return &UserHandler{errorRenderer: errorRenderer{log: log, debug: debug}, users: users}
}

// Register wires the /api/users/{userId} routes into r.
func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/users/{userId}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userId}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/api/users/{userId}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	requester, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "userId", "User not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), id, requester)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requester, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "userId", "User not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dto.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), id, requester, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requester, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "userId", "User not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), id, requester); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User deleted successfully", nil)
}
