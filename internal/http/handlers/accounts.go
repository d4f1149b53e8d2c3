package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/http/respond"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/service"
)

// AccountHandler exposes the account directory of the authenticated user.
type AccountHandler struct {
	errorRenderer
	accounts *service.Accounts
}

// NewAccountHandler constructs the account routes over the account directory.
func NewAccountHandler(accounts *service.Accounts, log logrus.FieldLogger, debug bool) *AccountHandler {
	return &AccountHandler{errorRenderer: errorRenderer{log: log, debug: debug}, accounts: accounts}
}

// Register wires the /api/accounts routes into r.
func (h *AccountHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/accounts", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/accounts", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{accountId}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{accountId}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/api/accounts/{accountId}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *AccountHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dto.CreateAccountRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	account, err := h.accounts.Create(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Account created successfully", account)
}

func (h *AccountHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accounts, err := h.accounts.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", accounts)
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "accountId", "Account not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	account, err := h.accounts.Get(r.Context(), id, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", account)
}

func (h *AccountHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "accountId", "Account not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dto.UpdateAccountRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	account, err := h.accounts.Update(r.Context(), id, userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Account updated successfully", account)
}

func (h *AccountHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "accountId", "Account not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.Delete(r.Context(), id, userID); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Account deleted successfully", nil)
}
