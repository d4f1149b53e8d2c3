package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/http/respond"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/service"
)

// TransactionHandler posts deposits and withdrawals and serves history.
type TransactionHandler struct {
	errorRenderer
	ledger *service.Ledger
}

// NewTransactionHandler constructs the ledger routes.
func NewTransactionHandler(ledger *service.Ledger, log logrus.FieldLogger, debug bool) *TransactionHandler {
	return &TransactionHandler{errorRenderer: errorRenderer{log: log, debug: debug}, ledger: ledger}
}

// Register wires the per-account transaction routes and /api/transactions into r.
func (h *TransactionHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/accounts/{accountId}/transactions", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/accounts/{accountId}/transactions", h.handleListForAccount).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{accountId}/transactions/{transactionId}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/transactions", h.handleHistory).Methods(http.MethodGet)
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accountID, err := pathID(r, "accountId", "Account not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dto.CreateTransactionRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	txn, err := h.ledger.CreateTransaction(r.Context(), accountID, userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Transaction completed successfully", txn)
}

func (h *TransactionHandler) handleListForAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accountID, err := pathID(r, "accountId", "Account not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := parsePageQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.ledger.ListAccountTransactions(r.Context(), accountID, userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Paged(w, page.Items, page.Pagination)
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accountID, err := pathID(r, "accountId", "Transaction not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	transactionID, err := pathID(r, "transactionId", "Transaction not found")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txn, err := h.ledger.GetTransaction(r.Context(), transactionID, accountID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", txn)
}

func (h *TransactionHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := parseHistoryQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.ledger.History(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Paged(w, page.Items, page.Pagination)
}
