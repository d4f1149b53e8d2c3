// Package service holds the business rules of the bank: the ledger that moves
// balances, and the account and user directories that guard it.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/storage"
	"github.com/hongminglow/minibank/internal/validate"
)

// LedgerStore is the persistence the ledger needs.
type LedgerStore interface {
	storage.UnitOfWork
	storage.TransactionStore
	FindAccount(ctx context.Context, id, userID uuid.UUID) (models.Account, error)
}

// Ledger processes deposits and withdrawals and serves transaction history.
type Ledger struct {
	store    LedgerStore
	validate *validate.Validator
	log      logrus.FieldLogger
}

// NewLedger constructs the ledger processor.
func NewLedger(store LedgerStore, v *validate.Validator, log logrus.FieldLogger) *Ledger {
	return &Ledger{store: store, validate: v, log: log}
}

// CreateTransaction applies a deposit or withdrawal to an account owned by
// userID. The balance read, the funds check, the transaction insert and the
// balance write all happen inside one unit of work.
func (l *Ledger) CreateTransaction(ctx context.Context, accountID, userID uuid.UUID, req dto.CreateTransactionRequest) (models.Transaction, error) {
	if err := l.validate.Struct(req); err != nil {
		return models.Transaction{}, err
	}

	var created models.Transaction
	err := l.store.WithinTx(ctx, func(tx storage.LedgerTx) error {
		account, err := tx.LockAccount(ctx, accountID, userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperror.NotFound("Account not found")
			}
			return fmt.Errorf("lock account: %w", err)
		}
		if !account.IsActive() {
			return apperror.Validation("Cannot perform transactions on inactive account")
		}
		if req.Type == models.Withdrawal && req.Amount.GreaterThan(account.Balance) {
			return apperror.Validation("Insufficient funds")
		}

		newBalance := req.Type.Apply(account.Balance, req.Amount)
		if newBalance.GreaterThanOrEqual(validate.MaxAmount) {
			return apperror.Validation("Resulting balance exceeds the maximum allowed")
		}
		created, err = tx.InsertTransaction(ctx, models.Transaction{
			ID:            uuid.New(),
			Type:          req.Type,
			Amount:        req.Amount,
			Description:   req.Description,
			BalanceBefore: account.Balance,
			BalanceAfter:  newBalance,
			AccountID:     account.ID,
		})
		if err != nil {
			return err
		}
		return tx.UpdateBalance(ctx, account.ID, newBalance)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	l.log.WithFields(logrus.Fields{
		"account_id":     accountID,
		"transaction_id": created.ID,
		"type":           created.Type,
		"amount":         created.Amount.String(),
	}).Info("transaction committed")
	return created, nil
}

// GetTransaction returns a transaction of accountID if userID owns that account.
func (l *Ledger) GetTransaction(ctx context.Context, transactionID, accountID, userID uuid.UUID) (models.Transaction, error) {
	txn, err := l.store.FindTransaction(ctx, transactionID, accountID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Transaction{}, apperror.NotFound("Transaction not found")
		}
		return models.Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return txn, nil
}

// ListAccountTransactions pages through one account's transactions, newest first.
func (l *Ledger) ListAccountTransactions(ctx context.Context, accountID, userID uuid.UUID, q dto.PageQuery) (dto.TransactionPage, error) {
	if err := l.validate.Struct(q); err != nil {
		return dto.TransactionPage{}, err
	}
	if _, err := l.store.FindAccount(ctx, accountID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrForbidden) {
			return dto.TransactionPage{}, apperror.NotFound("Account not found")
		}
		return dto.TransactionPage{}, fmt.Errorf("find account: %w", err)
	}
	return l.page(ctx, q, storage.TransactionFilter{
		UserID:    userID,
		AccountID: &accountID,
		Type:      q.Type,
	})
}

// History pages through transactions across every account userID owns.
func (l *Ledger) History(ctx context.Context, userID uuid.UUID, q dto.HistoryQuery) (dto.TransactionPage, error) {
	if err := l.validate.Struct(q); err != nil {
		return dto.TransactionPage{}, err
	}
	if q.StartDate != nil && q.EndDate != nil && q.StartDate.After(*q.EndDate) {
		return dto.TransactionPage{}, apperror.Validation("startDate must not be after endDate")
	}
	return l.page(ctx, q.PageQuery, storage.TransactionFilter{
		UserID:    userID,
		AccountID: q.AccountID,
		Type:      q.Type,
		Start:     q.StartDate,
		End:       q.EndDate,
	})
}

func (l *Ledger) page(ctx context.Context, q dto.PageQuery, filter storage.TransactionFilter) (dto.TransactionPage, error) {
	filter.Limit = q.Limit
	filter.Offset = q.Offset()
	items, total, err := l.store.ListTransactions(ctx, filter)
	if err != nil {
		return dto.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	return dto.TransactionPage{
		Items:      items,
		Pagination: dto.NewPagination(q.Page, q.Limit, total),
	}, nil
}
