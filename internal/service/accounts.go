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

// Accounts is the account directory. It never changes a balance.
type Accounts struct {
	store    storage.AccountStore
	validate *validate.Validator
	log      logrus.FieldLogger
}

// NewAccounts constructs the account directory.
func NewAccounts(store storage.AccountStore, v *validate.Validator, log logrus.FieldLogger) *Accounts {
	return &Accounts{store: store, validate: v, log: log}
}

// Create opens an account for userID with a zero balance and ACTIVE status.
func (s *Accounts) Create(ctx context.Context, userID uuid.UUID, req dto.CreateAccountRequest) (models.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Account{}, err
	}
	account, err := s.store.CreateAccount(ctx, models.Account{
		ID:            uuid.New(),
		AccountNumber: req.AccountNumber,
		Currency:      req.Currency,
		Type:          req.Type,
		Status:        models.StatusActive,
		UserID:        userID,
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return models.Account{}, apperror.Conflict("Account number already exists")
	case errors.Is(err, storage.ErrNotFound):
		return models.Account{}, apperror.NotFound("User not found")
	case err != nil:
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": account.ID, "user_id": userID}).Info("account created")
	return account, nil
}

// Get returns the account if userID owns it. Accounts owned by someone else
// are reported as not found.
func (s *Accounts) Get(ctx context.Context, id, userID uuid.UUID) (models.Account, error) {
	account, err := s.store.FindAccount(ctx, id, userID)
	switch {
	case errors.Is(err, storage.ErrForbidden):
		s.log.WithFields(logrus.Fields{"account_id": id, "user_id": userID}).Warn("account accessed by non-owner")
		return models.Account{}, apperror.NotFound("Account not found")
	case errors.Is(err, storage.ErrNotFound):
		return models.Account{}, apperror.NotFound("Account not found")
	case err != nil:
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

// List returns every account userID owns, newest first.
func (s *Accounts) List(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Update changes currency, type or status of an owned account.
func (s *Accounts) Update(ctx context.Context, id, userID uuid.UUID, req dto.UpdateAccountRequest) (models.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Account{}, err
	}
	if req.Empty() {
		return models.Account{}, apperror.Validation("At least one of currency, type or status must be provided")
	}
	account, err := s.Get(ctx, id, userID)
	if err != nil {
		return models.Account{}, err
	}
	if req.Currency != nil {
		account.Currency = *req.Currency
	}
	if req.Type != nil {
		account.Type = *req.Type
	}
	if req.Status != nil {
		account.Status = *req.Status
	}
	updated, err := s.store.UpdateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, apperror.NotFound("Account not found")
		}
		return models.Account{}, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

// Delete removes an owned account that has no transactions.
func (s *Accounts) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	err := s.store.DeleteAccount(ctx, id, userID)
	switch {
	case errors.Is(err, storage.ErrHasDependents):
		return apperror.Conflict("Cannot delete account with existing transactions")
	case errors.Is(err, storage.ErrNotFound):
		return apperror.NotFound("Account not found")
	case err != nil:
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": id, "user_id": userID}).Info("account deleted")
	return nil
}
