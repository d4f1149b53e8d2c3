package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/storage"
)

const accountColumns = `id, account_number, balance, currency, type, status, user_id, created_at, updated_at`

// CreateAccount inserts a new account. The balance column keeps its default of zero.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	query := `
		INSERT INTO accounts (id, account_number, currency, type, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns
	row := s.pool.QueryRow(ctx, query, account.ID, account.AccountNumber, account.Currency, account.Type, account.Status, account.UserID)
	created, err := scanAccount(row)
	if err != nil {
		switch pgCode(err) {
		case uniqueViolation:
			return models.Account{}, storage.ErrAlreadyExists
		case foreignKeyViolation:
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// FindAccount fetches an account and reports ErrForbidden when userID is not its owner.
func (s *Store) FindAccount(ctx context.Context, id, userID uuid.UUID) (models.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		return models.Account{}, err
	}
	if account.UserID != userID {
		return models.Account{}, storage.ErrForbidden
	}
	return account, nil
}

// ListAccounts returns every account owned by userID, newest first.
func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount writes currency, type and status. The balance is never touched here.
func (s *Store) UpdateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	query := `
		UPDATE accounts
		SET currency = $3, type = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + accountColumns
	row := s.pool.QueryRow(ctx, query, account.ID, account.UserID, account.Currency, account.Type, account.Status)
	return scanAccount(row)
}

// DeleteAccount removes an account that has no transactions.
func (s *Store) DeleteAccount(ctx context.Context, id, userID uuid.UUID) error {
	var txns int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, id).Scan(&txns); err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if txns > 0 {
		return storage.ErrHasDependents
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return storage.ErrHasDependents
		}
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.AccountNumber, &a.Balance, &a.Currency, &a.Type, &a.Status, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	return a, nil
}
