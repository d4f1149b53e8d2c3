package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/storage"
)

const transactionColumns = `t.id, t.type, t.amount, t.description, t.balance_before, t.balance_after, t.account_id, t.created_at, t.updated_at`

// FindTransaction fetches a transaction of accountID, provided userID owns that account.
func (s *Store) FindTransaction(ctx context.Context, id, accountID, userID uuid.UUID) (models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = $1 AND t.account_id = $2 AND a.user_id = $3`
	return scanTransaction(s.pool.QueryRow(ctx, query, id, accountID, userID))
}

// ListTransactions returns one page of transactions matching filter, newest
// first, together with the total number of matches.
func (s *Store) ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, int, error) {
	where, args := transactionWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions t JOIN accounts a ON a.id = t.account_id WHERE ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE %s
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, total, nil
}

func transactionWhere(filter storage.TransactionFilter) (string, []any) {
	conds := []string{"a.user_id = $1"}
	args := []any{filter.UserID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.AccountID != nil {
		add("t.account_id = $%d", *filter.AccountID)
	}
	if filter.Type != nil {
		add("t.type = $%d", *filter.Type)
	}
	if filter.Start != nil {
		add("t.created_at >= $%d", *filter.Start)
	}
	if filter.End != nil {
		add("t.created_at <= $%d", *filter.End)
	}
	return strings.Join(conds, " AND "), args
}

// WithinTx runs fn inside a database transaction, committing only when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op once committed

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx pgx.Tx
}

// LockAccount takes a row lock so concurrent ledger operations on the same
// account serialise on it.
func (l *ledgerTx) LockAccount(ctx context.Context, id, userID uuid.UUID) (models.Account, error) {
	row := l.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
	return scanAccount(row)
}

func (l *ledgerTx) InsertTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	query := `
		WITH inserted AS (
			INSERT INTO transactions (id, type, amount, description, balance_before, balance_after, account_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + transactionColumns + ` FROM inserted t`
	row := l.tx.QueryRow(ctx, query, txn.ID, txn.Type, txn.Amount, txn.Description, txn.BalanceBefore, txn.BalanceAfter, txn.AccountID)
	created, err := scanTransaction(row)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return created, nil
}

func (l *ledgerTx) UpdateBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	tag, err := l.tx.Exec(ctx, `UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1`, accountID, balance)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.BalanceBefore, &t.BalanceAfter, &t.AccountID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, notFound(err)
	}
	return t, nil
}
