package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/minibank/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrForbidden indicates the record exists but belongs to another user.
var ErrForbidden = errors.New("record owned by another user")

// ErrHasDependents indicates a delete was blocked by rows referencing the record.
var ErrHasDependents = errors.New("record has dependent rows")

// UserStore captures persistence operations for users.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// AccountStore captures persistence operations for accounts. None of its
// methods write the balance column.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	FindAccount(ctx context.Context, id, userID uuid.UUID) (models.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
	UpdateAccount(ctx context.Context, account models.Account) (models.Account, error)
	DeleteAccount(ctx context.Context, id, userID uuid.UUID) error
}

// TransactionFilter scopes a transaction listing to one user's accounts.
type TransactionFilter struct {
	UserID    uuid.UUID
	AccountID *uuid.UUID
	Type      *models.TransactionType
	Start     *time.Time
	End       *time.Time
	Limit     int
	Offset    int
}

// TransactionStore is the read side of the ledger.
type TransactionStore interface {
	FindTransaction(ctx context.Context, id, accountID, userID uuid.UUID) (models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int, error)
}

// LedgerTx is the set of writes allowed inside a unit of work.
type LedgerTx interface {
	// LockAccount reads the account owned by userID and holds it until the
	// unit of work ends.
	LockAccount(ctx context.Context, id, userID uuid.UUID) (models.Account, error)
	InsertTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	UpdateBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
}

// UnitOfWork runs fn atomically: every write made through tx commits when fn
// returns nil and none of them do otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	AccountStore
	TransactionStore
	UnitOfWork
	Ping(ctx context.Context) error
	Close()
}
