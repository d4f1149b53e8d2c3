// Package memory is a mutex-guarded storage.Store for tests and local runs
// without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record in maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[uuid.UUID]models.User
	emailIndex   map[string]uuid.UUID
	accounts     map[uuid.UUID]models.Account
	numberIndex  map[string]uuid.UUID
	transactions map[uuid.UUID]models.Transaction
	// insertion order, oldest first
	accountOrder []uuid.UUID
	txnOrder     []uuid.UUID
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		users:        make(map[uuid.UUID]models.User),
		emailIndex:   make(map[string]uuid.UUID),
		accounts:     make(map[uuid.UUID]models.Account),
		numberIndex:  make(map[string]uuid.UUID),
		transactions: make(map[uuid.UUID]models.Transaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emailIndex[user.Email]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = user
	s.emailIndex[user.Email] = user.ID
	return user, nil
}

func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if owner, taken := s.emailIndex[user.Email]; taken && owner != user.ID {
		return models.User{}, storage.ErrAlreadyExists
	}
	delete(s.emailIndex, current.Email)
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	s.emailIndex[user.Email] = user.ID
	return user, nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	for _, a := range s.accounts {
		if a.UserID == id {
			return storage.ErrHasDependents
		}
	}
	delete(s.users, id)
	delete(s.emailIndex, u.Email)
	return nil
}

func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[account.UserID]; !ok {
		return models.Account{}, storage.ErrNotFound
	}
	if _, taken := s.numberIndex[account.AccountNumber]; taken {
		return models.Account{}, storage.ErrAlreadyExists
	}
	now := s.now()
	account.Balance = decimal.Zero
	account.CreatedAt, account.UpdatedAt = now, now
	s.accounts[account.ID] = account
	s.numberIndex[account.AccountNumber] = account.ID
	s.accountOrder = append(s.accountOrder, account.ID)
	return account, nil
}

func (s *Store) FindAccount(_ context.Context, id, userID uuid.UUID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	if a.UserID != userID {
		return models.Account{}, storage.ErrForbidden
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, userID uuid.UUID) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Account{}
	for i := len(s.accountOrder) - 1; i >= 0; i-- {
		a, ok := s.accounts[s.accountOrder[i]]
		if ok && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[account.ID]
	if !ok || current.UserID != account.UserID {
		return models.Account{}, storage.ErrNotFound
	}
	current.Currency = account.Currency
	current.Type = account.Type
	current.Status = account.Status
	current.UpdatedAt = s.now()
	s.accounts[current.ID] = current
	return current, nil
}

func (s *Store) DeleteAccount(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return storage.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.AccountID == id {
			return storage.ErrHasDependents
		}
	}
	delete(s.accounts, id)
	delete(s.numberIndex, a.AccountNumber)
	for i, aid := range s.accountOrder {
		if aid == id {
			s.accountOrder = append(s.accountOrder[:i], s.accountOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) FindTransaction(_ context.Context, id, accountID, userID uuid.UUID) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok || t.AccountID != accountID {
		return models.Transaction{}, storage.ErrNotFound
	}
	if a, ok := s.accounts[accountID]; !ok || a.UserID != userID {
		return models.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f storage.TransactionFilter) ([]models.Transaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []models.Transaction{}
	for i := len(s.txnOrder) - 1; i >= 0; i-- {
		t := s.transactions[s.txnOrder[i]]
		if a, ok := s.accounts[t.AccountID]; !ok || a.UserID != f.UserID {
			continue
		}
		if f.AccountID != nil && t.AccountID != *f.AccountID {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		if f.Start != nil && t.CreatedAt.Before(*f.Start) {
			continue
		}
		if f.End != nil && t.CreatedAt.After(*f.End) {
			continue
		}
		matched = append(matched, t)
	}
	// stable so equal timestamps keep newest-inserted first
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 && f.Limit < total-start {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

// WithinTx holds the write lock for the whole of fn and applies the buffered
// writes only if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &ledgerTx{store: s, balances: map[uuid.UUID]decimal.Decimal{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now()
	for id, balance := range tx.balances {
		a := s.accounts[id]
		a.Balance = balance
		a.UpdatedAt = now
		s.accounts[id] = a
	}
	for _, t := range tx.inserted {
		s.transactions[t.ID] = t
		s.txnOrder = append(s.txnOrder, t.ID)
	}
	return nil
}

type ledgerTx struct {
	store    *Store
	balances map[uuid.UUID]decimal.Decimal
	inserted []models.Transaction
}

func (l *ledgerTx) LockAccount(_ context.Context, id, userID uuid.UUID) (models.Account, error) {
	a, ok := l.store.accounts[id]
	if !ok || a.UserID != userID {
		return models.Account{}, storage.ErrNotFound
	}
	if b, pending := l.balances[id]; pending {
		a.Balance = b
	}
	return a, nil
}

func (l *ledgerTx) InsertTransaction(_ context.Context, txn models.Transaction) (models.Transaction, error) {
	if _, ok := l.store.accounts[txn.AccountID]; !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	now := l.store.now()
	txn.CreatedAt, txn.UpdatedAt = now, now
	l.inserted = append(l.inserted, txn)
	return txn, nil
}

func (l *ledgerTx) UpdateBalance(_ context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	if _, ok := l.store.accounts[accountID]; !ok {
		return storage.ErrNotFound
	}
	l.balances[accountID] = balance
	return nil
}
