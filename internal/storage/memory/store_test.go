package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/storage"
)

func seed(t *testing.T, s *Store) (models.User, models.Account) {
	t.Helper()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com"})
	require.NoError(t, err)
	a, err := s.CreateAccount(ctx, models.Account{
		ID: uuid.New(), AccountNumber: uuid.NewString()[:8], Balance: decimal.NewFromInt(999),
		Currency: models.USD, Type: models.Checking, Status: models.StatusActive, UserID: u.ID,
	})
	require.NoError(t, err)
	return u, a
}

func TestCreateAccountForcesZeroBalance(t *testing.T) {
	s := NewStore()
	_, a := seed(t, s)
	assert.True(t, a.Balance.IsZero())

	_, err := s.CreateAccount(context.Background(), models.Account{ID: uuid.New(), AccountNumber: a.AccountNumber, UserID: a.UserID})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	_, err = s.CreateAccount(context.Background(), models.Account{ID: uuid.New(), AccountNumber: "55555555", UserID: uuid.New()})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindAccountDistinguishesForeignOwner(t *testing.T) {
	s := NewStore()
	_, a := seed(t, s)
	other, _ := seed(t, s)

	_, err := s.FindAccount(context.Background(), a.ID, other.ID)
	assert.ErrorIs(t, err, storage.ErrForbidden)
	_, err = s.FindAccount(context.Background(), uuid.New(), other.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWithinTxDiscardsWritesOnError(t *testing.T) {
	s := NewStore()
	u, a := seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx storage.LedgerTx) error {
		_, err := tx.InsertTransaction(ctx, models.Transaction{ID: uuid.New(), Type: models.Deposit, Amount: decimal.NewFromInt(5), AccountID: a.ID})
		require.NoError(t, err)
		require.NoError(t, tx.UpdateBalance(ctx, a.ID, decimal.NewFromInt(5)))

		locked, err := tx.LockAccount(ctx, a.ID, u.ID)
		require.NoError(t, err)
		assert.True(t, locked.Balance.Equal(decimal.NewFromInt(5)), "pending balance is visible inside the unit of work")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.FindAccount(ctx, a.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	_, total, err := s.ListTransactions(ctx, storage.TransactionFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWithinTxHonoursCancellation(t *testing.T) {
	s := NewStore()
	u, a := seed(t, s)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(tx storage.LedgerTx) error {
		cancel()
		return tx.UpdateBalance(ctx, a.ID, decimal.NewFromInt(7))
	})
	require.ErrorIs(t, err, context.Canceled)

	got, err := s.FindAccount(context.Background(), a.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestListTransactionsNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	s := NewStore(WithClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}))
	u, a := seed(t, s)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		id := uuid.New()
		ids = append(ids, id)
		require.NoError(t, s.WithinTx(ctx, func(tx storage.LedgerTx) error {
			_, err := tx.InsertTransaction(ctx, models.Transaction{ID: id, Type: models.Deposit, Amount: decimal.NewFromInt(1), AccountID: a.ID})
			return err
		}))
	}

	page, total, err := s.ListTransactions(ctx, storage.TransactionFilter{UserID: u.ID, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	_, total, err = s.ListTransactions(ctx, storage.TransactionFilter{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Zero(t, total)

	for _, offset := range []int{math.MaxInt, -3} {
		page, total, err = s.ListTransactions(ctx, storage.TransactionFilter{UserID: u.ID, Limit: 50, Offset: offset})
		require.NoError(t, err, "offset %d", offset)
		assert.Equal(t, 4, total)
		if offset < 0 {
			assert.Len(t, page, 4)
		} else {
			assert.Empty(t, page)
		}
	}
}

func TestDeleteGuards(t *testing.T) {
	s := NewStore()
	u, a := seed(t, s)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), storage.ErrHasDependents)

	require.NoError(t, s.WithinTx(ctx, func(tx storage.LedgerTx) error {
		_, err := tx.InsertTransaction(ctx, models.Transaction{ID: uuid.New(), Type: models.Deposit, Amount: decimal.NewFromInt(1), AccountID: a.ID})
		return err
	}))
	assert.ErrorIs(t, s.DeleteAccount(ctx, a.ID, u.ID), storage.ErrHasDependents)
	assert.ErrorIs(t, s.DeleteAccount(ctx, uuid.New(), u.ID), storage.ErrNotFound)
}

func TestUpdateUserEmailIndex(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, _ := seed(t, s)
	b, _ := seed(t, s)

	a.Email = b.Email
	_, err := s.UpdateUser(ctx, a)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	a.Email = "renamed@example.com"
	_, err = s.UpdateUser(ctx, a)
	require.NoError(t, err)
	got, err := s.FindUserByEmail(ctx, "renamed@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}
