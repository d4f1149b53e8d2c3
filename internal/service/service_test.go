package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/auth"
	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/storage/memory"
	"github.com/hongminglow/minibank/internal/validate"
)

type fixture struct {
	store    *memory.Store
	users    *Users
	accounts *Accounts
	ledger   *Ledger
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	v := validate.New()
	store := memory.NewStore(opts...)
	tokens := auth.NewTokenManager("test-secret", "minibank-test", time.Hour)
	users, err := NewUsers(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, v, log)
	require.NoError(t, err)
	return &fixture{
		store:    store,
		users:    users,
		accounts: NewAccounts(store, v, log),
		ledger:   NewLedger(store, v, log),
	}
}

func (f *fixture) register(t *testing.T, email string) models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), dto.RegisterRequest{
		Email: email, Password: "Passw0rd!", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) openAccount(t *testing.T, owner uuid.UUID, number string) models.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), owner, dto.CreateAccountRequest{
		AccountNumber: number, Currency: models.USD, Type: models.Checking,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) move(t *testing.T, a models.Account, typ models.TransactionType, amount string) (models.Transaction, error) {
	t.Helper()
	return f.ledger.CreateTransaction(context.Background(), a.ID, a.UserID, dto.CreateTransactionRequest{
		Type: typ, Amount: decimal.RequireFromString(amount),
	})
}

func (f *fixture) balance(t *testing.T, a models.Account) decimal.Decimal {
	t.Helper()
	got, err := f.accounts.Get(context.Background(), a.ID, a.UserID)
	require.NoError(t, err)
	return got.Balance
}

func requireKind(t *testing.T, err error, kind apperror.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind)
	if msg != "" {
		require.Equal(t, msg, appErr.Message)
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}
