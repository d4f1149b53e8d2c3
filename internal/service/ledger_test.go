package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/storage/memory"
)

func TestDepositWithdrawScenario(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "e1@example.com")
	acc := f.openAccount(t, u.ID, "12345678")
	requireDecimal(t, "0", acc.Balance)

	dep, err := f.move(t, acc, models.Deposit, "1000.50")
	require.NoError(t, err)
	requireDecimal(t, "0", dep.BalanceBefore)
	requireDecimal(t, "1000.50", dep.BalanceAfter)
	requireDecimal(t, "1000.50", f.balance(t, acc))

	wd, err := f.move(t, acc, models.Withdrawal, "250.75")
	require.NoError(t, err)
	requireDecimal(t, "1000.50", wd.BalanceBefore)
	requireDecimal(t, "749.75", wd.BalanceAfter)
	requireDecimal(t, "749.75", f.balance(t, acc))

	_, err = f.move(t, acc, models.Withdrawal, "1000.00")
	requireKind(t, err, apperror.KindValidation, "Insufficient funds")
	requireDecimal(t, "749.75", f.balance(t, acc))

	page, err := f.ledger.ListAccountTransactions(context.Background(), acc.ID, u.ID, dto.PageQuery{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestWithdrawExactBalance(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "exact@example.com")
	acc := f.openAccount(t, u.ID, "11112222")

	_, err := f.move(t, acc, models.Deposit, "42.10")
	require.NoError(t, err)
	txn, err := f.move(t, acc, models.Withdrawal, "42.10")
	require.NoError(t, err)
	requireDecimal(t, "0", txn.BalanceAfter)
	requireDecimal(t, "0", f.balance(t, acc))
}

func TestInvalidAmountsFailBeforeTouchingBalance(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "amounts@example.com")
	acc := f.openAccount(t, u.ID, "22223333")

	for _, amount := range []string{"0", "-10", "0.001"} {
		_, err := f.move(t, acc, models.Deposit, amount)
		requireKind(t, err, apperror.KindValidation, "")
	}
	_, err := f.ledger.CreateTransaction(context.Background(), acc.ID, u.ID, dto.CreateTransactionRequest{
		Type: "TRANSFER", Amount: decimal.NewFromInt(5),
	})
	requireKind(t, err, apperror.KindValidation, "")
	requireDecimal(t, "0", f.balance(t, acc))
}

func TestInactiveAccountRejectsEverything(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "inactive@example.com")
	acc := f.openAccount(t, u.ID, "33334444")
	_, err := f.move(t, acc, models.Deposit, "100")
	require.NoError(t, err)

	suspended := models.StatusSuspended
	_, err = f.accounts.Update(context.Background(), acc.ID, u.ID, dto.UpdateAccountRequest{Status: &suspended})
	require.NoError(t, err)

	_, err = f.move(t, acc, models.Deposit, "1")
	requireKind(t, err, apperror.KindValidation, "Cannot perform transactions on inactive account")
	_, err = f.move(t, acc, models.Withdrawal, "1")
	requireKind(t, err, apperror.KindValidation, "Cannot perform transactions on inactive account")
	requireDecimal(t, "100", f.balance(t, acc))
}

func TestOwnershipPrecedesOtherChecks(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner@example.com")
	intruder := f.register(t, "intruder@example.com")
	acc := f.openAccount(t, owner.ID, "44445555")
	dep, err := f.move(t, acc, models.Deposit, "10")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = f.ledger.CreateTransaction(ctx, acc.ID, intruder.ID, dto.CreateTransactionRequest{
		Type: models.Withdrawal, Amount: decimal.NewFromInt(1000),
	})
	requireKind(t, err, apperror.KindNotFound, "Account not found")

	_, err = f.ledger.GetTransaction(ctx, dep.ID, acc.ID, intruder.ID)
	requireKind(t, err, apperror.KindNotFound, "Transaction not found")

	_, err = f.ledger.ListAccountTransactions(ctx, acc.ID, intruder.ID, dto.PageQuery{Page: 1, Limit: 10})
	requireKind(t, err, apperror.KindNotFound, "Account not found")

	page, err := f.ledger.History(ctx, intruder.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 10}, AccountID: &acc.ID})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.ledger.CreateTransaction(ctx, uuid.New(), owner.ID, dto.CreateTransactionRequest{
		Type: models.Deposit, Amount: decimal.NewFromInt(1),
	})
	requireKind(t, err, apperror.KindNotFound, "Account not found")
}

func TestGetTransactionChecksAccount(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "get@example.com")
	a1 := f.openAccount(t, u.ID, "55556666")
	a2 := f.openAccount(t, u.ID, "55557777")
	txn, err := f.move(t, a1, models.Deposit, "5")
	require.NoError(t, err)

	got, err := f.ledger.GetTransaction(context.Background(), txn.ID, a1.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	_, err = f.ledger.GetTransaction(context.Background(), txn.ID, a2.ID, u.ID)
	requireKind(t, err, apperror.KindNotFound, "Transaction not found")
}

func TestPagination(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "pages@example.com")
	acc := f.openAccount(t, u.ID, "66667777")
	for i := 0; i < 7; i++ {
		_, err := f.move(t, acc, models.Deposit, "1")
		require.NoError(t, err)
	}
	ctx := context.Background()

	first, err := f.ledger.ListAccountTransactions(ctx, acc.ID, u.ID, dto.PageQuery{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, first.Items, 3)
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 3, Total: 7, Pages: 3}, first.Pagination)
	// newest first
	requireDecimal(t, "7", first.Items[0].BalanceAfter)

	last, err := f.ledger.ListAccountTransactions(ctx, acc.ID, u.ID, dto.PageQuery{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	requireDecimal(t, "1", last.Items[0].BalanceAfter)

	beyond, err := f.ledger.ListAccountTransactions(ctx, acc.ID, u.ID, dto.PageQuery{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 3, beyond.Pagination.Pages)

	huge := math.MaxInt/50 + 2
	far, err := f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: huge, Limit: 50}})
	require.NoError(t, err)
	assert.Empty(t, far.Items)
	assert.Equal(t, dto.Pagination{Page: huge, Limit: 50, Total: 7, Pages: 1}, far.Pagination)

	_, err = f.ledger.ListAccountTransactions(ctx, acc.ID, u.ID, dto.PageQuery{Page: 0, Limit: 3})
	requireKind(t, err, apperror.KindValidation, "")
}

func TestHistoryFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	clock := func() time.Time { return base.Add(time.Duration(tick.Add(1)) * time.Hour) }

	f := newFixture(t, memory.WithClock(clock))
	u := f.register(t, "history@example.com")
	other := f.register(t, "other@example.com")
	a1 := f.openAccount(t, u.ID, "77778888")
	a2 := f.openAccount(t, u.ID, "77779999")
	foreign := f.openAccount(t, other.ID, "77770000")

	_, err := f.move(t, a1, models.Deposit, "100")
	require.NoError(t, err)
	_, err = f.move(t, a1, models.Withdrawal, "30")
	require.NoError(t, err)
	mid := clock()
	_, err = f.move(t, a2, models.Deposit, "50")
	require.NoError(t, err)
	_, err = f.move(t, foreign, models.Deposit, "999")
	require.NoError(t, err)

	ctx := context.Background()
	all, err := f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50}})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Pagination.Total)
	assert.Equal(t, a2.ID, all.Items[0].AccountID)

	deposits := models.Deposit
	onlyDeposits, err := f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50, Type: &deposits}})
	require.NoError(t, err)
	assert.Equal(t, 2, onlyDeposits.Pagination.Total)

	byAccount, err := f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50}, AccountID: &a1.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, byAccount.Pagination.Total)

	after, err := f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50}, StartDate: &mid})
	require.NoError(t, err)
	require.Equal(t, 1, after.Pagination.Total)
	assert.Equal(t, a2.ID, after.Items[0].AccountID)

	before, err := f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50}, EndDate: &mid})
	require.NoError(t, err)
	assert.Equal(t, 2, before.Pagination.Total)

	early := base
	_, err = f.ledger.History(ctx, u.ID, dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50}, StartDate: &mid, EndDate: &early})
	requireKind(t, err, apperror.KindValidation, "startDate must not be after endDate")
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "race@example.com")
	acc := f.openAccount(t, u.ID, "88889999")
	_, err := f.move(t, acc, models.Deposit, "100")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var ok, insufficient atomic.Int32
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.CreateTransaction(context.Background(), acc.ID, u.ID, dto.CreateTransactionRequest{
				Type: models.Withdrawal, Amount: decimal.NewFromInt(10),
			})
			var appErr *apperror.Error
			switch {
			case err == nil:
				ok.Add(1)
			case errors.As(err, &appErr) && appErr.Message == "Insufficient funds":
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, ok.Load())
	assert.EqualValues(t, 15, insufficient.Load())
	requireDecimal(t, "0", f.balance(t, acc))
}

func TestBalanceEqualsSumOfTransactions(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "sum@example.com")
	acc := f.openAccount(t, u.ID, "99990000")
	moves := []struct {
		typ    models.TransactionType
		amount string
	}{
		{models.Deposit, "500.25"}, {models.Withdrawal, "100.10"}, {models.Deposit, "0.85"}, {models.Withdrawal, "401"},
	}
	for _, m := range moves {
		_, err := f.move(t, acc, m.typ, m.amount)
		require.NoError(t, err)
	}

	page, err := f.ledger.ListAccountTransactions(context.Background(), acc.ID, u.ID, dto.PageQuery{Page: 1, Limit: 50})
	require.NoError(t, err)
	sum := decimal.Zero
	for _, txn := range page.Items {
		sum = txn.Type.Apply(sum, txn.Amount)
		assert.True(t, txn.Type.Apply(txn.BalanceBefore, txn.Amount).Equal(txn.BalanceAfter))
	}
	requireDecimal(t, sum.String(), f.balance(t, acc))
	requireDecimal(t, "0", sum)
}

func TestBalanceCannotReachMaximum(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "rich@example.com")
	acc := f.openAccount(t, u.ID, "90009000")

	_, err := f.move(t, acc, models.Deposit, "9000000000000")
	require.NoError(t, err)
	_, err = f.move(t, acc, models.Deposit, "9000000000000")
	requireKind(t, err, apperror.KindValidation, "Resulting balance exceeds the maximum allowed")
	requireDecimal(t, "9000000000000", f.balance(t, acc))

	_, err = f.move(t, acc, models.Deposit, "999999999999.99")
	require.NoError(t, err)
	requireDecimal(t, "9999999999999.99", f.balance(t, acc))
}
