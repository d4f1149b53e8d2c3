package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/models/dto"
)

func TestStructEnumeratesEveryViolation(t *testing.T) {
	v := New()
	err := v.Struct(dto.RegisterRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	require.True(t, apperror.Is(err, apperror.KindValidation))

	msg := err.Error()
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be 8-128 characters")
	assert.Contains(t, msg, "firstName is required")
	assert.Contains(t, msg, "lastName is required")
}

func TestCreateTransactionAmountRules(t *testing.T) {
	v := New()
	tests := []struct {
		amount string
		ok     bool
	}{
		{"1000.50", true},
		{"0.01", true},
		{"0", false},
		{"-5", false},
		{"10.001", false},
		{"10000000000000", false},
	}
	for _, tt := range tests {
		req := dto.CreateTransactionRequest{Type: models.Deposit, Amount: decimal.RequireFromString(tt.amount)}
		err := v.Struct(req)
		if tt.ok {
			assert.NoError(t, err, tt.amount)
		} else {
			assert.Error(t, err, tt.amount)
		}
	}
}

func TestCreateTransactionRejectsUnknownType(t *testing.T) {
	err := New().Struct(dto.CreateTransactionRequest{Type: "TRANSFER", Amount: decimal.NewFromInt(5)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type must be one of: DEPOSIT, WITHDRAWAL")
}

func TestCreateAccountRequest(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(dto.CreateAccountRequest{AccountNumber: "12345678", Currency: models.USD, Type: models.Checking}))

	err := v.Struct(dto.CreateAccountRequest{AccountNumber: "12ab", Currency: "XYZ", Type: models.Savings})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accountNumber must contain only digits")
	assert.Contains(t, err.Error(), "currency must be one of")
}

func TestPageQueryBounds(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 50}}))

	err := v.Struct(dto.HistoryQuery{PageQuery: dto.PageQuery{Page: 0, Limit: 101}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page must be at least 1")
	assert.Contains(t, err.Error(), "limit must be at most 100")
}

func TestIsMoney(t *testing.T) {
	assert.True(t, IsMoney(decimal.RequireFromString("749.75")))
	assert.True(t, IsMoney(decimal.RequireFromString("1.500")))
	assert.False(t, IsMoney(decimal.Zero))
}
