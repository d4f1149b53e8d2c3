package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Deposit || t == Withdrawal
}

// Transaction is an immutable ledger entry with the balance snapshots taken
// when it was committed.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   *string         `json:"description,omitempty"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	AccountID     uuid.UUID       `json:"accountId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Apply returns the balance that results from applying a movement of type t.
func (t TransactionType) Apply(balance, amount decimal.Decimal) decimal.Decimal {
	if t == Withdrawal {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}
