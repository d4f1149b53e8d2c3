package dto

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/sanitize"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" validate:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount      decimal.Decimal        `json:"amount" validate:"money"`
	Description *string                `json:"description" validate:"omitempty,max=255"`
}

// PageQuery selects one page of an account's transactions.
type PageQuery struct {
	Page  int                     `json:"page" validate:"min=1"`
	Limit int                     `json:"limit" validate:"min=1,max=100"`
	Type  *models.TransactionType `json:"type" validate:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
}

// Offset returns the number of rows skipped before this page. It saturates at
// math.MaxInt instead of overflowing for absurdly large pages.
func (q PageQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// HistoryQuery narrows a user's transaction history across accounts.
type HistoryQuery struct {
	PageQuery
	AccountID *uuid.UUID `json:"accountId"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows split by limit.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type TransactionPage struct {
	Items      []models.Transaction
	Pagination Pagination
}

func (r *CreateTransactionRequest) Sanitize() {
	r.Description = sanitize.Ptr(r.Description)
	if r.Description != nil && *r.Description == "" {
		r.Description = nil
	}
}
