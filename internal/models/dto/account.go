package dto

import (
	"strings"

	"github.com/hongminglow/minibank/internal/models"
)

// CreateAccountRequest carries only client-settable fields. Balance and
// status are decided by the server.
type CreateAccountRequest struct {
	AccountNumber string             `json:"accountNumber" validate:"required,number,min=8,max=20"`
	Currency      models.Currency    `json:"currency" validate:"required,oneof=USD EUR GBP JPY CAD AUD"`
	Type          models.AccountType `json:"type" validate:"required,oneof=CHECKING SAVINGS BUSINESS"`
}

type UpdateAccountRequest struct {
	Currency *models.Currency      `json:"currency" validate:"omitempty,oneof=USD EUR GBP JPY CAD AUD"`
	Type     *models.AccountType   `json:"type" validate:"omitempty,oneof=CHECKING SAVINGS BUSINESS"`
	Status   *models.AccountStatus `json:"status" validate:"omitempty,oneof=ACTIVE SUSPENDED CLOSED"`
}

func (r UpdateAccountRequest) Empty() bool {
	return r.Currency == nil && r.Type == nil && r.Status == nil
}

func (r *CreateAccountRequest) Sanitize() {
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
}

func (r *UpdateAccountRequest) Sanitize() {}
