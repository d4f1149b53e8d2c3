package dto

import (
	"strings"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/sanitize"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"password" validate:"omitempty,password"`
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
}

// Empty reports whether the request changes nothing.
func (r UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Password == nil && r.FirstName == nil && r.LastName == nil
}

func (r *RegisterRequest) Sanitize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = sanitize.Text(r.FirstName)
	r.LastName = sanitize.Text(r.LastName)
}

func (r *LoginRequest) Sanitize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *UpdateUserRequest) Sanitize() {
	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		r.Email = &email
	}
	r.FirstName = sanitize.Ptr(r.FirstName)
	r.LastName = sanitize.Ptr(r.LastName)
}
