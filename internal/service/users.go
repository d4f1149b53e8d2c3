package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/minibank/internal/apperror"
	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/models/dto"
	"github.com/hongminglow/minibank/internal/storage"
	"github.com/hongminglow/minibank/internal/validate"
)

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) (bool, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// Users is the user directory: registration, login and profile management.
type Users struct {
	store    storage.UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *validate.Validator
	log      logrus.FieldLogger

	// compared against when the email is unknown so both login failures cost the same
	dummyHash string
}

// NewUsers constructs the user directory. It fails if the hasher cannot
// produce the hash used for unknown-email logins.
func NewUsers(store storage.UserStore, hasher PasswordHasher, tokens TokenIssuer, v *validate.Validator, log logrus.FieldLogger) (*Users, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Users{store: store, hasher: hasher, tokens: tokens, validate: v, log: log, dummyHash: dummy}, nil
}

// Register creates a user. The returned user never carries the password hash
// into any response.
func (s *Users) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.User{}, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, apperror.Conflict("User with this email already exists")
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Authenticate checks credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Users) Authenticate(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}
	invalid := apperror.Unauthorized("Invalid email or password")

	user, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = s.hasher.Compare(req.Password, s.dummyHash)
			return dto.LoginResponse{}, invalid
		}
		return dto.LoginResponse{}, fmt.Errorf("find user: %w", err)
	}
	ok, err := s.hasher.Compare(req.Password, user.PasswordHash)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return dto.LoginResponse{}, invalid
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("generate token: %w", err)
	}
	return dto.LoginResponse{Token: token, User: user}, nil
}

// Get returns the profile of id; only the user themself may read it.
func (s *Users) Get(ctx context.Context, id, requesterID uuid.UUID) (models.User, error) {
	if id != requesterID {
		return models.User{}, apperror.Forbidden("You can only access your own profile")
	}
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperror.NotFound("User not found")
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Update applies a partial profile change for the requesting user.
func (s *Users) Update(ctx context.Context, id, requesterID uuid.UUID, req dto.UpdateUserRequest) (models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.User{}, err
	}
	if req.Empty() {
		return models.User{}, apperror.Validation("At least one field must be provided")
	}
	user, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return models.User{}, err
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.store.UpdateUser(ctx, user)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return models.User{}, apperror.Conflict("User with this email already exists")
	case errors.Is(err, storage.ErrNotFound):
		return models.User{}, apperror.NotFound("User not found")
	case err != nil:
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes the requesting user, provided they own no accounts.
func (s *Users) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	if id != requesterID {
		return apperror.Forbidden("You can only access your own profile")
	}
	err := s.store.DeleteUser(ctx, id)
	switch {
	case errors.Is(err, storage.ErrHasDependents):
		return apperror.Conflict("Cannot delete user with existing accounts")
	case errors.Is(err, storage.ErrNotFound):
		return apperror.NotFound("User not found")
	case err != nil:
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}
