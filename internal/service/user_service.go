package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles account registration and authentication.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterInput holds the fields for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register validates the input, rejects duplicate usernames and emails, and
// stores the user with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, models.NewValidationError(err.Error(), err)
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error(), err)
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error(), err)
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, models.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return nil, models.NewValidationError("email is already registered", nil)
	}

	existing, err = s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, models.NewInternalError("failed to check username", err)
	}
	if existing != nil {
		return nil, models.NewValidationError("username is already taken", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, models.NewInternalError("failed to create user", err)
	}
	return user, nil
}

// Authenticate checks an email/password pair. Wrong email and wrong password
// return the same error so the form cannot be used to probe accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, models.NewInternalError("failed to fetch user", err)
	}
	if user == nil {
		return nil, models.NewValidationError("invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewValidationError("invalid email or password", nil)
	}
	return user, nil
}
