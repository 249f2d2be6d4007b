// Package auth provides email/password registration and login.
package auth

import (
	"context"
	"fmt"
	"regexp"

	"inkwell/internal/errs"
	"inkwell/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore defines what the auth service needs from user storage.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// Service provides email/password authentication.
type Service struct {
	users UserStore
}

// NewService creates a new auth service
func NewService(users UserStore) *Service {
	return &Service{users: users}
}

func validateRegistration(req *models.UserRegister) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email,
			validation.Required,
			validation.Match(emailPattern).Error("must be a valid email address"),
		),
		validation.Field(&req.Password,
			validation.Required,
			validation.Length(8, 128),
		),
		validation.Field(&req.DisplayName,
			validation.Required,
			validation.Length(1, 120),
		),
	)
}

// Register creates a new account. A duplicate email surfaces as Conflict from
// the store's unique index, so there is no check-then-insert race.
func (s *Service) Register(ctx context.Context, req *models.UserRegister) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, errs.InvalidArgument("invalid registration: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the user. A wrong password and an
// unknown email report the same error so login cannot probe for accounts.
func (s *Service) Login(ctx context.Context, req *models.UserLogin) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errs.PermissionDenied("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errs.PermissionDenied("invalid email or password")
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return errs.InvalidArgument("password must be at least 8 characters")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return errs.PermissionDenied("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}
