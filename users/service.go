package users

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
)

// RegisterParams is the registration form. ConfirmPassword is optional but must
// match Password when sent.
type RegisterParams struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Name            string `json:"name" validate:"required"`
}

// DirectoryEntry is the public projection of a user.
type DirectoryEntry struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Service implements registration and account maintenance on top of a UserRepo.
type Service struct {
	repo     UserRepo
	validate *validator.Validate
	hashCost int
}

type ServiceOption func(*Service)

// WithHashCost overrides the bcrypt cost used for new passwords.
func WithHashCost(cost int) ServiceOption {
	return func(s *Service) {
		s.hashCost = cost
	}
}

func NewService(repo UserRepo, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	s := &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		hashCost: DefaultHashCost,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Register creates a credentials user with the default role.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.Email = strings.TrimSpace(params.Email)
	params.Name = strings.TrimSpace(params.Name)
	if err := s.validate.Struct(params); err != nil {
		return nil, apperrors.Wrapf(apperrors.Public(apperrors.ErrInvalidRequest, "%s", validationMessage(err)), "[Register]")
	}
	if err := ValidatePasswordStrength(params.Password); err != nil {
		return nil, apperrors.Wrapf(apperrors.Public(apperrors.ErrInvalidRequest, "%s", err.Error()), "[Register]")
	}

	hash, err := HashPasswordWithCost(params.Password, s.hashCost)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Register] failed to hash password")
	}

	user := &User{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperrors.Wrapf(err, "[Register] failed to create user")
	}
	return user, nil
}

// UpdateEmail changes the email of an existing user.
func (s *Service) UpdateEmail(ctx context.Context, userID, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.Wrapf(apperrors.Public(apperrors.ErrInvalidRequest, "invalid email"), "[UpdateEmail]")
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, apperrors.Wrapf(err, "[UpdateEmail] user %s", userID)
	}
	user, err := s.repo.UpdateEmail(ctx, userID, email)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[UpdateEmail] failed to update user %s", userID)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*User, error) {
	list, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[List] failed to list users")
	}
	return list, nil
}

// Directory lists every user's email and name.
func (s *Service) Directory(ctx context.Context) ([]DirectoryEntry, error) {
	list, err := s.repo.List(ctx, 0, 0)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Directory] failed to list users")
	}
	entries := make([]DirectoryEntry, 0, len(list))
	for _, u := range list {
		entries = append(entries, DirectoryEntry{Email: u.Email, Name: u.Name})
	}
	return entries, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "eqfield":
		return "passwords do not match"
	default:
		return field + " is invalid"
	}
}
