package server

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/jrsteele09/go-booking-server/providers"
	"github.com/jrsteele09/go-booking-server/users"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAdminName        = "Administrator"
	generatedPasswordLength = 16
)

// InitialiseSystem seeds the administrator configured by ADMIN_EMAIL. Nothing
// happens when no admin email is configured. Returns the generated password on
// first creation when ADMIN_PASSWORD is unset, otherwise an empty string.
func (s *Server) InitialiseSystem(ctx context.Context) (generatedPassword string, err error) {
	adminEmail := strings.TrimSpace(s.config.GetSystemAdminEmail())
	if adminEmail == "" {
		return "", nil
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil && existingUser.IsAdmin():
		log.Info().Str("email", adminEmail).Msg("[server InitialiseSystem] admin already exists")
		return "", nil
	case err == nil:
		// Roles are never changed at startup.
		log.Warn().Str("email", adminEmail).Msg("[server InitialiseSystem] configured admin email belongs to a non-admin user, leaving it unchanged")
		return "", nil
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return "", fmt.Errorf("[Server InitialiseSystem] failed to look up admin: %w", err)
	}

	password := s.config.GetSystemAdminPassword()
	if password == "" {
		generatedPassword, err = providers.RandomString(generatedPasswordLength)
		if err != nil {
			return "", fmt.Errorf("[Server InitialiseSystem] failed to generate password: %w", err)
		}
		password = generatedPassword
	}

	passwordHash, err := users.HashPasswordWithCost(password, s.config.GetPasswordHashCost())
	if err != nil {
		return "", fmt.Errorf("[Server InitialiseSystem] failed to hash password: %w", err)
	}

	adminUser := &users.User{
		Email:        adminEmail,
		Name:         DefaultAdminName,
		PasswordHash: passwordHash,
		Role:         users.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, adminUser); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			// Another instance seeded it first.
			return "", nil
		}
		return "", fmt.Errorf("[Server InitialiseSystem] failed to create admin: %w", err)
	}

	log.Info().Str("email", adminEmail).Str("user_id", adminUser.ID).Msg("[server InitialiseSystem] admin created")
	return generatedPassword, nil
}
