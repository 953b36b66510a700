package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents the role stored on a user record
type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

// DefaultHashCost matches the cost used when the account store was first populated.
const DefaultHashCost = 10

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// ParseRole maps a stored role onto a known RoleType. Unset or unknown roles become RoleUser.
func ParseRole(role string) RoleType {
	switch RoleType(strings.ToLower(strings.TrimSpace(role))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

type User struct {
	ID            string     `json:"id" bson:"_id"`                                  // Unique identifier for the user
	Email         string     `json:"email" bson:"email"`                             // Unique email address, the join key for linked accounts
	Name          string     `json:"name" bson:"name"`                               // Display name
	Image         string     `json:"image,omitempty" bson:"image,omitempty"`         // Avatar URL from an identity provider
	PasswordHash  string     `json:"-" bson:"password_hash"`                         // Empty for OAuth-only users - never serialize
	Role          RoleType   `json:"role" bson:"role"`                               // user | admin
	EmailVerified *time.Time `json:"email_verified,omitempty" bson:"email_verified"` // When the email was verified, nil if never
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`                   // When the user registered
	UpdatedAt     time.Time  `json:"updated_at,omitempty" bson:"updated_at"`         // Last modification
}

// HasPassword reports whether the user can authenticate with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// EffectiveRole returns the stored role, defaulting to RoleUser when unset.
func (u *User) EffectiveRole() RoleType {
	return ParseRole(string(u.Role))
}

func (u *User) IsAdmin() bool {
	return u.EffectiveRole() == RoleAdmin
}

// CheckPasswordHash checks a password against the user's stored hash
func (u *User) CheckPasswordHash(password string) bool {
	if !u.HasPassword() {
		return false
	}
	return CheckPasswordHash(password, u.PasswordHash)
}

// ValidatePasswordStrength checks if password meets the registration requirements:
// - At least 8 characters long
// - At most MaxPasswordBytes bytes long
// - Contains at least one letter
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", MaxPasswordBytes)
	}

	var (
		hasLetter bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultHashCost)
}

func HashPasswordWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares in constant time via bcrypt.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
