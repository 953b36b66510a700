package auth

import "github.com/jrsteele09/go-booking-server/users"

// Identity is the minimal authenticated principal handed to the claim composer.
type Identity struct {
	ID    string
	Role  users.RoleType
	Email string
	Name  string
	Image string
}

// IdentityFromUser projects a stored user, defaulting an unset role to "user".
func IdentityFromUser(u *users.User) Identity {
	return Identity{
		ID:    u.ID,
		Role:  u.EffectiveRole(),
		Email: u.Email,
		Name:  u.Name,
		Image: u.Image,
	}
}
