package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the signed session token.
type Claims struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsPatch is the client-supplied update to a session. Only profile fields
// exist on it; identity and role cannot be patched.
type ClaimsPatch struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

func (p ClaimsPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Image == nil
}

type sessionUpdate struct {
	User *ClaimsPatch `json:"user"`
}

// DecodeSessionUpdate reads a {"user": {...}} update body. Any key outside the
// allow-list fails with ErrForbiddenClaim.
func DecodeSessionUpdate(r io.Reader) (ClaimsPatch, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var body sessionUpdate
	if err := dec.Decode(&body); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return ClaimsPatch{}, fmt.Errorf("[DecodeSessionUpdate] %w: %s", ErrForbiddenClaim, strings.TrimPrefix(err.Error(), "json: "))
		}
		if errors.Is(err, io.EOF) {
			return ClaimsPatch{}, nil
		}
		return ClaimsPatch{}, fmt.Errorf("[DecodeSessionUpdate] invalid body: %w", err)
	}
	if body.User == nil {
		return ClaimsPatch{}, nil
	}
	return *body.User, nil
}

// SessionUser is the user section of the client-facing session.
type SessionUser struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// SessionView is what the client sees for its session. The zero value is the
// anonymous session.
type SessionView struct {
	User    *SessionUser `json:"user,omitempty"`
	Expires *time.Time   `json:"expires,omitempty"`
}

func (v SessionView) IsAuthenticated() bool {
	return v.User != nil && v.User.ID != ""
}

// Composer builds token claims and session views. It holds no state.
type Composer struct{}

// OnTokenIssue copies the identity onto the token at sign-in. With no identity
// the token is returned unchanged.
func (Composer) OnTokenIssue(token Claims, identity *Identity) Claims {
	if identity == nil {
		return token
	}
	token.ID = identity.ID
	token.Role = string(identity.Role)
	if identity.Email != "" {
		token.Email = identity.Email
	}
	if identity.Name != "" {
		token.Name = identity.Name
	}
	if identity.Image != "" {
		token.Image = identity.Image
	}
	if token.Subject == "" {
		token.Subject = identity.ID
	}
	return token
}

// OnTokenUpdate merges the profile fields of patch onto token.
func (Composer) OnTokenUpdate(token Claims, patch ClaimsPatch) Claims {
	if patch.Email != nil {
		token.Email = *patch.Email
	}
	if patch.Name != nil {
		token.Name = *patch.Name
	}
	if patch.Image != nil {
		token.Image = *patch.Image
	}
	return token
}

// OnSessionRead overlays id and role from the token onto base. Profile fields
// already on base win over the token's.
func (Composer) OnSessionRead(base SessionView, token *Claims) SessionView {
	if token == nil {
		return SessionView{}
	}

	user := SessionUser{}
	if base.User != nil {
		user = *base.User
	}
	user.ID = token.ID
	user.Role = token.Role
	if user.Email == "" {
		user.Email = token.Email
	}
	if user.Name == "" {
		user.Name = token.Name
	}
	if user.Image == "" {
		user.Image = token.Image
	}

	view := SessionView{User: &user, Expires: base.Expires}
	if view.Expires == nil && token.ExpiresAt != nil {
		expires := token.ExpiresAt.Time
		view.Expires = &expires
	}
	return view
}
