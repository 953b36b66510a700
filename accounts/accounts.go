package accounts

import "time"

// AccountType is the kind of upstream identity that produced the link.
type AccountType string

const (
	AccountTypeOAuth AccountType = "oauth"
	AccountTypeOIDC  AccountType = "oidc"
)

// Account links a local user to one external identity provider account.
// (Provider, ProviderAccountID) is unique across all accounts.
type Account struct {
	ID                string      `json:"id" bson:"_id"`
	UserID            string      `json:"user_id" bson:"user_id"`
	Provider          string      `json:"provider" bson:"provider"`
	ProviderAccountID string      `json:"provider_account_id" bson:"provider_account_id"`
	Type              AccountType `json:"type" bson:"type"`
	AccessToken       string      `json:"-" bson:"access_token"`
	RefreshToken      string      `json:"-" bson:"refresh_token"`
	CreatedAt         time.Time   `json:"created_at" bson:"created_at"`
}
