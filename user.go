package authmaster

import "time"

// ProviderType identifies which credential provider produced an identity.
type ProviderType string

const (
	ProviderGoogle   ProviderType = "google"
	ProviderFacebook ProviderType = "facebook"
	ProviderGitHub   ProviderType = "github"
	ProviderEmail    ProviderType = "email"
)

// AuthUser is a normalized identity record produced by a provider.
//
// Provider and ProviderID together form the durable identity key; Email,
// Name and Avatar are display data and may change across sessions. Values
// are immutable once constructed - updates replace, never mutate.
type AuthUser struct {
	// ID is the user identifier. Uniqueness is only guaranteed within a
	// single provider's namespace.
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`

	// Avatar is a profile picture URL, when the provider supplied one.
	Avatar string `json:"avatar,omitempty"`

	Provider ProviderType `json:"provider"`

	// ProviderID is the identity within the provider's own namespace.
	ProviderID string `json:"providerId"`

	// Metadata carries opaque provider-specific data.
	Metadata map[string]any `json:"metadata,omitempty"`

	// ExpiresAt is an epoch-millisecond timestamp; zero means no expiry.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Expired reports whether the user's session expiry, if any, has passed.
func (u *AuthUser) Expired() bool {
	return u.ExpiresAt != 0 && time.Now().UnixMilli() > u.ExpiresAt
}

// sessionExpiry returns the simulated expiry stamped on freshly acquired
// identities: one hour from now, in epoch milliseconds.
func sessionExpiry() int64 {
	return time.Now().Add(time.Hour).UnixMilli()
}
