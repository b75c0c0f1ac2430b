package authmaster

import (
	"context"
	"net/http"

	"github.com/yaghobieh/auth-master/logger"
)

// OAuthProviderConfig configures one federated popup provider.
type OAuthProviderConfig struct {
	// ClientID is the OAuth client/app identifier. A provider with an
	// empty ClientID is treated as not configured.
	ClientID string

	// RedirectURI overrides the default redirect target of
	// "<origin>/auth/callback".
	RedirectURI string

	// Scopes overrides the provider's default scope list.
	Scopes []string
}

// EmailAuthResult is the outcome of a custom credential validator.
type EmailAuthResult struct {
	Success bool
	User    *AuthUser
	Token   string

	// Error carries the failure message when Success is false.
	Error string
}

// ValidateFunc is a custom async credential check. It runs before any
// remote endpoint is consulted.
type ValidateFunc func(ctx context.Context, email, password string) (*EmailAuthResult, error)

// EmailConfig configures the email/password provider. The zero value is
// valid: with no validator and no endpoints the provider runs in
// standalone mode and accepts any credentials.
type EmailConfig struct {
	// SignInURL and SignUpURL are optional remote credential endpoints
	// receiving a JSON POST of {email, password[, name]}.
	SignInURL string
	SignUpURL string

	// ValidateCredentials takes priority over the endpoints when set.
	ValidateCredentials ValidateFunc

	// MinPasswordLength applies to sign-up; zero means 6.
	MinPasswordLength int

	// HTTPClient overrides the client used for endpoint calls.
	HTTPClient *http.Client
}

func (c *EmailConfig) minPasswordLength() int {
	if c != nil && c.MinPasswordLength > 0 {
		return c.MinPasswordLength
	}
	return 6
}

func (c *EmailConfig) httpClient() *http.Client {
	if c != nil && c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Config is the process-wide configuration supplied at construction. It
// is immutable for the store's lifetime.
type Config struct {
	Google   *OAuthProviderConfig
	Facebook *OAuthProviderConfig
	GitHub   *OAuthProviderConfig
	Email    *EmailConfig

	// StorageKeyPrefix is prepended to every persistence key. Empty by
	// default.
	StorageKeyPrefix string

	// DisablePersist turns off session persistence entirely, reads and
	// writes both.
	DisablePersist bool

	// LogLevel sets the logger's initial level when non-empty.
	LogLevel logger.Level

	// TokenSecret, when set, makes synthesized access tokens HS256-signed
	// JWTs instead of opaque random strings.
	TokenSecret string

	// Lifecycle callbacks, invoked synchronously at the corresponding
	// transitions.
	OnSuccess func(*AuthUser)
	OnError   func(*AuthError)
	OnLogout  func()
}
