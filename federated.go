package authmaster

import (
	"context"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/yaghobieh/auth-master/popup"
)

// federatedProvider is the shared shape of the three popup-based OAuth
// providers. Each instance supplies its endpoint, scopes, message tag and
// payload normalization; the handshake itself is identical.
type federatedProvider struct {
	name          ProviderType
	tag           string // message-type prefix, e.g. "GOOGLE"
	failMessage   string
	defaultScopes []string
	endpoint      oauth2.Endpoint

	// selectConfig picks this provider's sub-config out of Config.
	selectConfig func(Config) *OAuthProviderConfig

	// authOptions returns the provider-specific state and URL parameters
	// for a popup sign-in. The state return is empty where the provider
	// carries no anti-replay token.
	authOptions func() (state string, opts []oauth2.AuthCodeOption)

	// normalize maps the claimed message payload to an AuthUser.
	normalize func(payload map[string]any) *AuthUser
}

// oauthConfig builds the x/oauth2 configuration for a provider, applying
// the default redirect target and scope list where the sub-config leaves
// them unset.
func (p *federatedProvider) oauthConfig(cfg *OAuthProviderConfig, origin string) *oauth2.Config {
	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = origin + "/auth/callback"
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = p.defaultScopes
	}
	return &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: redirect,
		Scopes:      scopes,
		Endpoint:    p.endpoint,
	}
}

// authURL builds the authorization URL without side effects.
func (p *federatedProvider) authURL(cfg *OAuthProviderConfig, origin, state string, opts ...oauth2.AuthCodeOption) string {
	return p.oauthConfig(cfg, origin).AuthCodeURL(state, opts...)
}

// signIn runs the full popup handshake and records the outcome on the
// store. All failures are recorded as AuthError values; a popup closed by
// the user resolves to nil, nil.
func (p *federatedProvider) signIn(ctx context.Context, store *Store, flow *popup.Flow) (*AuthUser, error) {
	cfg := p.selectConfig(store.Config())
	if cfg == nil || cfg.ClientID == "" {
		err := store.ErrorByCode(ErrCodeNotConfigured)
		store.SetError(err)
		return nil, err
	}

	store.Logger().Info("initiating sign-in", "provider", string(p.name))
	store.SetAuthenticating(true)

	state, opts := p.authOptions()
	authURL := p.authURL(cfg, flow.Origin(), state, opts...)
	store.Logger().Debug("opening oauth popup", "provider", string(p.name), "url", authURL)

	payload, err := flow.Run(ctx, authURL, p.tag)
	if err != nil {
		authErr := store.CreateError(ErrCodeProviderError, p.failMessage, err)
		store.SetError(authErr)
		return nil, authErr
	}
	if payload == nil {
		// Silent cancellation: the user closed the popup.
		store.Logger().Debug("popup closed", "provider", string(p.name))
		return nil, nil
	}

	user := p.normalize(payload)
	store.Logger().Info("sign-in successful", "provider", string(p.name), "email", user.Email)
	store.SetUser(user, store.mintAccessToken(user))
	return user, nil
}

// payloadString extracts a string field from a claimed payload. JSON
// numbers are stringified; GitHub reports numeric user ids.
func payloadString(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
