package authmaster

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yaghobieh/auth-master/popup"
)

var googleProvider = &federatedProvider{
	name:          ProviderGoogle,
	tag:           "GOOGLE",
	failMessage:   "Google sign-in failed",
	defaultScopes: []string{"openid", "email", "profile"},
	endpoint:      google.Endpoint,
	selectConfig:  func(c Config) *OAuthProviderConfig { return c.Google },
	authOptions: func() (string, []oauth2.AuthCodeOption) {
		return "", []oauth2.AuthCodeOption{
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"),
		}
	},
	normalize: func(payload map[string]any) *AuthUser {
		id := payloadString(payload, "id")
		return &AuthUser{
			ID:         id,
			Email:      payloadString(payload, "email"),
			Name:       payloadString(payload, "name"),
			Avatar:     payloadString(payload, "picture"),
			Provider:   ProviderGoogle,
			ProviderID: id,
			ExpiresAt:  sessionExpiry(),
		}
	},
}

// SignInWithGoogle acquires a Google identity through the popup handshake
// and records it on the store. It returns nil, nil when the user closes
// the popup; every failure is recorded on the store and returned.
func SignInWithGoogle(ctx context.Context, store *Store, flow *popup.Flow) (*AuthUser, error) {
	return googleProvider.signIn(ctx, store, flow)
}

// GoogleAuthURL builds the Google authorization URL without side effects,
// for manual or redirect-based flows.
func GoogleAuthURL(cfg *OAuthProviderConfig, origin string) string {
	return googleProvider.authURL(cfg, origin, "",
		oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}
