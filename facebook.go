package authmaster

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/yaghobieh/auth-master/popup"
)

var facebookProvider = &federatedProvider{
	name:          ProviderFacebook,
	tag:           "FACEBOOK",
	failMessage:   "Facebook sign-in failed",
	defaultScopes: []string{"email", "public_profile"},
	endpoint:      facebook.Endpoint,
	selectConfig:  func(c Config) *OAuthProviderConfig { return c.Facebook },
	authOptions: func() (string, []oauth2.AuthCodeOption) {
		// Facebook carries an anti-replay state token on popup sign-ins.
		return uuid.NewString(), nil
	},
	normalize: func(payload map[string]any) *AuthUser {
		id := payloadString(payload, "id")
		return &AuthUser{
			ID:         id,
			Email:      payloadString(payload, "email"),
			Name:       payloadString(payload, "name"),
			Avatar:     facebookAvatar(payload),
			Provider:   ProviderFacebook,
			ProviderID: id,
			ExpiresAt:  sessionExpiry(),
		}
	},
}

// facebookAvatar digs the profile picture URL out of Facebook's nested
// picture.data.url payload shape.
func facebookAvatar(payload map[string]any) string {
	picture, _ := payload["picture"].(map[string]any)
	data, _ := picture["data"].(map[string]any)
	url, _ := data["url"].(string)
	return url
}

// SignInWithFacebook acquires a Facebook identity through the popup
// handshake and records it on the store. It returns nil, nil when the
// user closes the popup; every failure is recorded on the store and
// returned.
func SignInWithFacebook(ctx context.Context, store *Store, flow *popup.Flow) (*AuthUser, error) {
	return facebookProvider.signIn(ctx, store, flow)
}

// FacebookAuthURL builds the Facebook authorization URL without side
// effects, for manual or redirect-based flows.
func FacebookAuthURL(cfg *OAuthProviderConfig, origin string) string {
	return facebookProvider.authURL(cfg, origin, "")
}
