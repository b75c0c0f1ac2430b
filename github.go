package authmaster

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/yaghobieh/auth-master/popup"
)

var githubProvider = &federatedProvider{
	name:          ProviderGitHub,
	tag:           "GITHUB",
	failMessage:   "GitHub sign-in failed",
	defaultScopes: []string{"read:user", "user:email"},
	endpoint:      github.Endpoint,
	selectConfig:  func(c Config) *OAuthProviderConfig { return c.GitHub },
	authOptions: func() (string, []oauth2.AuthCodeOption) {
		return "", nil
	},
	normalize: func(payload map[string]any) *AuthUser {
		id := payloadString(payload, "id")
		return &AuthUser{
			ID:         id,
			Email:      payloadString(payload, "email"),
			Name:       payloadString(payload, "name"),
			Avatar:     payloadString(payload, "avatar_url"),
			Provider:   ProviderGitHub,
			ProviderID: id,
			ExpiresAt:  sessionExpiry(),
		}
	},
}

// SignInWithGitHub acquires a GitHub identity through the popup handshake
// and records it on the store. It returns nil, nil when the user closes
// the popup; every failure is recorded on the store and returned.
func SignInWithGitHub(ctx context.Context, store *Store, flow *popup.Flow) (*AuthUser, error) {
	return githubProvider.signIn(ctx, store, flow)
}

// GitHubAuthURL builds the GitHub authorization URL without side effects,
// for manual or redirect-based flows.
func GitHubAuthURL(cfg *OAuthProviderConfig, origin string) string {
	return githubProvider.authURL(cfg, origin, "")
}
