package authmaster_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	authmaster "github.com/yaghobieh/auth-master"
	"github.com/yaghobieh/auth-master/popup"
)

type stubPopup struct {
	mu     sync.Mutex
	closed bool
}

func (p *stubPopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *stubPopup) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// stubBrowser delivers the queued messages to any listener.
type stubBrowser struct {
	origin string
	queued []popup.AuthMessage

	mu        sync.Mutex
	openedURL string
	win       *stubPopup
}

func (b *stubBrowser) Origin() string { return b.origin }

func (b *stubBrowser) OpenPopup(url string, width, height int) (popup.Popup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openedURL = url
	if b.win == nil {
		b.win = &stubPopup{}
	}
	return b.win, nil
}

func (b *stubBrowser) Listen(ctx context.Context) <-chan popup.AuthMessage {
	ch := make(chan popup.AuthMessage, len(b.queued)+1)
	for _, m := range b.queued {
		ch <- m
	}
	return ch
}

func googleConfig() authmaster.Config {
	return authmaster.Config{
		Google: &authmaster.OAuthProviderConfig{ClientID: "google-client"},
	}
}

func successMessage(origin, tag string, user map[string]any) popup.AuthMessage {
	return popup.AuthMessage{Origin: origin, Type: tag + "_AUTH_SUCCESS", User: user}
}

func TestFederatedSignInNotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config authmaster.Config
	}{
		{"nil provider config", authmaster.Config{}},
		{"empty client id", authmaster.Config{Google: &authmaster.OAuthProviderConfig{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := authmaster.NewStore(tc.config, nil, quietLogger())
			flow := &popup.Flow{Browser: &stubBrowser{origin: "https://app"}}

			user, err := authmaster.SignInWithGoogle(context.Background(), s, flow)
			if user != nil {
				t.Fatal("got a user from an unconfigured provider")
			}
			var authErr *authmaster.AuthError
			if !errors.As(err, &authErr) || authErr.Code != authmaster.ErrCodeNotConfigured {
				t.Fatalf("err = %v, want not-configured", err)
			}
			if s.State().Error == nil {
				t.Error("failure not recorded on the store")
			}
		})
	}
}

func TestFederatedSignInSuccess(t *testing.T) {
	origin := "https://app.example.com"
	b := &stubBrowser{
		origin: origin,
		queued: []popup.AuthMessage{successMessage(origin, "GOOGLE", map[string]any{
			"id":      "g-123",
			"email":   "alice@example.com",
			"name":    "Alice",
			"picture": "https://img.example.com/alice.png",
		})},
	}
	s := authmaster.NewStore(googleConfig(), nil, quietLogger())
	flow := &popup.Flow{Browser: b}

	user, err := authmaster.SignInWithGoogle(context.Background(), s, flow)
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "g-123" || user.ProviderID != "g-123" {
		t.Errorf("identity = %q / %q", user.ID, user.ProviderID)
	}
	if user.Provider != authmaster.ProviderGoogle {
		t.Errorf("Provider = %q", user.Provider)
	}
	if user.Avatar != "https://img.example.com/alice.png" {
		t.Errorf("Avatar = %q", user.Avatar)
	}

	state := s.State()
	if !state.IsAuthenticated || state.AccessToken == "" {
		t.Errorf("state after sign-in: %+v", state)
	}
}

func TestFederatedSignInBlocked(t *testing.T) {
	s := authmaster.NewStore(googleConfig(), nil, quietLogger())
	flow := &popup.Flow{} // no browser capability

	user, err := authmaster.SignInWithGoogle(context.Background(), s, flow)
	if user != nil {
		t.Fatal("got a user with no browser")
	}
	var authErr *authmaster.AuthError
	if !errors.As(err, &authErr) || authErr.Code != authmaster.ErrCodeProviderError {
		t.Fatalf("err = %v, want provider error", err)
	}
	if !errors.Is(err, popup.ErrBlocked) {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestFederatedSignInCallbackError(t *testing.T) {
	origin := "https://app"
	b := &stubBrowser{
		origin: origin,
		queued: []popup.AuthMessage{{Origin: origin, Type: "GOOGLE_AUTH_ERROR", Error: "access_denied"}},
	}
	s := authmaster.NewStore(googleConfig(), nil, quietLogger())

	_, err := authmaster.SignInWithGoogle(context.Background(), s, &popup.Flow{Browser: b})
	var authErr *authmaster.AuthError
	if !errors.As(err, &authErr) || authErr.Code != authmaster.ErrCodeProviderError {
		t.Fatalf("err = %v, want provider error", err)
	}
	var cbErr *popup.CallbackError
	if !errors.As(err, &cbErr) || cbErr.Detail != "access_denied" {
		t.Errorf("callback detail not preserved: %v", err)
	}
}

func TestFederatedSignInPopupClosed(t *testing.T) {
	b := &stubBrowser{origin: "https://app", win: &stubPopup{closed: true}}
	s := authmaster.NewStore(googleConfig(), nil, quietLogger())
	flow := &popup.Flow{Browser: b, PollInterval: time.Millisecond}

	user, err := authmaster.SignInWithGoogle(context.Background(), s, flow)
	if user != nil || err != nil {
		t.Fatalf("closed popup: got %v, %v, want nil, nil", user, err)
	}
	if s.State().Error != nil {
		t.Error("silent cancellation recorded an error")
	}
}

func TestGitHubNumericIDNormalized(t *testing.T) {
	origin := "https://app"
	b := &stubBrowser{
		origin: origin,
		queued: []popup.AuthMessage{successMessage(origin, "GITHUB", map[string]any{
			"id":         float64(98765),
			"email":      "dev@example.com",
			"avatar_url": "https://avatars.example.com/98765",
		})},
	}
	s := authmaster.NewStore(authmaster.Config{
		GitHub: &authmaster.OAuthProviderConfig{ClientID: "gh-client"},
	}, nil, quietLogger())

	user, err := authmaster.SignInWithGitHub(context.Background(), s, &popup.Flow{Browser: b})
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "98765" {
		t.Errorf("ID = %q, want the stringified numeric id", user.ID)
	}
	if user.Avatar != "https://avatars.example.com/98765" {
		t.Errorf("Avatar = %q", user.Avatar)
	}
}

func TestFacebookNestedAvatar(t *testing.T) {
	origin := "https://app"
	b := &stubBrowser{
		origin: origin,
		queued: []popup.AuthMessage{successMessage(origin, "FACEBOOK", map[string]any{
			"id":   "fb-1",
			"name": "Alice",
			"picture": map[string]any{
				"data": map[string]any{"url": "https://fb.example.com/pic.jpg"},
			},
		})},
	}
	s := authmaster.NewStore(authmaster.Config{
		Facebook: &authmaster.OAuthProviderConfig{ClientID: "fb-client"},
	}, nil, quietLogger())

	user, err := authmaster.SignInWithFacebook(context.Background(), s, &popup.Flow{Browser: b})
	if err != nil {
		t.Fatal(err)
	}
	if user.Avatar != "https://fb.example.com/pic.jpg" {
		t.Errorf("Avatar = %q", user.Avatar)
	}
}

func mustParseQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	return u.Query()
}

func TestGoogleAuthURL(t *testing.T) {
	cfg := &authmaster.OAuthProviderConfig{ClientID: "google-client"}
	raw := authmaster.GoogleAuthURL(cfg, "https://app.example.com")

	if !strings.HasPrefix(raw, "https://accounts.google.com/") {
		t.Fatalf("unexpected endpoint: %s", raw)
	}
	q := mustParseQuery(t, raw)
	if q.Get("client_id") != "google-client" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/auth/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("access_type") != "offline" || q.Get("prompt") != "consent" {
		t.Errorf("offline access params missing: %v", q)
	}
	if scope := q.Get("scope"); !strings.Contains(scope, "email") {
		t.Errorf("scope = %q", scope)
	}
}

func TestAuthURLOverrides(t *testing.T) {
	cfg := &authmaster.OAuthProviderConfig{
		ClientID:    "google-client",
		RedirectURI: "https://other.example.com/done",
		Scopes:      []string{"custom.scope"},
	}
	q := mustParseQuery(t, authmaster.GoogleAuthURL(cfg, "https://app.example.com"))
	if q.Get("redirect_uri") != "https://other.example.com/done" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("scope") != "custom.scope" {
		t.Errorf("scope = %q", q.Get("scope"))
	}
}

func TestFacebookAuthURLCarriesNoState(t *testing.T) {
	cfg := &authmaster.OAuthProviderConfig{ClientID: "fb-client"}
	q := mustParseQuery(t, authmaster.FacebookAuthURL(cfg, "https://app.example.com"))
	if q.Has("state") && q.Get("state") != "" {
		t.Errorf("state = %q, want none", q.Get("state"))
	}
}

func TestGitHubAuthURL(t *testing.T) {
	cfg := &authmaster.OAuthProviderConfig{ClientID: "gh-client"}
	raw := authmaster.GitHubAuthURL(cfg, "https://app.example.com")
	if !strings.HasPrefix(raw, "https://github.com/login/oauth/authorize") {
		t.Fatalf("unexpected endpoint: %s", raw)
	}
	q := mustParseQuery(t, raw)
	if scope := q.Get("scope"); !strings.Contains(scope, "read:user") {
		t.Errorf("scope = %q", scope)
	}
}
