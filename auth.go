package authmaster

import (
	"context"

	"github.com/yaghobieh/auth-master/logger"
	"github.com/yaghobieh/auth-master/popup"
	"github.com/yaghobieh/auth-master/storage"
)

// Auth bundles a session store with the credential providers behind one
// surface. Construct it once per application session.
type Auth struct {
	store *Store
	flow  *popup.Flow
}

// Option injects host capabilities into New.
type Option func(*authOptions)

type authOptions struct {
	browser popup.Browser
	storage storage.Storage
	log     *logger.Logger
}

// WithBrowser supplies the popup/messaging capability the federated
// providers need. Without it, federated sign-ins fail as provider errors.
func WithBrowser(b popup.Browser) Option {
	return func(o *authOptions) { o.browser = b }
}

// WithStorage supplies the persistence backend. Without it, and with
// persistence enabled, an in-memory backend is used.
func WithStorage(st storage.Storage) Option {
	return func(o *authOptions) { o.storage = st }
}

// WithLogger supplies a log sink. Without it a fresh one is created at
// Config.LogLevel.
func WithLogger(l *logger.Logger) Option {
	return func(o *authOptions) { o.log = l }
}

// New constructs the Auth surface, restoring any persisted session.
func New(cfg Config, opts ...Option) *Auth {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.storage == nil && !cfg.DisablePersist {
		o.storage = storage.NewMemory()
	}
	return &Auth{
		store: NewStore(cfg, o.storage, o.log),
		flow:  &popup.Flow{Browser: o.browser},
	}
}

// Store exposes the underlying session store.
func (a *Auth) Store() *Store { return a.store }

// State returns a snapshot of the current session.
func (a *Auth) State() Session { return a.store.State() }

// User returns the signed-in user, nil when signed out.
func (a *Auth) User() *AuthUser { return a.store.State().User }

// Subscribe registers a listener invoked after every state change and
// returns its unsubscribe function.
func (a *Auth) Subscribe(listener func()) func() { return a.store.Subscribe(listener) }

// SignInWithGoogle runs the Google popup handshake.
func (a *Auth) SignInWithGoogle(ctx context.Context) (*AuthUser, error) {
	return SignInWithGoogle(ctx, a.store, a.flow)
}

// SignInWithFacebook runs the Facebook popup handshake.
func (a *Auth) SignInWithFacebook(ctx context.Context) (*AuthUser, error) {
	return SignInWithFacebook(ctx, a.store, a.flow)
}

// SignInWithGitHub runs the GitHub popup handshake.
func (a *Auth) SignInWithGitHub(ctx context.Context) (*AuthUser, error) {
	return SignInWithGitHub(ctx, a.store, a.flow)
}

// SignInWithEmail authenticates with email/password credentials.
func (a *Auth) SignInWithEmail(ctx context.Context, data SignInData) (*AuthUser, error) {
	return SignInWithEmail(ctx, a.store, data)
}

// SignUpWithEmail registers with email/password credentials.
func (a *Auth) SignUpWithEmail(ctx context.Context, data SignUpData) (*AuthUser, error) {
	return SignUpWithEmail(ctx, a.store, data)
}

// SignOut clears the session and its persisted form.
func (a *Auth) SignOut() { a.store.SignOut() }

// RefreshAuthToken is a stub: no refresh flow is implemented and it
// always reports failure without touching state.
func (a *Auth) RefreshAuthToken(ctx context.Context) (bool, error) {
	a.store.Logger().Debug("token refresh requested, not implemented")
	return false, nil
}
