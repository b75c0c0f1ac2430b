// Package authmaster is a client-side authentication session manager.
//
// It tracks a user's signed-in/signed-out state, mediates multiple
// credential-acquisition methods (popup-based OAuth with Google, Facebook
// and GitHub, plus direct email/password login), persists the resulting
// session across restarts, and notifies observers whenever state changes.
//
// # Architecture
//
// Store: the single source of truth for the current Session. All state
// transitions go through the store's operations; nothing else mutates
// session state. The store persists the session through a pluggable
// key-value Storage and invokes registered listeners synchronously after
// every change.
//
// Providers: each sign-in operation acquires a normalized AuthUser plus an
// access token and hands both to the store. The federated providers drive
// a popup-window handshake through the popup package's Browser capability;
// the email provider validates credentials locally, against a custom
// validator, or against a remote endpoint.
//
// Observation: the observe package wraps a store in a snapshot/subscribe
// binding with derived read-only views, suitable for any rendering or
// propagation layer.
//
// # Basic Usage
//
// Construct an Auth facade with a configuration and the host capabilities:
//
//	st, _ := fs.New(filepath.Join(dir, "session.json"))
//	auth := authmaster.New(authmaster.Config{
//	    Google: &authmaster.OAuthProviderConfig{ClientID: "..."},
//	    Email:  &authmaster.EmailConfig{},
//	}, authmaster.WithStorage(st), authmaster.WithBrowser(browser))
//
//	user, err := auth.SignInWithEmail(ctx, authmaster.SignInData{
//	    Email:    "a@b.co",
//	    Password: "secret1",
//	})
//
// A previously persisted session is restored during construction; an
// expired one is wiped and the store starts signed out.
//
// # Failure Semantics
//
// Provider failures never escape as panics and are always recorded on the
// store as an *AuthError in addition to being returned. Storage failures
// are logged and swallowed; a broken storage backend degrades the library
// to an in-memory session, nothing more.
//
// # Security
//
// The OAuth flows here collect an identity assertion over a trusted
// same-origin message channel; no authorization-code exchange or token
// validation is performed. Synthesized tokens are demo-grade session
// handles, optionally HS256-signed when Config.TokenSecret is set.
package authmaster
