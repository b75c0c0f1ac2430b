package observe

import authmaster "github.com/yaghobieh/auth-master"

// Derived read-only views over the current snapshot.

// User returns the signed-in user, nil when signed out.
func (b *Binding) User() *authmaster.AuthUser {
	return b.Snapshot().User
}

// IsAuthenticated reports whether a user is signed in.
func (b *Binding) IsAuthenticated() bool {
	return b.Snapshot().IsAuthenticated
}

// InFlight reports whether the store is busy: either the startup restore
// or a sign-in operation is in progress.
func (b *Binding) InFlight() bool {
	s := b.Snapshot()
	return s.IsLoading || s.IsAuthenticating
}

// Err returns the latest recorded authentication error, nil when none.
func (b *Binding) Err() *authmaster.AuthError {
	return b.Snapshot().Error
}
