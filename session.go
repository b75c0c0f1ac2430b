package authmaster

// Session is the store's authentication state. State() returns it by
// value; snapshots are never mutated after the fact.
type Session struct {
	// User is the signed-in identity, nil when signed out.
	User *AuthUser

	// IsLoading is true only during the one-time startup restore.
	IsLoading bool

	// IsAuthenticating is true while a sign-in operation is in flight.
	IsAuthenticating bool

	// IsAuthenticated is true iff User is present.
	IsAuthenticated bool

	// Error is the latest recorded failure. It is cleared by the next
	// SetAuthenticating(true) or successful sign-in, never by time.
	Error *AuthError

	AccessToken  string
	RefreshToken string
}

func initialSession() Session {
	return Session{IsLoading: true}
}
