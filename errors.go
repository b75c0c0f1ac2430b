package authmaster

import "fmt"

// Error codes recorded on the store when an operation fails.
const (
	ErrCodePopupClosed     = "auth/popup-closed"
	ErrCodePopupBlocked    = "auth/popup-blocked"
	ErrCodeInvalidToken    = "auth/invalid-token"
	ErrCodeTokenExpired    = "auth/token-expired"
	ErrCodeNetworkError    = "auth/network-error"
	ErrCodeProviderError   = "auth/provider-error"
	ErrCodeUnknownError    = "auth/unknown-error"
	ErrCodeNotConfigured   = "auth/not-configured"
	ErrCodeAlreadySignedIn = "auth/already-signed-in"
)

// errorMessages are the canned messages returned by ErrorByCode.
var errorMessages = map[string]string{
	ErrCodePopupClosed:     "Sign-in popup was closed",
	ErrCodePopupBlocked:    "Sign-in popup was blocked by browser",
	ErrCodeInvalidToken:    "Invalid authentication token",
	ErrCodeTokenExpired:    "Authentication token has expired",
	ErrCodeNetworkError:    "Network error occurred",
	ErrCodeProviderError:   "Authentication provider error",
	ErrCodeUnknownError:    "An unknown error occurred",
	ErrCodeNotConfigured:   "Provider not configured",
	ErrCodeAlreadySignedIn: "Already signed in",
}

// AuthError is a failed authentication outcome. It is recorded on the
// store's state rather than raised through the call stack; provider
// operations additionally return it for callers that want the detail.
type AuthError struct {
	// Code is one of the ErrCode constants.
	Code    string `json:"code"`
	Message string `json:"message"`

	// Cause is the original failure, diagnostic only. Not serialized.
	Cause error `json:"-"`
}

// NewAuthError constructs an AuthError with an optional cause.
func NewAuthError(code, message string, cause error) *AuthError {
	return &AuthError{Code: code, Message: message, Cause: cause}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// ErrorByCode returns the canned AuthError for a known code. Unrecognized
// codes fall back to a generic unknown-error message.
func ErrorByCode(code string) *AuthError {
	msg, ok := errorMessages[code]
	if !ok {
		msg = errorMessages[ErrCodeUnknownError]
	}
	return &AuthError{Code: code, Message: msg}
}
