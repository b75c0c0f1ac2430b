// Package popup models the host environment's popup-window and
// cross-window messaging primitives and runs the OAuth handshake race
// over them: the first of a success message, an error message, or the
// user closing the popup wins, and the losers are torn down.
package popup

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default popup geometry and the interval at which popup closure is polled.
const (
	DefaultWidth        = 500
	DefaultHeight       = 600
	DefaultPollInterval = 500 * time.Millisecond
)

// ErrBlocked is returned when the host refuses to open the popup.
var ErrBlocked = errors.New("sign-in popup was blocked")

// AuthMessage is a cross-window message delivered back from the popup.
// Success messages carry the provider's raw user payload; error messages
// carry a detail string.
type AuthMessage struct {
	// Origin of the sending window. Messages from any origin other than
	// the host page's own are ignored.
	Origin string

	// Type tags the message, e.g. "GOOGLE_AUTH_SUCCESS" or
	// "GOOGLE_AUTH_ERROR".
	Type string

	// User is the claimed identity payload of a success message.
	User map[string]any

	// Error is the detail carried by an error message.
	Error string
}

// Popup is an open popup window.
type Popup interface {
	// Closed reports whether the end user has closed the window.
	Closed() bool

	// Close closes the window. Closing an already closed popup is a no-op.
	Close()
}

// Browser is the host capability the federated providers drive. Listen
// registers a message listener that is deregistered when ctx is
// cancelled; each call gets its own channel.
type Browser interface {
	// Origin is the host page's origin, used both for the same-origin
	// message check and as the base of the default redirect target.
	Origin() string

	OpenPopup(url string, width, height int) (Popup, error)

	Listen(ctx context.Context) <-chan AuthMessage
}

// CallbackError is a failure reported by the popup through an error
// message.
type CallbackError struct {
	Detail string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("provider callback error: %s", e.Detail)
}

// Flow runs the popup handshake for one provider at a time.
type Flow struct {
	Browser Browser

	// Width and Height size the popup; zero means the defaults.
	Width, Height int

	// PollInterval is how often popup closure is checked; zero means
	// DefaultPollInterval.
	PollInterval time.Duration
}

// Origin returns the host origin, or "" when no browser is attached.
func (f *Flow) Origin() string {
	if f == nil || f.Browser == nil {
		return ""
	}
	return f.Browser.Origin()
}

// Run opens a popup at authURL and waits for the handshake addressed to
// provider (the message-type prefix, e.g. "GOOGLE"). Exactly one outcome
// is returned:
//
//   - success message: the claimed user payload and a nil error
//   - error message: a nil payload and a *CallbackError
//   - popup closed by the user: nil, nil - a silent cancellation
//
// On every exit path the message listener is deregistered and the
// closed-poll stopped; on success and error the popup is closed too.
func (f *Flow) Run(ctx context.Context, authURL, provider string) (map[string]any, error) {
	if f == nil || f.Browser == nil {
		return nil, fmt.Errorf("%w: no browser capability", ErrBlocked)
	}

	width, height := f.Width, f.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	win, err := f.Browser.OpenPopup(authURL, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlocked, err)
	}
	if win == nil {
		return nil, ErrBlocked
	}

	interval := f.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	// Cancelling listenCtx is what deregisters the message listener.
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	messages := f.Browser.Listen(listenCtx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	origin := f.Browser.Origin()
	successType := provider + "_AUTH_SUCCESS"
	errorType := provider + "_AUTH_ERROR"

	for {
		select {
		case <-ctx.Done():
			win.Close()
			return nil, ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				win.Close()
				return nil, errors.New("message channel closed")
			}
			if msg.Origin != origin {
				continue
			}
			switch msg.Type {
			case successType:
				win.Close()
				return msg.User, nil
			case errorType:
				win.Close()
				return nil, &CallbackError{Detail: msg.Error}
			}
			// Any other message shape is not ours; keep waiting.

		case <-ticker.C:
			if win.Closed() {
				return nil, nil
			}
		}
	}
}
