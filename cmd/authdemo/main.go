// Command authdemo runs a small host application around the authmaster
// library: it serves the OAuth popup-callback route, exposes a remote
// credential endpoint backed by a bcrypt-hashed demo account, and wires
// an in-process message hub as the popup Browser capability so completed
// handshakes flow back into the session store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	authmaster "github.com/yaghobieh/auth-master"
	"github.com/yaghobieh/auth-master/logger"
	"github.com/yaghobieh/auth-master/popup"
	"github.com/yaghobieh/auth-master/storage/fs"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "demo-secret"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dataPath := flag.String("data", "", "session file path (defaults under the user config dir)")
	flag.Parse()

	if err := run(*addr, *dataPath); err != nil {
		log.Fatal(err)
	}
}

func run(addr, dataPath string) error {
	store, err := fs.New(dataPath)
	if err != nil {
		return fmt.Errorf("opening session storage: %w", err)
	}

	lg := logger.New(logger.WithLevel(logger.LevelDebug))
	origin := "http://localhost" + addr
	hub := newMessageHub(origin)

	auth := authmaster.New(authmaster.Config{
		Google:   providerFromEnv("OAUTH2_GOOGLE_CLIENT_ID"),
		Facebook: providerFromEnv("OAUTH2_FACEBOOK_CLIENT_ID"),
		GitHub:   providerFromEnv("OAUTH2_GITHUB_CLIENT_ID"),
		Email:    &authmaster.EmailConfig{SignInURL: origin + "/api/signin"},
		OnSuccess: func(u *authmaster.AuthUser) {
			lg.Info("signed in", "email", u.Email, "provider", string(u.Provider))
		},
		OnLogout: func() { lg.Info("signed out") },
	},
		authmaster.WithStorage(store),
		authmaster.WithLogger(lg),
		authmaster.WithBrowser(hub),
	)

	demoHash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/callback", handleCallback).Methods(http.MethodGet)
	r.HandleFunc("/auth/complete", hub.handleComplete).Methods(http.MethodPost)
	r.HandleFunc("/api/signin", handleSignin(demoHash)).Methods(http.MethodPost)
	r.HandleFunc("/api/session", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, auth.State())
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/signout", func(w http.ResponseWriter, _ *http.Request) {
		auth.SignOut()
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}).Methods(http.MethodPost)

	lg.Info("authdemo listening", "addr", addr)
	lg.Info("demo account", "email", demoEmail, "password", demoPassword)
	return http.ListenAndServe(addr, r)
}

func providerFromEnv(envVar string) *authmaster.OAuthProviderConfig {
	clientID := os.Getenv(envVar)
	if clientID == "" {
		return nil
	}
	return &authmaster.OAuthProviderConfig{ClientID: clientID}
}

// handleCallback renders the handback page an OAuth redirect lands on.
// In a real deployment this page verifies the redirect and posts the
// result to its opener; here it forwards the query parameters to
// /auth/complete.
func handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Signing in...</title></head>
<body>
<p>Completing sign-in; you can close this window.</p>
<script>
  fetch('/auth/complete', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(Object.fromEntries(new URLSearchParams(location.search))),
  });
</script>
</body>
</html>`)
}

// handleSignin is the remote credential endpoint the email provider
// posts to, guarded by the bcrypt-hashed demo account.
func handleSignin(demoHash []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
			return
		}
		if creds.Email != demoEmail || bcrypt.CompareHashAndPassword(demoHash, []byte(creds.Password)) != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]any{
				"id":    "demo-1",
				"email": demoEmail,
				"name":  "Demo User",
			},
			"token": authmaster.GenerateToken("email"),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// messageHub is the in-process Browser capability: popups are surfaced as
// log lines carrying the authorization URL, and completed handshakes are
// fanned out to the active listeners.
type messageHub struct {
	origin string

	mu        sync.Mutex
	listeners map[chan popup.AuthMessage]struct{}
}

func newMessageHub(origin string) *messageHub {
	return &messageHub{
		origin:    origin,
		listeners: make(map[chan popup.AuthMessage]struct{}),
	}
}

func (h *messageHub) Origin() string { return h.origin }

func (h *messageHub) OpenPopup(url string, width, height int) (popup.Popup, error) {
	log.Printf("open this URL to continue sign-in (%dx%d): %s", width, height, url)
	return &hubPopup{}, nil
}

func (h *messageHub) Listen(ctx context.Context) <-chan popup.AuthMessage {
	ch := make(chan popup.AuthMessage, 4)
	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.listeners, ch)
		h.mu.Unlock()
	}()

	return ch
}

func (h *messageHub) broadcast(msg popup.AuthMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.listeners {
		select {
		case ch <- msg:
		default:
		}
	}
}

// handleComplete receives the forwarded callback parameters and replays
// them as a same-origin auth message.
func (h *messageHub) handleComplete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type  string         `json:"type"`
		Error string         `json:"error"`
		User  map[string]any `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	h.broadcast(popup.AuthMessage{
		Origin: h.origin,
		Type:   body.Type,
		User:   body.User,
		Error:  body.Error,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type hubPopup struct {
	mu     sync.Mutex
	closed bool
}

func (p *hubPopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *hubPopup) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
