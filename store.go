package authmaster

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/yaghobieh/auth-master/logger"
	"github.com/yaghobieh/auth-master/storage"
)

// Persistence keys. Each is prefixed with Config.StorageKeyPrefix.
const (
	StorageKeyUser         = "forge_auth_user"
	StorageKeyAccessToken  = "forge_auth_access_token"
	StorageKeyRefreshToken = "forge_auth_refresh_token"
	StorageKeyExpiresAt    = "forge_auth_expires_at"
)

// Store is the single source of truth for the authentication session. It
// owns every legal state transition, persists the session through the
// injected Storage, and notifies subscribers synchronously after each
// change.
//
// Providers request mutation through the store's operations; nothing else
// writes session state.
type Store struct {
	mu        sync.Mutex
	state     Session
	config    Config
	storage   storage.Storage
	log       *logger.Logger
	listeners map[int]func()
	nextID    int
}

// NewStore constructs a store, restoring any previously persisted session
// unless persistence is disabled. st may be nil, which also disables
// persistence. A nil log gets a fresh logger at Config.LogLevel.
func NewStore(cfg Config, st storage.Storage, log *logger.Logger) *Store {
	if log == nil {
		log = logger.New()
	}
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}
	s := &Store{
		state:     initialSession(),
		config:    cfg,
		storage:   st,
		log:       log,
		listeners: make(map[int]func()),
	}
	if s.persistEnabled() {
		s.loadFromStorage()
	} else {
		s.mu.Lock()
		s.state.IsLoading = false
		s.mu.Unlock()
		s.notify()
	}
	log.Info("authmaster initialized")
	return s
}

func (s *Store) persistEnabled() bool {
	return !s.config.DisablePersist && s.storage != nil
}

// State returns a snapshot of the current session.
func (s *Store) State() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the configuration supplied at construction.
func (s *Store) Config() Config { return s.config }

// Logger returns the store's log sink.
func (s *Store) Logger() *logger.Logger { return s.log }

// Subscribe registers a listener invoked synchronously after every state
// change. The returned function unsubscribes it. No ordering is
// guaranteed between listeners.
func (s *Store) Subscribe(listener func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// SetAuthenticating marks a sign-in operation as in flight and clears any
// previous error.
func (s *Store) SetAuthenticating(inFlight bool) {
	s.mu.Lock()
	s.state.IsAuthenticating = inFlight
	s.state.Error = nil
	s.mu.Unlock()
	s.notify()
}

// SetUser records a successful sign-in: the session becomes authenticated
// with the given user and tokens, is persisted, and the configured
// success callback runs.
func (s *Store) SetUser(user *AuthUser, accessToken string, refreshToken ...string) {
	var refresh string
	if len(refreshToken) > 0 {
		refresh = refreshToken[0]
	}

	s.log.Info("user signed in", "email", user.Email, "provider", string(user.Provider))

	s.mu.Lock()
	s.state.User = user
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refresh
	s.state.IsAuthenticated = true
	s.state.IsAuthenticating = false
	s.state.Error = nil
	s.mu.Unlock()
	s.notify()

	s.saveToStorage(user, accessToken, refresh)

	if s.config.OnSuccess != nil {
		s.config.OnSuccess(user)
	}
}

// SetError records a failed authentication attempt. An existing signed-in
// user is untouched; the error overlays the current state.
func (s *Store) SetError(err *AuthError) {
	s.log.Error("auth error", "code", err.Code, "message", err.Message)

	s.mu.Lock()
	s.state.Error = err
	s.state.IsAuthenticating = false
	s.mu.Unlock()
	s.notify()

	if s.config.OnError != nil {
		s.config.OnError(err)
	}
}

// SignOut clears the session and its persisted form, then runs the
// configured logout callback.
func (s *Store) SignOut() {
	s.log.Info("signing out")

	s.clearStorage()

	s.mu.Lock()
	s.state.User = nil
	s.state.AccessToken = ""
	s.state.RefreshToken = ""
	s.state.IsAuthenticated = false
	s.state.Error = nil
	s.mu.Unlock()
	s.notify()

	if s.config.OnLogout != nil {
		s.config.OnLogout()
	}
}

// CreateError constructs an AuthError value. Pure; nothing is recorded.
func (s *Store) CreateError(code, message string, cause error) *AuthError {
	return NewAuthError(code, message, cause)
}

// ErrorByCode returns the canned error for a known code, with a generic
// unknown-error fallback.
func (s *Store) ErrorByCode(code string) *AuthError {
	return ErrorByCode(code)
}

// SetLogLevel adjusts the logger's emission threshold.
func (s *Store) SetLogLevel(l logger.Level) { s.log.SetLevel(l) }

// Logs returns the buffered log entries.
func (s *Store) Logs() []logger.Entry { return s.log.Entries() }

// ClearLogs drops the buffered log entries.
func (s *Store) ClearLogs() { s.log.Clear() }

func (s *Store) key(name string) string {
	return s.config.StorageKeyPrefix + name
}

// loadFromStorage restores a persisted session. Any read or decode
// failure is treated as "no prior session"; an expired session is wiped.
func (s *Store) loadFromStorage() {
	s.log.Debug("loading auth state from storage")

	finish := func(mutate func()) {
		s.mu.Lock()
		mutate()
		s.state.IsLoading = false
		s.mu.Unlock()
		s.notify()
	}

	userJSON, err := s.storage.Get(s.key(StorageKeyUser))
	if err != nil {
		s.log.Error("failed to load from storage", "err", err)
		finish(func() {})
		return
	}
	accessToken, err := s.storage.Get(s.key(StorageKeyAccessToken))
	if err != nil {
		s.log.Error("failed to load from storage", "err", err)
		finish(func() {})
		return
	}

	if userJSON == "" || accessToken == "" {
		finish(func() {})
		return
	}

	var user AuthUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		s.log.Error("failed to decode stored user", "err", err)
		finish(func() {})
		return
	}

	refreshToken, _ := s.storage.Get(s.key(StorageKeyRefreshToken))
	expiresAt, _ := s.storage.Get(s.key(StorageKeyExpiresAt))

	// The only automatic expiry check: a present, past expires_at wipes
	// the session. A missing or unparsable value keeps it.
	if expiresAt != "" {
		if ms, err := strconv.ParseInt(expiresAt, 10, 64); err == nil && time.Now().UnixMilli() > ms {
			s.log.Warn("token expired, clearing session")
			s.clearStorage()
			finish(func() {})
			return
		}
	}

	finish(func() {
		s.state.User = &user
		s.state.AccessToken = accessToken
		s.state.RefreshToken = refreshToken
		s.state.IsAuthenticated = true
	})

	s.log.Info("restored session", "email", user.Email, "provider", string(user.Provider))
}

// saveToStorage persists the signed-in session under the four keys. Write
// failures are logged and swallowed.
func (s *Store) saveToStorage(user *AuthUser, accessToken, refreshToken string) {
	if !s.persistEnabled() {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		s.log.Error("failed to serialize user", "err", err)
		return
	}
	if err := s.storage.Set(s.key(StorageKeyUser), string(data)); err != nil {
		s.log.Error("failed to save to storage", "err", err)
		return
	}
	if err := s.storage.Set(s.key(StorageKeyAccessToken), accessToken); err != nil {
		s.log.Error("failed to save to storage", "err", err)
	}
	if refreshToken != "" {
		if err := s.storage.Set(s.key(StorageKeyRefreshToken), refreshToken); err != nil {
			s.log.Error("failed to save to storage", "err", err)
		}
	}
	if user.ExpiresAt != 0 {
		if err := s.storage.Set(s.key(StorageKeyExpiresAt), strconv.FormatInt(user.ExpiresAt, 10)); err != nil {
			s.log.Error("failed to save to storage", "err", err)
		}
	}
}

func (s *Store) clearStorage() {
	if s.storage == nil {
		return
	}
	for _, name := range []string{StorageKeyUser, StorageKeyAccessToken, StorageKeyRefreshToken, StorageKeyExpiresAt} {
		if err := s.storage.Remove(s.key(name)); err != nil {
			s.log.Error("failed to clear storage", "key", name, "err", err)
		}
	}
}
