package authmaster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// SignInData carries email/password credentials for sign-in.
type SignInData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpData carries credentials and an optional display name for
// sign-up.
type SignUpData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// endpointResponse is the tolerated shape of a remote credential
// endpoint's success or failure body. Missing sub-fields get local
// fallbacks.
type endpointResponse struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
	User        *struct {
		ID     string `json:"id"`
		Email  string `json:"email"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	} `json:"user"`
}

// SignInWithEmail authenticates with email/password credentials. The
// first matching strategy wins: the configured custom validator, then the
// configured remote endpoint, then standalone mode, which accepts any
// credentials and synthesizes a local user. Failures are recorded on the
// store and returned; they never panic outward.
func SignInWithEmail(ctx context.Context, store *Store, data SignInData) (*AuthUser, error) {
	store.Logger().Info("initiating email sign-in", "email", data.Email)
	store.SetAuthenticating(true)

	if err := validateCredentials(data.Email, data.Password, 0); err != nil {
		return failEmail(store, err.Error(), err)
	}

	cfg := store.Config().Email

	if user, token, done, err := runCustomValidator(ctx, store, cfg, data.Email, data.Password); done {
		if err != nil {
			return failEmail(store, err.Error(), err)
		}
		store.SetUser(user, token)
		return user, nil
	} else if err != nil {
		return failEmail(store, err.Error(), err)
	}

	if cfg != nil && cfg.SignInURL != "" {
		resp, token, err := postCredentials(ctx, cfg, cfg.SignInURL, map[string]string{
			"email":    data.Email,
			"password": data.Password,
		}, "Invalid credentials")
		if err != nil {
			return failEmail(store, err.Error(), err)
		}
		user := normalizeEndpointUser(resp, data.Email, "", false)
		store.SetUser(user, token)
		return user, nil
	}

	// Standalone mode: accept the credentials and synthesize a local user.
	user := &AuthUser{
		ID:         GenerateID("email"),
		Email:      data.Email,
		Name:       emailLocalPart(data.Email),
		Provider:   ProviderEmail,
		ProviderID: data.Email,
		ExpiresAt:  sessionExpiry(),
	}
	store.SetUser(user, store.mintAccessToken(user))
	store.Logger().Info("email sign-in successful", "email", data.Email)
	return user, nil
}

// SignUpWithEmail registers with email/password credentials, using the
// same strategy order as SignInWithEmail. Sign-up additionally enforces
// the minimum password length before anything else runs.
func SignUpWithEmail(ctx context.Context, store *Store, data SignUpData) (*AuthUser, error) {
	store.Logger().Info("initiating email sign-up", "email", data.Email)
	store.SetAuthenticating(true)

	cfg := store.Config().Email

	if err := validateCredentials(data.Email, data.Password, cfg.minPasswordLength()); err != nil {
		return failEmail(store, err.Error(), err)
	}

	if user, token, done, err := runCustomValidator(ctx, store, cfg, data.Email, data.Password); done {
		if err != nil {
			return failEmail(store, err.Error(), err)
		}
		store.SetUser(user, token)
		return user, nil
	} else if err != nil {
		return failEmail(store, err.Error(), err)
	}

	if cfg != nil && cfg.SignUpURL != "" {
		body := map[string]string{
			"email":    data.Email,
			"password": data.Password,
		}
		if data.Name != "" {
			body["name"] = data.Name
		}
		resp, token, err := postCredentials(ctx, cfg, cfg.SignUpURL, body, "Sign up failed")
		if err != nil {
			return failEmail(store, err.Error(), err)
		}
		user := normalizeEndpointUser(resp, data.Email, data.Name, true)
		store.SetUser(user, token)
		return user, nil
	}

	name := data.Name
	if name == "" {
		name = emailLocalPart(data.Email)
	}
	user := &AuthUser{
		ID:         GenerateID("email"),
		Email:      data.Email,
		Name:       name,
		Provider:   ProviderEmail,
		ProviderID: data.Email,
		ExpiresAt:  sessionExpiry(),
	}
	store.SetUser(user, store.mintAccessToken(user))
	store.Logger().Info("email sign-up successful", "email", data.Email)
	return user, nil
}

// validateCredentials is the local gate that runs before any network call
// or custom validator. minPasswordLength of zero skips the length check
// (sign-in).
func validateCredentials(email, password string, minPasswordLength int) error {
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	if minPasswordLength > 0 && len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// runCustomValidator consults the configured validator, if any. done is
// true when the validator settled the attempt (either failing it or
// supplying both a user and a token); a success result without user and
// token falls through to the next strategy.
func runCustomValidator(ctx context.Context, store *Store, cfg *EmailConfig, email, password string) (user *AuthUser, token string, done bool, err error) {
	if cfg == nil || cfg.ValidateCredentials == nil {
		return nil, "", false, nil
	}

	result, err := cfg.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, "", true, err
	}
	if result == nil || !result.Success {
		msg := "Invalid credentials"
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		return nil, "", true, fmt.Errorf("%s", msg)
	}
	if result.User != nil && result.Token != "" {
		return result.User, result.Token, true, nil
	}

	store.Logger().Debug("custom validator passed without user, falling through")
	return nil, "", false, nil
}

// postCredentials issues the JSON POST to a remote credential endpoint
// and decodes the tolerated response shape. A non-2xx response fails with
// the server's message when present, else fallback.
func postCredentials(ctx context.Context, cfg *EmailConfig, endpoint string, body map[string]string, fallback string) (*endpointResponse, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cfg.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	var decoded endpointResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && decoded.Message != "" {
			return nil, "", fmt.Errorf("%s", decoded.Message)
		}
		return nil, "", fmt.Errorf("%s", fallback)
	}
	if decodeErr != nil {
		return nil, "", fmt.Errorf("%s: %w", fallback, decodeErr)
	}

	token := decoded.Token
	if token == "" {
		token = decoded.AccessToken
	}
	if token == "" {
		token = GenerateToken(string(ProviderEmail))
	}
	return &decoded, token, nil
}

// normalizeEndpointUser maps an endpoint response to an AuthUser,
// synthesizing an identifier when the server omitted one.
func normalizeEndpointUser(resp *endpointResponse, email, name string, signup bool) *AuthUser {
	id := resp.ID
	var respEmail, respName, respAvatar string
	if resp.User != nil {
		if resp.User.ID != "" {
			id = resp.User.ID
		}
		respEmail = resp.User.Email
		respName = resp.User.Name
		respAvatar = resp.User.Avatar
	}

	providerID := id
	if providerID == "" {
		providerID = email
	}
	if id == "" {
		id = GenerateID("email")
	}
	if respEmail == "" {
		respEmail = email
	}
	if respName == "" && signup {
		respName = name
	}

	user := &AuthUser{
		ID:         id,
		Email:      respEmail,
		Name:       respName,
		Provider:   ProviderEmail,
		ProviderID: providerID,
		ExpiresAt:  sessionExpiry(),
	}
	if !signup {
		user.Avatar = respAvatar
	}
	return user
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// failEmail records the failure on the store as a provider error and
// resolves the call with no user.
func failEmail(store *Store, message string, cause error) (*AuthUser, error) {
	authErr := store.CreateError(ErrCodeProviderError, message, cause)
	store.SetError(authErr)
	return nil, authErr
}
