package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"dodo/internal/service"
)

// Auth talks to the identity endpoints of the hosted project.
type Auth struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// NewAuth creates an identity client. httpClient may be nil.
func NewAuth(baseURL, anonKey string, httpClient *http.Client) *Auth {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: APITimeout}
	}
	return &Auth{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    httpClient,
	}
}

// ErrConfirmationRequired is returned by SignUp when the account exists but
// the address must be confirmed before a session is issued.
var ErrConfirmationRequired = errors.New("email confirmation required")

type session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s session) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
	}
	switch {
	case s.ExpiresAt > 0:
		tok.Expiry = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(map[string]any{"user_id": s.User.ID, "email": s.User.Email})
}

// SignIn exchanges an email and password for a session token.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var s session
	body := map[string]string{"email": email, "password": password}
	if err := a.post(ctx, "/auth/v1/token?grant_type=password", body, &s); err != nil {
		return nil, err
	}
	return s.token(), nil
}

// SignUp registers an account. When the project requires confirmation the
// returned error is ErrConfirmationRequired and no token is issued.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var s session
	body := map[string]string{"email": email, "password": password}
	if err := a.post(ctx, "/auth/v1/signup", body, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, ErrConfirmationRequired
	}
	return s.token(), nil
}

// Refresh trades a refresh token for a new session token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var s session
	body := map[string]string{"refresh_token": refreshToken}
	if err := a.post(ctx, "/auth/v1/token?grant_type=refresh_token", body, &s); err != nil {
		return nil, err
	}
	return s.token(), nil
}

func (a *Auth) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// TokenSource returns a source that refreshes tok through the identity
// endpoint when it expires and hands every new token to save.
func (a *Auth) TokenSource(ctx context.Context, tok *oauth2.Token, save func(*oauth2.Token) error) oauth2.TokenSource {
	refresher := &refreshSource{ctx: ctx, auth: a, refreshToken: tok.RefreshToken}
	return &savingSource{
		src:  oauth2.ReuseTokenSource(tok, refresher),
		last: tok.AccessToken,
		save: save,
	}
}

type refreshSource struct {
	ctx  context.Context
	auth *Auth

	mu           sync.Mutex
	refreshToken string
}

func (r *refreshSource) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", service.ErrUnauthorized)
	}
	tok, err := r.auth.Refresh(r.ctx, r.refreshToken)
	if err != nil {
		return nil, err
	}
	// Refresh tokens are single use.
	r.refreshToken = tok.RefreshToken
	return tok, nil
}

type savingSource struct {
	src  oauth2.TokenSource
	save func(*oauth2.Token) error

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last && s.save != nil {
		if err := s.save(tok); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

func statusError(resp *http.Response) error {
	var apiErr struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)

	msg := firstNonEmpty(apiErr.Message, apiErr.Msg, apiErr.ErrorDescription, apiErr.Error, http.StatusText(resp.StatusCode))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", service.ErrUnauthorized, msg)
	case http.StatusBadRequest:
		if apiErr.Error == "invalid_grant" {
			return fmt.Errorf("%w: %s", service.ErrUnauthorized, msg)
		}
	}
	return fmt.Errorf("%s (HTTP %d)", msg, resp.StatusCode)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func wrapError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("request timed out")
	}
	return err
}
