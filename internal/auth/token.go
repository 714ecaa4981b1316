// Package auth obtains and caches the OAuth2 access token used to
// authenticate against the listing syndication API.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
)

// AuthError indicates the client-credentials grant failed. The response
// body is carried for diagnostics.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token grant failed: %v", e.Err)
	}
	return fmt.Sprintf("token grant failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ITokenProvider supplies a valid bearer token for the syndication API.
type ITokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// tokenResponse is the expected structure from the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// tokenProvider implements ITokenProvider with a single-slot process-wide
// cache. Refreshes are serialized through a singleflight group so workers
// racing on an empty or expired cache issue one grant request between them.
type tokenProvider struct {
	cfg        *config.Config
	httpClient *http.Client
	group      singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time // test hook
}

// NewTokenProvider creates a new access token provider.
func NewTokenProvider(cfg *config.Config) ITokenProvider {
	return &tokenProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.ReaHTTPTimeout},
		now:        time.Now,
	}
}

// GetAccessToken returns the cached token when it is still inside its
// bounded lifetime, otherwise performs a client-credentials grant.
func (p *tokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.token != "" && p.now().Before(p.expiresAt) {
		token := p.token
		p.mu.Unlock()
		return token, nil
	}
	p.mu.Unlock()

	// Collapse concurrent refreshes into a single grant request.
	result, err, _ := p.group.Do("access_token", func() (interface{}, error) {
		// Another caller may have refreshed while we waited on the group.
		p.mu.Lock()
		if p.token != "" && p.now().Before(p.expiresAt) {
			token := p.token
			p.mu.Unlock()
			return token, nil
		}
		p.mu.Unlock()

		token, lifetime, err := p.fetchToken(ctx)
		if err != nil {
			return "", err
		}

		p.mu.Lock()
		p.token = token
		p.expiresAt = p.now().Add(lifetime)
		p.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// fetchToken performs the client-credentials grant against the configured
// token endpoint and returns the token with its bounded cache lifetime.
func (p *tokenProvider) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.cfg.ReaClientID)
	form.Set("client_secret", p.cfg.ReaClientSecret)
	form.Set("scope", p.cfg.ReaScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ReaTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, &AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, &AuthError{Err: fmt.Errorf("failed to contact token endpoint: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &AuthError{Err: fmt.Errorf("failed to read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, &AuthError{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("malformed token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return "", 0, &AuthError{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("token response contained no access_token")}
	}

	// Cache for a fraction of the stated lifetime so a token is never
	// used right at the boundary of its expiry.
	lifetime := p.cfg.TokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	lifetime = time.Duration(float64(lifetime) * p.cfg.TokenLifetimeRatio)

	return tr.AccessToken, lifetime, nil
}
