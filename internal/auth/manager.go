package auth

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixradio/internal/api"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// TokenStore persists a [TokenState] between runs.
//
// Load returns (nil, nil) when nothing has been stored.
type TokenStore interface {
	Load(ctx context.Context) (*TokenState, error)
	Save(ctx context.Context, token *TokenState) error
	Clear(ctx context.Context) error
}

// Manager owns the user token and hands out bearer values to secured commands.
//
// Token state is only ever exposed as copies.
type Manager struct {
	pipeline     *api.Pipeline
	store        TokenStore
	logger       *log.Logger
	clientSecret string
	redirectURL  string
	scopes       []string
	onTerritory  func(countryCode string)

	mu    sync.RWMutex
	token *TokenState
	group singleflight.Group
}

var _ api.Authorizer = (*Manager)(nil)

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithClientSecret sets the secret used when secured commands refresh transparently.
func WithClientSecret(secret string) ManagerOption {
	return func(m *Manager) { m.clientSecret = secret }
}

// WithRedirectURL sets the OAuth redirect URI sent with the authorize and code requests.
func WithRedirectURL(u string) ManagerOption {
	return func(m *Manager) { m.redirectURL = u }
}

// WithScopes sets the scopes requested by [Manager.AuthorizeURL].
func WithScopes(scopes ...string) ManagerOption {
	return func(m *Manager) { m.scopes = scopes }
}

// WithStore persists tokens through s.
func WithStore(s TokenStore) ManagerOption {
	return func(m *Manager) { m.store = s }
}

// WithManagerLogger sets the logger.
func WithManagerLogger(l *log.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// OnTerritory registers a hook called when a token pins the user to a territory.
func OnTerritory(fn func(countryCode string)) ManagerOption {
	return func(m *Manager) { m.onTerritory = fn }
}

// NewManager creates a manager that runs token commands through p.
func NewManager(p *api.Pipeline, opts ...ManagerOption) *Manager {
	m := &Manager{pipeline: p, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads a previously persisted token from the store, if any.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	tok, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}

	m.mu.Lock()
	m.token = tok.clone()
	m.mu.Unlock()

	m.applyTerritory(tok)
	m.logger.Debug("restored user token", "user_id", tok.UserID, "active", m.IsActive())
	return nil
}

// Acquire exchanges an authorization code for a token. An active token is returned unchanged.
func (m *Manager) Acquire(ctx context.Context, clientSecret, code string) (*TokenState, error) {
	if tok, ok := m.active(); ok {
		return tok, nil
	}
	if strings.TrimSpace(code) == "" {
		return nil, api.ArgumentError("authorization code is required")
	}

	tok, err := m.requestToken(ctx, clientSecret, authorizationCodeGrant(code, m.redirectURL), nil)
	if err != nil {
		return nil, err
	}
	m.logger.Info("acquired user token", "user_id", tok.UserID)
	return tok, nil
}

// Refresh renews an expired token with its refresh token. An active token is returned unchanged.
//
// Concurrent callers share one network call and receive the same result. The shared call is
// detached from any single caller's cancellation and bounded by [api.DefaultTimeout]; a caller
// whose ctx ends stops waiting without failing the others.
func (m *Manager) Refresh(ctx context.Context, clientSecret string) (*TokenState, error) {
	if tok, ok := m.active(); ok {
		return tok, nil
	}

	ch := m.group.DoChan("refresh", func() (any, error) {
		if tok, ok := m.active(); ok {
			return tok, nil
		}

		m.mu.RLock()
		current := m.token.clone()
		m.mu.RUnlock()

		if current == nil {
			return nil, api.ErrUserAuthRequired
		}
		if current.RefreshToken == "" {
			return nil, api.NewError(api.ErrUserAuthRequired, 0, errors.New("token has no refresh value"))
		}

		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), api.DefaultTimeout)
		defer cancel()

		tok, err := m.requestToken(shared, clientSecret, refreshGrant(current.RefreshToken), current)
		if err != nil {
			m.logger.Warn("token refresh failed", "error", err)
			return nil, err
		}
		m.logger.Info("refreshed user token", "user_id", tok.UserID)
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*TokenState).clone(), nil
	}
}

// SignOut forgets the token and clears the store.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()

	m.logger.Info("signed out")
	if m.store != nil {
		return m.store.Clear(ctx)
	}
	return nil
}

// IsAuthenticated reports whether a token with an access value is held, expired or not.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != nil && m.token.AccessToken != ""
}

// IsActive reports whether the held token is unexpired by the server clock.
func (m *Manager) IsActive() bool {
	_, ok := m.active()
	return ok
}

// Token returns a copy of the held token, or nil.
func (m *Manager) Token() *TokenState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token.clone()
}

// UserID returns the id of the signed in user, or "".
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return ""
	}
	return m.token.UserID
}

// Authorize implements [api.Authorizer], refreshing an expired token first.
func (m *Manager) Authorize(ctx context.Context) (string, error) {
	tok, err := m.Refresh(ctx, m.clientSecret)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// AuthorizeURL is the page a user visits to grant access; state is echoed to the redirect.
func (m *Manager) AuthorizeURL(state string) string {
	return m.oauthConfig().AuthCodeURL(state)
}

func (m *Manager) oauthConfig() *oauth2.Config {
	settings := m.pipeline.Settings()
	base := settings.BaseURL(true) + api.APIVersion
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: m.clientSecret,
		RedirectURL:  m.redirectURL,
		Scopes:       m.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + authorizePath,
			TokenURL:  base + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// TokenSource adapts the manager to [oauth2.TokenSource]; each Token call refreshes on demand.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, m: m}
}

type tokenSource struct {
	ctx context.Context
	m   *Manager
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.m.Refresh(s.ctx, s.m.clientSecret)
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}

func (m *Manager) active() (*TokenState, bool) {
	now := m.pipeline.Dispatcher().ServerTimeUTC()
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token.ActiveAt(now) {
		return m.token.clone(), true
	}
	return nil, false
}

// requestToken runs the token command, then stores and persists the result.
func (m *Manager) requestToken(ctx context.Context, clientSecret string, grant url.Values, previous *TokenState) (*TokenState, error) {
	cmd := newTokenCommand(m.pipeline.Settings().ClientID, clientSecret, grant)
	resp, err := api.Execute(ctx, m.pipeline, cmd)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	tok := resp.Result.state(m.pipeline.Dispatcher().ServerTimeUTC(), previous)

	m.mu.Lock()
	m.token = tok.clone()
	m.mu.Unlock()

	m.applyTerritory(tok)

	if m.store != nil {
		if err := m.store.Save(ctx, tok); err != nil {
			m.logger.Warn("failed to persist user token", "error", err)
		}
	}
	return tok, nil
}

func (m *Manager) applyTerritory(tok *TokenState) {
	if tok.Territory == "" || m.onTerritory == nil {
		return
	}
	if !api.ValidCountryCode(tok.Territory) {
		m.logger.Warn("ignoring invalid token territory", "territory", tok.Territory)
		return
	}
	m.onTerritory(strings.ToLower(tok.Territory))
}
