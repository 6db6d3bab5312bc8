package auth

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/desertthunder/mixradio/internal/api"
	"golang.org/x/oauth2"
)

const (
	tokenPath       = "token/"
	authorizePath   = "authorize/"
	formContentType = "application/x-www-form-urlencoded"

	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"
)

// TokenState is a user token as persisted by a [TokenStore].
type TokenState struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Territory    string    `json:"territory,omitempty"`
}

// ActiveAt reports whether the token has an access value and is unexpired at now.
func (t *TokenState) ActiveAt(now time.Time) bool {
	return t != nil && t.AccessToken != "" && t.ExpiresAt.After(now)
}

// OAuth2 converts to an [oauth2.Token]; user_id and territory travel as extras.
func (t *TokenState) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
	return tok.WithExtra(map[string]any{"user_id": t.UserID, "territory": t.Territory})
}

func (t *TokenState) clone() *TokenState {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// tokenResponse is the token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       string `json:"user_id"`
	Territory    string `json:"territory"`
}

func convertToken(raw json.RawMessage) (tokenResponse, bool) {
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil || tr.AccessToken == "" {
		return tokenResponse{}, false
	}
	return tr, true
}

func (tr tokenResponse) state(issuedAt time.Time, previous *TokenState) *TokenState {
	st := &TokenState{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    issuedAt.Add(time.Duration(tr.ExpiresIn) * time.Second),
		UserID:       tr.UserID,
		Territory:    tr.Territory,
	}
	// refresh responses may omit values that did not change
	if previous != nil {
		if st.RefreshToken == "" {
			st.RefreshToken = previous.RefreshToken
		}
		if st.UserID == "" {
			st.UserID = previous.UserID
		}
		if st.Territory == "" {
			st.Territory = previous.Territory
		}
	}
	return st
}

// newTokenCommand builds the POST to the token endpoint. The form carries the grant so the
// query string stays empty.
func newTokenCommand(clientID, clientSecret string, grant url.Values) *api.ItemCommand[tokenResponse] {
	return &api.ItemCommand[tokenResponse]{
		Desc: api.Descriptor{
			Method:                   "POST",
			SecureBaseURL:            true,
			RequiresEmptyQuerystring: true,
			ContentType:              formContentType,
		},
		Path: api.StaticPath(tokenPath),
		Body: func() ([]byte, error) {
			if clientSecret == "" {
				return nil, api.ArgumentError("client secret is required for token requests")
			}
			form := url.Values{}
			form.Set("client_id", clientID)
			form.Set("client_secret", clientSecret)
			for k, v := range grant {
				form[k] = v
			}
			return []byte(form.Encode()), nil
		},
		Convert: convertToken,
	}
}

func authorizationCodeGrant(code, redirectURL string) url.Values {
	v := url.Values{}
	v.Set("grant_type", grantAuthorizationCode)
	v.Set("code", code)
	if redirectURL != "" {
		v.Set("redirect_uri", redirectURL)
	}
	return v
}

func refreshGrant(refreshToken string) url.Values {
	v := url.Values{}
	v.Set("grant_type", grantRefreshToken)
	v.Set("refresh_token", refreshToken)
	return v
}
