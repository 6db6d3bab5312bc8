package api

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

const (
	// DefaultAPIBaseURL is the plain catalog endpoint.
	DefaultAPIBaseURL = "http://api.mixrad.io/"
	// DefaultSecureAPIBaseURL serves user-scoped and token endpoints.
	DefaultSecureAPIBaseURL = "https://sapi.mixrad.io/"
	// APIVersion is inserted between the base URL and the territory.
	APIVersion = "1.x/"
)

// ClientSettings holds the values every command needs to build its URI.
//
// Settings are a value: a territory change produces a new ClientSettings rather than mutating a
// shared one, so concurrent commands always see a consistent snapshot.
type ClientSettings struct {
	ClientID            string
	CountryCode         string
	CountryCodeInferred bool
	Language            string
	APIBaseURL          string
	SecureAPIBaseURL    string
}

// SettingsOption configures [NewClientSettings].
type SettingsOption func(*ClientSettings)

// WithLanguage sets the `lang` parameter sent on every request.
func WithLanguage(lang string) SettingsOption {
	return func(s *ClientSettings) { s.Language = strings.TrimSpace(lang) }
}

// WithBaseURLs overrides the plain and secure base URLs. Empty values keep the defaults.
func WithBaseURLs(apiBaseURL, secureAPIBaseURL string) SettingsOption {
	return func(s *ClientSettings) {
		if apiBaseURL != "" {
			s.APIBaseURL = withTrailingSlash(apiBaseURL)
		}
		if secureAPIBaseURL != "" {
			s.SecureAPIBaseURL = withTrailingSlash(secureAPIBaseURL)
		}
	}
}

// WithInferredCountryCode fills an empty country code from the process locale.
func WithInferredCountryCode() SettingsOption {
	return func(s *ClientSettings) {
		if s.CountryCode != "" {
			return
		}
		if cc := InferCountryCode(); cc != "" {
			s.CountryCode = cc
			s.CountryCodeInferred = true
		}
	}
}

// NewClientSettings validates and normalises the client configuration.
//
// The country code is optional; when present it must have exactly two letters and is lower-cased.
func NewClientSettings(clientID, countryCode string, opts ...SettingsOption) (ClientSettings, error) {
	s := ClientSettings{
		ClientID:         strings.TrimSpace(clientID),
		CountryCode:      strings.ToLower(strings.TrimSpace(countryCode)),
		APIBaseURL:       DefaultAPIBaseURL,
		SecureAPIBaseURL: DefaultSecureAPIBaseURL,
	}
	if s.ClientID == "" {
		return ClientSettings{}, ErrCredentialsRequired
	}
	if s.CountryCode != "" && !ValidCountryCode(s.CountryCode) {
		return ClientSettings{}, ErrInvalidCountryCode
	}

	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

// WithTerritory returns a copy of s pinned to an explicit territory.
func (s ClientSettings) WithTerritory(countryCode string) ClientSettings {
	cc := strings.ToLower(strings.TrimSpace(countryCode))
	if !ValidCountryCode(cc) {
		return s
	}
	s.CountryCode = cc
	s.CountryCodeInferred = false
	return s
}

// BaseURL selects the secure or plain base URL.
func (s ClientSettings) BaseURL(secured bool) string {
	if secured {
		return s.SecureAPIBaseURL
	}
	return s.APIBaseURL
}

// ValidCountryCode reports whether cc is a two letter code.
func ValidCountryCode(cc string) bool {
	if len(cc) != 2 {
		return false
	}
	for _, r := range cc {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

var lookupEnv = os.Getenv

// InferCountryCode derives a territory from LC_ALL, LC_MESSAGES or LANG ("en_GB.UTF-8" → "gb").
func InferCountryCode() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if cc := countryFromLocale(lookupEnv(key)); cc != "" {
			return cc
		}
	}
	return ""
}

func countryFromLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}

	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return ""
	}
	region, confidence := tag.Region()
	if confidence != language.Exact || !region.IsCountry() {
		return ""
	}
	return strings.ToLower(region.String())
}

func withTrailingSlash(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}
