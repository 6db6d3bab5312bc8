package api

import "net/http"

// Classify maps a raw response that could not be decoded to a taxonomy error.
//
// The ladder, first match wins:
//   - 404 while the country code was inferred: the service is absent in that territory
//   - 401 or 403: credentials rejected
//   - identity header expected but missing: something between us and the service answered
//   - anything else: a generic call failure carrying the status
//
// A 2xx response with a valid content type returns nil.
func Classify(raw *RawResponse, settings ClientSettings) error {
	if raw == nil {
		return &Error{Kind: ErrNetworkUnavailable}
	}
	if Decodable(raw.StatusCode, raw.ContentType) {
		return nil
	}

	kind := ErrAPICallFailed
	switch {
	case raw.StatusCode == http.StatusNotFound && settings.CountryCodeInferred:
		kind = ErrAPINotAvailable
	case raw.StatusCode == http.StatusUnauthorized || raw.StatusCode == http.StatusForbidden:
		kind = ErrInvalidCredentials
	case raw.IdentityHeaderMissing != nil && *raw.IdentityHeaderMissing:
		kind = ErrNetworkLimited
	}

	return &Error{Kind: kind, StatusCode: raw.StatusCode, Body: string(raw.Body)}
}
