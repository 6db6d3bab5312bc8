// Package auth owns the user token lifecycle: authorization code exchange, refresh, expiry
// and sign-out for the secured catalog endpoints.
//
// A [Manager] moves through NoToken → Active → Expired → Refreshing → Active (or stays
// Expired when the refresh fails). Expiry is judged against the dispatcher's server-observed
// clock, not the local one. Concurrent refreshes share a single network call.
package auth
