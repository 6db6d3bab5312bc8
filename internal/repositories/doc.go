// Package repositories implements persistence for user tokens and play history.
//
// Key Implementations:
//   - [TokenRepository] : SQLite backed [auth.TokenStore], one row per profile
//   - [KeyringTokenStore] : OS keychain (or encrypted file) backed [auth.TokenStore]
//   - [PlayEventRepository] : Play history snapshots with de-duplication on user, product and time
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
