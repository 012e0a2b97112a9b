// Package repositories implements SQLite persistence for jam.
//
// Key Implementations:
//   - [KVStore] : the credential cache (access token and expiry) as an [auth.Store]
//   - [DraftRepository] : the single playlist draft, kept between CLI invocations
//   - [TrackRepository] : tracks seen in search results, so a draft can add them by id without a lookup
//
// Tables come from the embedded migrations in package shared; run [shared.RunMigrations] first.
package repositories
