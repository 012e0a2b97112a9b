// Package services implements the Spotify Web API client used to search the catalog and save playlists.
//
// # Credentials
//
// [SpotifyClient] takes its bearer token from an [oauth2.TokenSource], in practice the auth
// manager. When the source has no valid token every operation fails fast with
// [shared.ErrUnauthorized] before any network call is made.
//
// # Operations
//
//   - [SpotifyClient.Search] : GET /search?type=track&q=..., never returns an error
//   - [SpotifyClient.SavePlaylist] : GET /me, POST /users/{id}/playlists, POST /playlists/{id}/tracks
//   - [SpotifyClient.Track] : GET /tracks/{id}, failing with [shared.ErrRequestFailed]
//
// The three save calls run strictly in order and the chain stops at the first failure, which is
// logged and reported as a nil result. A playlist created before the track step fails is left in place.
//
// # Error Handling
//
// Non-2xx responses become a [*StatusError], which matches [shared.ErrAPIRequest].
// Nothing is retried.
package services
