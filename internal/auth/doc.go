// Package auth manages the Spotify access token for a public client using the implicit grant.
//
// # Lifecycle
//
// A [Manager] holds at most one [Credential]. It is restored from a [Store] when the stored
// expiry is still in the future, or captured from the redirect locator the provider sends
// the user back to. The token travels in the locator's fragment:
//
//	http://127.0.0.1:3000/callback#access_token=...&token_type=Bearer&expires_in=3600
//
// [Manager.CompleteAuthorization] parses it, persists both cache keys and arms a timer that
// invalidates the credential when its lifetime elapses. Nothing refreshes the token; an
// expired credential sends the user through [Manager.BeginAuthorization] again.
//
// # States
//
// [NoCredential] → [Redirecting] when no token is available, → [HasCredential] after a cache
// read or a locator parse, → [Expired] when the timer fires, and back to [NoCredential] once
// the expired value is discarded.
//
// Operations that need a token fail with an error matching [shared.ErrUnauthorized] when the
// manager has none; callers must not issue the dependent request.
package auth
