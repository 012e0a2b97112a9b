// Package server provides the HTTP router, middleware and the implicit grant callback handler used by `jam auth login`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [MuxRouter] implementation uses a gorilla/mux router with method matching.
//
// # Callback Handler
//
// With the implicit grant the provider appends the token to the redirect URL's fragment, which browsers never
// send to a server. [CallbackHandler] therefore serves two routes:
//
//   - the redirect path (e.g. /callback) returns a small page whose script replaces the visible location with
//     one stripped of the token and forwards the fragment to /token
//   - /token validates the state parameter and hands the parameters to the credential manager
//
// Only the first /token call carrying the expected state is processed; a mismatched state is rejected without
// using up the result, which is delivered once on [CallbackHandler.Result].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
