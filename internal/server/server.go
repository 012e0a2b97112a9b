package server

import (
	"net/http"
)

// Middleware wraps the callback routes, e.g. with [RequestLogger].
type Middleware func(http.Handler) http.Handler

// Handler serves a fixed set of GET paths. [CallbackHandler] serves the redirect target and the token path.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router is what the login command needs from the callback server: middleware, routes and dispatch.
//
// [MuxRouter] implements it on gorilla/mux.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

var _ Router = (*MuxRouter)(nil)
