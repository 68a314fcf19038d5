package authenticator

import "net/http"

// Authenticator is the pair of middlewares the router composes around its
// routes: Authenticate resolves the session on every request, RequireLogin
// additionally gates the protected ones.
type Authenticator interface {
	Authenticate(h http.Handler) http.Handler
	RequireLogin(h http.Handler) http.Handler
}
