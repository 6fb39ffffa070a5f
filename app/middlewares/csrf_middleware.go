package middlewares

import (
	"net/http"

	"github.com/gorilla/csrf"
)

const CSRFTokenHeader = "X-CSRF-Token"

// CSRFMiddleware rejects unsafe customer requests without a valid token and
// hands the current token back on every response through CSRFTokenHeader.
func CSRFMiddleware(authKey []byte, secure bool) func(http.Handler) http.Handler {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
	)
	return func(next http.Handler) http.Handler {
		return protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(CSRFTokenHeader, csrf.Token(r))
			next.ServeHTTP(w, r)
		}))
	}
}
