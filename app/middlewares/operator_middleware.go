package middlewares

import (
	"log"
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/unrolled/render"
)

// OperatorAuthMiddleware guards the operator API with a shared token whose
// bcrypt hash is configured. With no hash configured every request is
// refused.
func OperatorAuthMiddleware(tokenHash string, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(helpers.OperatorTokenHeader)
			if tokenHash == "" || token == "" || !helpers.PasswordCompare(tokenHash, []byte(token)) {
				log.Printf("OperatorAuthMiddleware: rejected %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
				rnd.JSON(w, http.StatusForbidden, map[string]interface{}{
					"error": map[string]interface{}{
						"code":      "Forbidden",
						"message":   "operator token is missing or wrong",
						"retryable": false,
					},
				})
				return
			}

			actor := "operator"
			if name := strings.TrimSpace(r.Header.Get(helpers.OperatorNameHeader)); name != "" {
				actor = "operator:" + name
			}
			next.ServeHTTP(w, r.WithContext(helpers.WithActor(r.Context(), actor)))
		})
	}
}
