package middlewares

import (
	"log"
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/unrolled/render"
)

// SessionManagerMiddleware loads the signed-in user and the cart key of the
// browser into the request context. A cart key is minted on first visit.
func SessionManagerMiddleware(store sessions.SessionStore, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartKey, err := store.EnsureCartKey(w, r)
			if err != nil {
				log.Printf("SessionManagerMiddleware: Error saving cart key on %s: %v", r.URL.Path, err)
				helpers.WriteError(rnd, w, err)
				return
			}

			ctx := helpers.WithCartKey(r.Context(), cartKey)
			if userID := store.GetUserID(r); userID != "" {
				ctx = helpers.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUserMiddleware rejects requests without a signed-in user.
func RequireUserMiddleware(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if helpers.GetUserIDFromContext(r.Context()) == "" {
				rnd.JSON(w, http.StatusUnauthorized, map[string]interface{}{
					"error": map[string]interface{}{
						"code":      "Unauthorized",
						"message":   "sign in to continue",
						"retryable": false,
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if override := r.Header.Get("X-HTTP-Method-Override"); override != "" {
				r.Method = strings.ToUpper(override)
			}
		}
		next.ServeHTTP(w, r)
	})
}
