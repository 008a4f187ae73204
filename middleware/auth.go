package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/reframe-media/errors"
)

// IsAuthorized enforces a static bearer token, matching the API token check
// used by internal service-to-service calls.
func IsAuthorized(apiToken string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if apiToken == "" {
			next(w, r, ps)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteHTTPValidationError(w, "missing Authorization header", nil)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != apiToken {
			errors.WriteHTTPValidationError(w, "invalid API token", nil)
			return
		}

		next(w, r, ps)
	}
}

// ValidateJWT is used instead of IsAuthorized when the deployment issues
// per-client JWTs rather than a single static token.
func ValidateJWT(secret []byte, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		authHeader := r.Header.Get("Authorization")
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == "" {
			errors.WriteHTTPValidationError(w, "missing bearer token", nil)
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			errors.WriteHTTPValidationError(w, "invalid JWT", nil)
			return
		}

		next(w, r, ps)
	}
}
