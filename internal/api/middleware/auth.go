package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/styleai-api/internal/api/shared"
	"github.com/phrazzld/styleai-api/internal/i18n"
	"github.com/phrazzld/styleai-api/internal/service/auth"
)

// AuthMiddleware provides Firebase ID token authentication for routes.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate validates the bearer token from the Authorization header and
// adds the user ID to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unauthorized := i18n.TC(r.Context(), i18n.MsgUnauthorized)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, unauthorized, auth.ErrMissingToken)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, unauthorized, auth.ErrInvalidToken)
			return
		}

		claims, err := m.verifier.VerifyIDToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			status := http.StatusUnauthorized
			message := unauthorized
			if errors.Is(err, auth.ErrKeysUnavailable) {
				status = http.StatusServiceUnavailable
				message = i18n.TC(r.Context(), i18n.MsgBusy)
			}
			shared.RespondWithErrorAndLog(w, r, status, message, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), claims.UserID)))
	})
}
