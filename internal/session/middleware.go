package session

import (
	"context"
	"net/http"
	"strings"

	commonhttp "github.com/yhkim-dev/member-portal/internal/common/http"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// Middleware rejects requests without a valid bearer session token and
// stores the verified claims in the request context.
func Middleware(svc *Service, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
				log.Warnf("session auth failed path=%s: missing or invalid authorization header", r.URL.Path)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
				return
			}

			tokenString := strings.TrimPrefix(raw, "Bearer ")
			claims, err := svc.Verify(r.Context(), tokenString)
			if err != nil {
				log.Warnf("session auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid session", nil, "")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

// BearerToken extracts the raw token from the Authorization header, or ""
// when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(raw, "Bearer ")
}
