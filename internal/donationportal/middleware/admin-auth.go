package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"

	"animal-donations/pkg/jwtfactory"
	"animal-donations/pkg/logging"
)

const unauthorizedBody = `{"success":false,"message":"Unauthorized"}`

// AdminAuth lets through requests carrying a valid token with the admin role.
// It expects jwtauth.Verifier to run first.
type AdminAuth struct {
	logger *logging.ZapLogger
}

func NewAdminAuth(logger *logging.ZapLogger) *AdminAuth {
	return &AdminAuth{
		logger: logger,
	}
}

func (aa *AdminAuth) CreateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			aa.logger.DebugCtx(r.Context(), "request without a valid token", zap.Error(err))
			writeUnauthorized(w)
			return
		}
		if role, _ := claims[jwtfactory.RoleClaimName].(string); role != jwtfactory.AdminRole {
			aa.logger.DebugCtx(r.Context(), "token without admin role", zap.String("subject", token.Subject()))
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}
