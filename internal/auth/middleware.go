package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stackvest/stackvest-backend/internal/key"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/pkg/config"
	"github.com/stackvest/stackvest-backend/pkg/utils"
)

// JWTMiddleware validates the bearer token and loads the full user row into
// the request context. Downstream handlers read it via utils.UserKey.
func JWTMiddleware(cfg config.Config, users user.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utils.BuildErrorResponse(w, http.StatusUnauthorized, "Missing or malformed token", nil)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
				func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, jwt.ErrSignatureInvalid
					}
					return []byte(cfg.JWTSecret), nil
				})
			if err != nil || !token.Valid {
				utils.BuildErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token", nil)
				return
			}

			userID, ok := claims[utils.UserIDKey].(string)
			if !ok {
				utils.BuildErrorResponse(w, http.StatusUnauthorized, "Invalid token claims", nil)
				return
			}

			usr, err := users.FindByID(userID)
			if err != nil {
				utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unknown user", nil)
				return
			}

			ctx := context.WithValue(r.Context(), utils.UserKey, *usr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sits behind JWTMiddleware and gates admin-only routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usr, ok := r.Context().Value(utils.UserKey).(user.User)
		if !ok || usr.Role != user.RoleAdmin {
			utils.BuildErrorResponse(w, http.StatusForbidden, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServiceKeyOrAdmin admits either an admin bearer token or an API key with
// the given permission, so external cron can hit operational endpoints
// without a user session.
func ServiceKeyOrAdmin(cfg config.Config, users user.Repository, keys key.Repository, permission string) func(http.Handler) http.Handler {
	jwtChain := JWTMiddleware(cfg, users)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rawKey := r.Header.Get("X-API-Key"); rawKey != "" {
				record, err := keys.Verify(rawKey)
				if err != nil || !record.HasPermission(permission) {
					utils.BuildErrorResponse(w, http.StatusForbidden, "Invalid API key", nil)
					return
				}
				ctx := context.WithValue(r.Context(), utils.ServiceKey, record.Name)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			jwtChain(RequireAdmin(next)).ServeHTTP(w, r)
		})
	}
}
