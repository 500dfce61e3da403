package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/user"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/response"
	"github.com/Charbel-5/moondev-coding-challenge/internal/security"
	"github.com/Charbel-5/moondev-coding-challenge/internal/session"
)

type contextKey string

const (
	ContextUserIDKey contextKey = "user_id"
	ContextRoleKey   contextKey = "role"
)

type AuthMiddleware struct {
	jwt      *security.JWTProvider
	sessions *session.Tracker
}

func NewAuthMiddleware(jwt *security.JWTProvider, sessions *session.Tracker) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, sessions: sessions}
}

// Authenticate verifies the bearer token, enforces the idle timeout, and
// stamps the caller's identity into the request context. The token also
// rides in the `token` query parameter for EventSource clients, which
// cannot set headers.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization", nil))
			return
		}
		claims, err := m.jwt.Parse(token)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		userID, err := common.ParseUUID(claims.UserID)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid user id", err))
			return
		}
		role := user.Role(strings.ToLower(strings.TrimSpace(claims.Role)))
		if role != user.RoleApplicant && role != user.RoleReviewer {
			response.Error(w, common.NewError(common.CodeForbidden, "unknown role", nil))
			return
		}
		var issuedAt time.Time
		if claims.Iat > 0 {
			issuedAt = time.Unix(claims.Iat, 0).UTC()
		}
		if m.sessions.ExpiredFor(r.Context(), userID, issuedAt) {
			response.Error(w, common.NewError(common.CodeUnauthorized, "session expired due to inactivity", nil))
			return
		}
		m.sessions.Touch(r.Context(), userID)

		ctx := context.WithValue(r.Context(), ContextUserIDKey, userID)
		ctx = context.WithValue(ctx, ContextRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			activeRole, ok := r.Context().Value(ContextRoleKey).(user.Role)
			if !ok || activeRole == "" {
				response.Error(w, common.NewError(common.CodeForbidden, "role not found", nil))
				return
			}
			if activeRole != role {
				response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(common.UUID)
	if !ok {
		return user.Identity{}, false
	}
	role, ok := ctx.Value(ContextRoleKey).(user.Role)
	if !ok {
		return user.Identity{}, false
	}
	return user.Identity{UserID: id, Role: role}, true
}
