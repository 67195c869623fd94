package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FACorreiaa/go-user-rating/internal/api"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

// Define typed context keys
type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"
const UserNicknameKey contextKey = "userNickname"

// TokenParser validates a raw bearer token.
type TokenParser interface {
	Parse(tokenString string) (*types.Claims, error)
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	api.ErrorResponse(w, r, http.StatusUnauthorized, types.ErrAuthFailure.Message)
}

// Authenticate is middleware to validate JWT access tokens.
// Every rejection gets the same body so callers cannot tell the causes apart.
func Authenticate(logger *slog.Logger, tokens TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				unauthorized(w, r)
				return
			}

			headerParts := strings.Fields(authHeader)
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				l.WarnContext(ctx, "Invalid Authorization header format")
				unauthorized(w, r)
				return
			}

			claims, err := tokens.Parse(headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				unauthorized(w, r)
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, string(claims.Role))
			ctx = context.WithValue(ctx, UserNicknameKey, claims.Nickname)
			l.DebugContext(ctx, "Authentication successful, claims added to context", slog.String("userID", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose token role differs from role.
// Runs AFTER the Authenticate middleware.
func RequireRole(logger *slog.Logger, role types.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actual, ok := GetUserRoleFromContext(ctx)
			if !ok || types.Role(actual) != role {
				logger.WarnContext(ctx, "Role check failed",
					slog.String("middleware", "RequireRole"),
					slog.String("required_role", string(role)),
					slog.String("actual_role", actual))
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions to get claims from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}

func GetUserNicknameFromContext(ctx context.Context) (string, bool) {
	nickname, ok := ctx.Value(UserNicknameKey).(string)
	return nickname, ok
}
