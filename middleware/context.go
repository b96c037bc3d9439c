package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/tokengate/models"
)

// Context key type to avoid collisions
type contextKey string

// userKey holds the identity resolved by Authenticate
const userKey contextKey = "user"

// WithUser attaches the authenticated user to the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil when the request was not authenticated
func UserFromContext(ctx context.Context) *models.User {
	if val := ctx.Value(userKey); val != nil {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// GetRequestIDFromContext returns the id assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
