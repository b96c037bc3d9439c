package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/tokengate/internal/observability"
	"github.com/upb/tokengate/models"
	"github.com/upb/tokengate/services"
	"github.com/upb/tokengate/utils"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer credential to the stored user
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*models.User, error)
}

// AuthMiddleware gates requests on a bearer token and on the caller's role
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *zap.Logger
	metrics       *observability.AuthMetrics
}

// NewAuthMiddleware creates a new AuthMiddleware. metrics may be nil.
func NewAuthMiddleware(authenticator Authenticator, logger *zap.Logger, metrics *observability.AuthMetrics) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
		metrics:       metrics,
	}
}

// failure is the response written for a rejected request
type failure struct {
	status  int
	label   string
	message string
}

// authFailures maps every error the authenticator can return to its response
var authFailures = map[services.ErrorType]failure{
	services.ErrorTypeMissingCredential: {http.StatusUnauthorized, "Authentication required", "Access token is missing"},
	services.ErrorTypeInvalidSignature:  {http.StatusForbidden, "Invalid token", "The provided token is invalid"},
	services.ErrorTypeExpired:           {http.StatusForbidden, "Token expired", "The provided token has expired"},
	services.ErrorTypeStaleCredential:   {http.StatusForbidden, "Invalid token", "User associated with token no longer exists"},
	services.ErrorTypeInternal:          {http.StatusInternalServerError, "Authentication error", "Something went wrong during authentication"},
}

// Authenticate requires a valid bearer token naming an existing user.
// On success the user is attached to the request context; otherwise the
// request ends here with the mapped status.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		user, err := m.authenticator.Authenticate(ctx, extractCredential(r))
		if err != nil {
			errType := services.GetErrorType(err)
			f, ok := authFailures[errType]
			if !ok {
				// Anything untagged is treated as internal
				errType = services.ErrorTypeInternal
				f = authFailures[errType]
			}

			m.logger.Error("authentication failed",
				zap.String("request_id", requestID),
				zap.String("failure", string(errType)),
				zap.Int("status", f.status),
				zap.Error(err))
			m.metrics.Record(observability.StageAuthenticate, string(errType))

			_ = utils.WriteErrorMessage(w, f.status, f.label, f.message)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", user.ID.String()))
		m.metrics.Record(observability.StageAuthenticate, observability.OutcomeAllowed)

		next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
	})
}

// RequireRole lets a request through only when the authenticated user holds one of roles.
// It must run after Authenticate. It panics when roles is empty.
func (m *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	if len(roles) == 0 {
		panic("middleware: RequireRole needs at least one role")
	}
	allowed := append([]string(nil), roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user := UserFromContext(ctx)
			if user == nil {
				m.metrics.Record(observability.StageRoleGate, string(services.ErrUnauthenticated.Type))
				_ = utils.WriteErrorMessage(w, http.StatusUnauthorized, "Authentication required", "User must be authenticated")
				return
			}

			if !user.HasRole(allowed...) {
				m.logger.Warn("access denied",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("email", user.Email),
					zap.String("user_id", user.ID.String()),
					zap.String("user_role", string(user.Role)),
					zap.Strings("required_roles", allowed),
					zap.Error(services.ErrForbidden))
				m.metrics.Record(observability.StageRoleGate, string(services.ErrForbidden.Type))
				_ = utils.WriteErrorMessage(w, http.StatusForbidden, "Access denied",
					"Access restricted to: "+strings.Join(allowed, ", "))
				return
			}

			m.metrics.Record(observability.StageRoleGate, observability.OutcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

// extractCredential returns the second whitespace-separated field of the
// Authorization header, or "" when there is none.
func extractCredential(r *http.Request) string {
	fields := strings.Fields(r.Header.Get("Authorization"))
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
