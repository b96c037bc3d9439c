package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/tokengate/models"
	"github.com/upb/tokengate/repositories"
	"github.com/upb/tokengate/token"
)

// TokenVerifier checks a bearer credential and returns its claims
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// UserLookup resolves a user by id. Implementations wrap repositories.ErrNotFound when the user is absent.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticator turns a bearer credential into the current stored identity.
// The user is fetched on every call; nothing derived from a token is cached.
type Authenticator struct {
	verifier TokenVerifier
	users    UserLookup
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(verifier TokenVerifier, users UserLookup) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		users:    users,
	}
}

// Authenticate verifies credential and loads the user it names.
// Every error it returns is a *DomainError of one of the types
// MissingCredential, InvalidSignature, Expired, StaleCredential or Internal.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (*models.User, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	claims, err := a.verifier.Verify(credential)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, ErrExpired.Wrap(err)
		case errors.Is(err, token.ErrInvalidSignature):
			return nil, ErrInvalidSignature.Wrap(err)
		default:
			return nil, WrapInternal("token verification failed", err)
		}
	}

	// A subject that is not a user id cannot name a stored user
	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrStaleCredential.Wrap(err).WithDetail("subject", claims.UserID())
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaleCredential.Wrap(err).WithDetail("user_id", userID.String())
		}
		return nil, WrapInternal("user lookup failed", err)
	}
	if user == nil {
		return nil, ErrInternal.Wrap(errors.New("user lookup returned no user"))
	}

	return user, nil
}
