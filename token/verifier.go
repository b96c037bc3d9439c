// Package token verifies HMAC-signed bearer tokens against a shared secret.
//
// Verification failures are reported as one of two sentinel errors so callers
// can branch with errors.Is instead of inspecting messages:
//
//   - ErrInvalidSignature: malformed, tampered, wrongly signed, or missing a subject
//   - ErrExpired: correctly signed but past its exp claim
//
// A correctly signed token whose nbf lies in the future matches neither.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature is returned when a token cannot be trusted
	ErrInvalidSignature = errors.New("invalid token")

	// ErrExpired is returned when a correctly signed token is past its expiry
	ErrExpired = errors.New("token expired")

	// ErrEmptySecret is returned by NewVerifier when no secret is configured
	ErrEmptySecret = errors.New("token secret must not be empty")
)

// Claims is the decoded payload of a verified token.
// ID names the user the token was issued for.
type Claims struct {
	ID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the id claim, falling back to the registered subject
func (c *Claims) UserID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Subject
}

// Config holds configuration for Verifier
type Config struct {
	Secret string
	Issuer string        // Checked against "iss" when non-empty
	Leeway time.Duration // Clock skew tolerated on exp/nbf
}

// Verifier checks token signatures with a process-wide shared secret.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier. The secret is required.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Verifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify validates tokenString and returns its claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		// jwt/v5 checks the signature before claims, so an expired error implies a good signature
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		// Correctly signed but not yet usable; neither tampered nor expired
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, fmt.Errorf("token not valid yet: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	if claims.UserID() == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidSignature)
	}

	return claims, nil
}
