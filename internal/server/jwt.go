package server

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/config"
	"github.com/jonathan/ats-autofill/internal/server/middleware"
)

// Claims are the bearer token claims issued by the auth provider. The
// subject carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	userID uuid.UUID
}

// GetUserID returns the user ID from the claims.
// This implements the middleware.UserIDGetter interface.
func (c *Claims) GetUserID() uuid.UUID {
	return c.userID
}

// JWTVerifier checks HS256 tokens against the shared provider secret.
type JWTVerifier struct {
	config *config.AuthConfig
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier with the given configuration.
func NewJWTVerifier(cfg *config.AuthConfig) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTVerifier{config: cfg, parser: jwt.NewParser(opts...)}
}

// ValidateToken validates a token and returns its claims.
func (v *JWTVerifier) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		default:
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user ID: %w", err)
	}
	claims.userID = userID
	return claims, nil
}

// AsTokenValidator adapts the verifier to middleware.TokenValidator.
func (v *JWTVerifier) AsTokenValidator() middleware.TokenValidator {
	return tokenValidator{v}
}

type tokenValidator struct {
	verifier *JWTVerifier
}

func (t tokenValidator) ValidateToken(tokenString string) (middleware.UserIDGetter, error) {
	claims, err := t.verifier.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
