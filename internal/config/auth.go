package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// minSecretLength is the shortest HS256 secret accepted.
const minSecretLength = 16

// AuthConfig holds the settings used to verify bearer tokens issued by the
// external auth provider.
type AuthConfig struct {
	Secret string
	Issuer string
	Leeway time.Duration
}

// NewAuthConfig reads AUTH_JWT_SECRET, AUTH_JWT_ISSUER (optional) and
// AUTH_JWT_LEEWAY_SECONDS (default: 0). It returns nil without error when
// AUTH_JWT_SECRET is unset, which leaves the API unauthenticated.
func NewAuthConfig() (*AuthConfig, error) {
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, nil
	}

	leeway := 0
	if v := os.Getenv("AUTH_JWT_LEEWAY_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_JWT_LEEWAY_SECONDS: %v", err)
		}
		leeway = n
	}

	cfg := &AuthConfig{
		Secret: secret,
		Issuer: os.Getenv("AUTH_JWT_ISSUER"),
		Leeway: time.Duration(leeway) * time.Second,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AuthConfig) normalize() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.Leeway < 0 {
		return fmt.Errorf("AUTH_JWT_LEEWAY_SECONDS must be non-negative, got: %d", int(c.Leeway/time.Second))
	}
	return nil
}
