package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthConfig_Disabled(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := NewAuthConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestNewAuthConfig(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		issuer     string
		leeway     string
		wantErr    bool
		wantLeeway time.Duration
	}{
		{name: "defaults", secret: "0123456789abcdef0123"},
		{name: "issuer and leeway", secret: "0123456789abcdef0123", issuer: "https://auth.example.com", leeway: "30", wantLeeway: 30 * time.Second},
		{name: "short secret", secret: "short", wantErr: true},
		{name: "bad leeway", secret: "0123456789abcdef0123", leeway: "soon", wantErr: true},
		{name: "negative leeway", secret: "0123456789abcdef0123", leeway: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", tt.secret)
			t.Setenv("AUTH_JWT_ISSUER", tt.issuer)
			t.Setenv("AUTH_JWT_LEEWAY_SECONDS", tt.leeway)

			cfg, err := NewAuthConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, tt.secret, cfg.Secret)
			assert.Equal(t, tt.issuer, cfg.Issuer)
			assert.Equal(t, tt.wantLeeway, cfg.Leeway)
		})
	}
}
