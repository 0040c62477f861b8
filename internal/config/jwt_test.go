package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-signing-secret-at-least-32-bytes-long")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "a-signing-secret-at-least-32-bytes-long", cfg.Secret)
	assert.Equal(t, defaultJWTExpirationHours, cfg.ExpirationHours)
}

func TestNewJWTConfig_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-signing-secret-at-least-32-bytes-long")
	t.Setenv("JWT_EXPIRATION_HOURS", "72")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.ExpirationHours)
}

func TestNewJWTConfig_InvalidHours(t *testing.T) {
	tests := []struct {
		name  string
		hours string
	}{
		{name: "not a number", hours: "soon"},
		{name: "zero", hours: "0"},
		{name: "negative", hours: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "a-signing-secret-at-least-32-bytes-long")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.hours)

			_, err := NewJWTConfig()
			require.Error(t, err)
		})
	}
}
