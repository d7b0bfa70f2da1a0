package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("RETENTION_HORIZON_MONTHS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SuperAdminTrial())
	assert.Equal(t, 6, cfg.Retention.HorizonMonths)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestBootstrapEnabled(t *testing.T) {
	assert.False(t, BootstrapConfig{OwnerUsername: "root"}.Enabled())
	assert.True(t, BootstrapConfig{OwnerEmail: "o@x.com", OwnerUsername: "root", OwnerPassword: "pw"}.Enabled())
}
