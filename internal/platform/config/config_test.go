package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiryDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiryDuration)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.False(t, cfg.RevokeSessionsOnPasswordChange)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "5-M", cfg.LoginRateLimit)
	assert.False(t, cfg.MediaStoreEnabled())
}

func TestFromViper_RejectsSharedSecret(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{
		"ACCESS_TOKEN_SECRET":  "same-secret",
		"REFRESH_TOKEN_SECRET": "same-secret",
	}))
	assert.ErrorIs(t, err, ErrSharedTokenSecret)
}

func TestFromViper_InvalidDurationFallsBack(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"ACCESS_TOKEN_EXPIRY_DURATION":  "soon",
		"REFRESH_TOKEN_EXPIRY_DURATION": "48h",
	}))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiryDuration)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenExpiryDuration)
}

func TestFromViper_ParsesOriginsAndMedia(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"ALLOWED_ORIGINS": "https://a.example, https://b.example ,",
		"S3_BUCKET":       "avatars",
		"S3_REGION":       "us-east-1",
		"STORE_DRIVER":    "MEMORY",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.MediaStoreEnabled())
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
}

func TestFromViper_UnknownStoreDriver(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{"STORE_DRIVER": "mongo"}))
	assert.Error(t, err)
}
