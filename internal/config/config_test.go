package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("QR_SECRET", "qr")
	t.Setenv("JWT_SECRET", "jwt")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "cinepass", cfg.MongoDBDatabase)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, 24*time.Hour, cfg.ReminderLead)
	assert.False(t, cfg.MailEnabled())
	assert.Equal(t, time.UTC, cfg.VenueLocation)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OTP_TTL_MINUTES", "3")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3*time.Minute, cfg.OTPTTL)
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoadConfig_VenueTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("VENUE_TIMEZONE", "Africa/Accra")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Accra", cfg.VenueLocation.String())

	t.Setenv("VENUE_TIMEZONE", "Mars/Olympus")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VENUE_TIMEZONE")
}

func TestLoadConfig_SocialLoginNeedsAudience(t *testing.T) {
	setRequired(t)
	t.Setenv("SOCIAL_JWKS_URL", "https://idp.example.com/.well-known/jwks.json")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOCIAL_AUDIENCE")

	t.Setenv("SOCIAL_AUDIENCE", "cinepass-web")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "cinepass-web", cfg.SocialAudience)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	for _, key := range []string{"MONGODB_URI", "REDIS_URL", "QR_SECRET", "JWT_SECRET"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}

	t.Run("OTP_MAX_ATTEMPTS", func(t *testing.T) {
		setRequired(t)
		t.Setenv("OTP_MAX_ATTEMPTS", "0")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
