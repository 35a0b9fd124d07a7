package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string
	RedisURL        string
	FrontendOrigin  string
	PublicURL       string

	// QRSecret signs booking verification tokens. JWTSecret signs session tokens.
	QRSecret       string
	JWTSecret      string
	SessionTTL     time.Duration
	SocialJWKSURL  string
	SocialAudience string
	SocialIssuer   string

	OTPTTL         time.Duration
	OTPMaxAttempts int

	StripeSecretKey     string
	StripeWebhookSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	ReminderInterval time.Duration
	ReminderLead     time.Duration

	// VenueLocation is loaded from VenueTimezone; show times are wall clock times there.
	VenueTimezone string
	VenueLocation *time.Location
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		MongoDBPassword:     os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase:     getEnvWithDefault("MONGODB_DATABASE", "cinepass"),
		RedisURL:            os.Getenv("REDIS_URL"),
		FrontendOrigin:      getEnvWithDefault("FRONTEND_ORIGIN", "http://localhost:3000"),
		PublicURL:           getEnvWithDefault("PUBLIC_URL", "http://localhost:8080"),
		QRSecret:            os.Getenv("QR_SECRET"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SessionTTL:          time.Duration(getIntWithDefault("SESSION_TTL_HOURS", 168)) * time.Hour,
		SocialJWKSURL:       os.Getenv("SOCIAL_JWKS_URL"),
		SocialAudience:      os.Getenv("SOCIAL_AUDIENCE"),
		SocialIssuer:        os.Getenv("SOCIAL_ISSUER"),
		OTPTTL:              time.Duration(getIntWithDefault("OTP_TTL_MINUTES", 10)) * time.Minute,
		OTPMaxAttempts:      getIntWithDefault("OTP_MAX_ATTEMPTS", 5),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getIntWithDefault("SMTP_PORT", 587),
		SMTPUsername:        os.Getenv("SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		MailFrom:            getEnvWithDefault("MAIL_FROM", "tickets@cinepass.local"),
		ReminderInterval:    time.Duration(getIntWithDefault("REMINDER_INTERVAL_MINUTES", 30)) * time.Minute,
		ReminderLead:        time.Duration(getIntWithDefault("REMINDER_LEAD_HOURS", 24)) * time.Hour,
		VenueTimezone:       getEnvWithDefault("VENUE_TIMEZONE", "UTC"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.QRSecret == "" {
		return nil, fmt.Errorf("QR_SECRET is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OTPMaxAttempts <= 0 {
		return nil, fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}
	if cfg.SocialJWKSURL != "" && cfg.SocialAudience == "" {
		return nil, fmt.Errorf("SOCIAL_AUDIENCE is required when SOCIAL_JWKS_URL is set")
	}

	loc, err := time.LoadLocation(cfg.VenueTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid VENUE_TIMEZONE %q: %w", cfg.VenueTimezone, err)
	}
	cfg.VenueLocation = loc

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// MailEnabled reports whether SMTP delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}
