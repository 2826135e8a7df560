package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const (
	defaultAccessTokenSecret  = "default_insecure_access_secret_please_change_this_!@#$"
	defaultRefreshTokenSecret = "default_insecure_refresh_secret_please_change_this_!@#$"
)

// ErrSharedTokenSecret is returned when access and refresh tokens would be signed with the same key.
var ErrSharedTokenSecret = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StoreDriver   string

	// Tokens
	AccessTokenSecret          string
	AccessTokenExpiryDuration  time.Duration
	RefreshTokenSecret         string
	RefreshTokenExpiryDuration time.Duration
	JWTIssuer                  string

	// Credentials
	BcryptCost                     int
	RevokeSessionsOnPasswordChange bool

	// HTTP
	AllowedOrigins []string
	LoginRateLimit string
	MaxUploadBytes int64
	CookieSecure   bool

	// Media storage (S3 compatible)
	S3Region        string
	S3Bucket        string
	S3BaseEndpoint  string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// MediaStoreEnabled reports whether enough S3 settings are present to upload images.
func (c *Config) MediaStoreEnabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("ACCESS_TOKEN_SECRET", defaultAccessTokenSecret)
	v.SetDefault("ACCESS_TOKEN_EXPIRY_DURATION", "15m")
	v.SetDefault("REFRESH_TOKEN_SECRET", defaultRefreshTokenSecret)
	v.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	v.SetDefault("JWT_ISSUER", "user-accounts-service")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", false)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("S3_REGION", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_BASE_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:                    v.GetString("PGSQL_URL"),
		Port:                           v.GetString("PORT"),
		IsProduction:                   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:                  v.GetBool("ENABLE_DB_CHECK"),
		StoreDriver:                    strings.ToLower(v.GetString("STORE_DRIVER")),
		AccessTokenSecret:              v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:             v.GetString("REFRESH_TOKEN_SECRET"),
		JWTIssuer:                      v.GetString("JWT_ISSUER"),
		BcryptCost:                     v.GetInt("BCRYPT_COST"),
		RevokeSessionsOnPasswordChange: v.GetBool("REVOKE_SESSIONS_ON_PASSWORD_CHANGE"),
		LoginRateLimit:                 v.GetString("LOGIN_RATE_LIMIT"),
		MaxUploadBytes:                 v.GetInt64("MAX_UPLOAD_BYTES"),
		CookieSecure:                   v.GetBool("COOKIE_SECURE"),
		S3Region:                       v.GetString("S3_REGION"),
		S3Bucket:                       v.GetString("S3_BUCKET"),
		S3BaseEndpoint:                 v.GetString("S3_BASE_ENDPOINT"),
		S3AccessKey:                    v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:                    v.GetString("S3_SECRET_KEY"),
		S3PublicBaseURL:                v.GetString("S3_PUBLIC_BASE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StoreDriverMemory:
		log.Println("Warning: STORE_DRIVER=memory, accounts are lost on restart.")
	default:
		return nil, errors.New("STORE_DRIVER must be postgres or memory, got " + cfg.StoreDriver)
	}

	cfg.AccessTokenExpiryDuration = parseDuration(v, "ACCESS_TOKEN_EXPIRY_DURATION", 15*time.Minute)
	cfg.RefreshTokenExpiryDuration = parseDuration(v, "REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)

	if cfg.AccessTokenSecret == defaultAccessTokenSecret {
		log.Println("Warning: ACCESS_TOKEN_SECRET is not set, using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}
	if cfg.RefreshTokenSecret == defaultRefreshTokenSecret {
		log.Println("Warning: REFRESH_TOKEN_SECRET is not set, using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, ErrSharedTokenSecret
	}

	if cfg.LoginRateLimit == "" {
		cfg.LoginRateLimit = "5-M"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}

	for _, origin := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if !cfg.MediaStoreEnabled() {
		log.Println("Warning: S3_BUCKET or S3_REGION not set. Avatar and cover image uploads are disabled.")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
