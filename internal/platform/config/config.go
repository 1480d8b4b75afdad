package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Admin auth. Tokens are issued by the dashboard's auth service.
	JWTSecret string
	JWTIssuer string

	// Machine trigger for the rate sync endpoint
	SyncAPIKeyHash string `mapstructure:"SYNC_API_KEY_HASH"`
	SyncRateLimit  string `mapstructure:"SYNC_RATE_LIMIT"`

	CORSAllowedOrigins []string

	// Quote events
	RedisURL           string `mapstructure:"REDIS_URL"`
	QuoteEventsChannel string `mapstructure:"QUOTE_EVENTS_CHANNEL"`

	// External exchange rate feed
	RateFeedURL          string `mapstructure:"RATE_FEED_URL"`
	RateFeedClientID     string `mapstructure:"RATE_FEED_CLIENT_ID"`
	RateFeedClientSecret string `mapstructure:"RATE_FEED_CLIENT_SECRET"`
	RateFeedTokenURL     string `mapstructure:"RATE_FEED_TOKEN_URL"`
	RateSyncInterval     time.Duration

	// Route estimation for quotes created from addresses
	GoogleMapsAPIKey string `mapstructure:"GOOGLE_MAPS_API_KEY"`

	QuoteExpirySweepInterval time.Duration
	DefaultQuoteValidity     time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("SYNC_API_KEY_HASH", "")
	viper.SetDefault("SYNC_RATE_LIMIT", "10-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("QUOTE_EVENTS_CHANNEL", "quote-events")
	viper.SetDefault("RATE_FEED_URL", "")
	viper.SetDefault("RATE_FEED_CLIENT_ID", "")
	viper.SetDefault("RATE_FEED_CLIENT_SECRET", "")
	viper.SetDefault("RATE_FEED_TOKEN_URL", "")
	viper.SetDefault("RATE_SYNC_INTERVAL", "6h")
	viper.SetDefault("GOOGLE_MAPS_API_KEY", "")
	viper.SetDefault("QUOTE_EXPIRY_SWEEP_INTERVAL", "5m")
	viper.SetDefault("DEFAULT_QUOTE_VALIDITY", "72h")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.SyncAPIKeyHash = viper.GetString("SYNC_API_KEY_HASH")
	if cfg.SyncAPIKeyHash == "" {
		log.Println("Warning: SYNC_API_KEY_HASH not set. Rate sync can only be triggered with a JWT.")
	}
	cfg.SyncRateLimit = viper.GetString("SYNC_RATE_LIMIT")

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.RedisURL = viper.GetString("REDIS_URL")
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set. Quote events will only be logged.")
	}
	cfg.QuoteEventsChannel = viper.GetString("QUOTE_EVENTS_CHANNEL")

	cfg.RateFeedURL = viper.GetString("RATE_FEED_URL")
	cfg.RateFeedClientID = viper.GetString("RATE_FEED_CLIENT_ID")
	cfg.RateFeedClientSecret = viper.GetString("RATE_FEED_CLIENT_SECRET")
	cfg.RateFeedTokenURL = viper.GetString("RATE_FEED_TOKEN_URL")
	if cfg.RateFeedURL == "" {
		log.Println("Warning: RATE_FEED_URL not set. Exchange rates must be entered manually.")
	}

	cfg.GoogleMapsAPIKey = viper.GetString("GOOGLE_MAPS_API_KEY")
	if cfg.GoogleMapsAPIKey == "" {
		log.Println("Warning: GOOGLE_MAPS_API_KEY not set. Quotes must be created with an explicit distance.")
	}

	cfg.RateSyncInterval = durationOrDefault("RATE_SYNC_INTERVAL", 6*time.Hour)
	cfg.QuoteExpirySweepInterval = durationOrDefault("QUOTE_EXPIRY_SWEEP_INTERVAL", 5*time.Minute)
	cfg.DefaultQuoteValidity = durationOrDefault("DEFAULT_QUOTE_VALIDITY", 72*time.Hour)

	return cfg, nil
}

// durationOrDefault parses a duration key such as "60m" or "1h".
// Zero disables the corresponding background job.
func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
