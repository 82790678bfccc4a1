package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Clerk     ClerkConfig
	Share     ShareConfig
	Stripe    StripeConfig
	Resend    ResendConfig
	DocuSign  DocuSignConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ClerkConfig describes the identity provider integration: token verification
// (issuer + client id for OIDC discovery), the Backend API used for profile
// fetches during provisioning, and the signing secret for inbound webhooks.
type ClerkConfig struct {
	Issuer        string
	ClientID      string
	APIURL        string
	SecretKey     string
	WebhookSecret string
}

// ShareConfig controls signed document share links.
type ShareConfig struct {
	Secret  string
	LinkTTL time.Duration
	BaseURL string
}

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
}

type DocuSignConfig struct {
	BaseURL        string
	AuthServer     string
	IntegrationKey string
	UserID         string
	AccountID      string
	PrivateKeyPEM  string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "claimsaver")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("SHARE_LINK_TTL", 10080)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("CLERK_API_URL", "https://api.clerk.com/v1")
	viper.SetDefault("DOCUSIGN_AUTH_SERVER", "account-d.docusign.com")
	viper.SetDefault("DOCUSIGN_BASE_URL", "https://demo.docusign.net/restapi")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Clerk: ClerkConfig{
			Issuer:        viper.GetString("CLERK_ISSUER"),
			ClientID:      viper.GetString("CLERK_CLIENT_ID"),
			APIURL:        viper.GetString("CLERK_API_URL"),
			SecretKey:     os.Getenv("CLERK_SECRET_KEY"),
			WebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		},
		Share: ShareConfig{
			Secret:  os.Getenv("SHARE_SECRET"),
			LinkTTL: time.Duration(viper.GetInt("SHARE_LINK_TTL")) * time.Minute,
			BaseURL: viper.GetString("SHARE_BASE_URL"),
		},
		Stripe: StripeConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			SuccessURL: viper.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:  viper.GetString("STRIPE_CANCEL_URL"),
		},
		Resend: ResendConfig{
			APIKey:    os.Getenv("RESEND_API_KEY"),
			FromEmail: viper.GetString("RESEND_FROM_EMAIL"),
		},
		DocuSign: DocuSignConfig{
			BaseURL:        viper.GetString("DOCUSIGN_BASE_URL"),
			AuthServer:     viper.GetString("DOCUSIGN_AUTH_SERVER"),
			IntegrationKey: viper.GetString("DOCUSIGN_INTEGRATION_KEY"),
			UserID:         viper.GetString("DOCUSIGN_USER_ID"),
			AccountID:      viper.GetString("DOCUSIGN_ACCOUNT_ID"),
			PrivateKeyPEM:  os.Getenv("DOCUSIGN_PRIVATE_KEY"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	// Basic validation
	if cfg.Share.Secret == "" {
		log.Println("WARNING: SHARE_SECRET is not set; document share links will not be enabled")
	}

	return cfg, nil
}
