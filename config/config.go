package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	FrontendURL       string `mapstructure:"FRONTEND_URL"`
	PublicURL         string `mapstructure:"PUBLIC_URL"`

	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google Maps API Key, used for geocoding.
	GoogleAPIKey    string        `mapstructure:"GOOGLE_API_KEY"`
	GeocodeTimeout  time.Duration `mapstructure:"GEOCODE_TIMEOUT"`
	GeocodeCacheTTL time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`

	// Tokens and cookies.
	AccessTokenSecret  string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	GoogleClientID     string        `mapstructure:"GOOGLE_CLIENT_ID"`
	CookieDomain       string        `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`

	// Billing.
	StripeSecretKey    string `mapstructure:"STRIPE_SECRET_KEY"`
	SpecialUserEmails  string `mapstructure:"SPECIAL_USER_EMAILS"`
	SpecialMaxListings int    `mapstructure:"SPECIAL_MAX_LISTINGS"`

	// Media.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Analytics.
	GAPropertyID         string `mapstructure:"GA_PROPERTY_ID"`
	GoogleCredentialsB64 string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS_B64"`

	// Mail.
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	// Search paging.
	SearchDefaultPageSize int `mapstructure:"SEARCH_DEFAULT_PAGE_SIZE"`
	SearchMaxPageSize     int `mapstructure:"SEARCH_MAX_PAGE_SIZE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "roaddarts")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_AUTH_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("GEOCODE_TIMEOUT", 3*time.Second)
	v.SetDefault("GEOCODE_CACHE_TTL", 24*time.Hour)
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("SPECIAL_USER_EMAILS", "")
	v.SetDefault("SPECIAL_MAX_LISTINGS", 100)
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("GA_PROPERTY_ID", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS_B64", "")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("MAIL_FROM", "Road Darts <no-reply@roaddarts.com>")
	v.SetDefault("SEARCH_DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("SEARCH_MAX_PAGE_SIZE", 100)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SpecialEmails returns the lower-cased list of accounts with elevated listing limits.
func (c Config) SpecialEmails() []string {
	var out []string
	for _, e := range strings.Split(c.SpecialUserEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}
