package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	StoreDriver   string // mongo or memory
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int

	AuthRateLimit float64
	AuthRateBurst int

	Payment PaymentConfig

	TextbeltAPIKey string

	LogLevel  string
	LogFormat string // console or json
}

type PaymentConfig struct {
	BaseURL     string
	SessionPath string
	SuccessURL  string
	CancelURL   string
	Timeout     time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_port", "8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("store_driver", "mongo")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "medisync")
	v.SetDefault("jwt_expiry", 10*time.Hour)
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("auth_rate_limit", 5.0)
	v.SetDefault("auth_rate_burst", 10)
	v.SetDefault("payment_session_path", "/payments/session")
	v.SetDefault("payment_success_url", "http://localhost:3000/payment/success")
	v.SetDefault("payment_cancel_url", "http://localhost:3000/payment/cancel")
	v.SetDefault("payment_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads .env, an optional config.yaml and the environment, in increasing
// order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("api_port"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		StoreDriver:     strings.ToLower(v.GetString("store_driver")),
		MongoURI:        v.GetString("mongo_uri"),
		MongoDatabase:   v.GetString("mongo_database"),
		RedisURL:        v.GetString("redis_url"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTExpiry:       v.GetDuration("jwt_expiry"),
		BcryptCost:      v.GetInt("bcrypt_cost"),
		AuthRateLimit:   v.GetFloat64("auth_rate_limit"),
		AuthRateBurst:   v.GetInt("auth_rate_burst"),
		Payment: PaymentConfig{
			BaseURL:     strings.TrimRight(v.GetString("payment_service_url"), "/"),
			SessionPath: v.GetString("payment_session_path"),
			SuccessURL:  v.GetString("payment_success_url"),
			CancelURL:   v.GetString("payment_cancel_url"),
			Timeout:     v.GetDuration("payment_timeout"),
		},
		TextbeltAPIKey: v.GetString("textbelt_api_key"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
