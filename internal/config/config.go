package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	// Remote store service
	APIURL         string        `validate:"required,url"`
	RequestTimeout time.Duration `validate:"gt=0"`

	// Storefront server
	Port           string `validate:"required"`
	SessionSecret  string `validate:"required,min=16"`
	AllowedOrigins []string
	SecureCookies  bool

	// Checkout and history
	ShippingFee      decimal.Decimal
	RevalidatePrices bool
	OrdersPageSize   int `validate:"min=1,max=100"`

	// Cart notifications are shared through Redis when set
	RedisURL string

	// Logging and tracing
	LogLevel       string `validate:"oneof=debug info warn error"`
	LogFormat      string `validate:"oneof=console json"`
	TracingEnabled bool

	// Terminal client token storage
	TokenFile string

	// Fake store service for local development
	MockAPIPort string

	// Development mode
	Development bool
}

// Load reads configuration from the environment, then from an optional
// storefront.yaml in the working directory, then built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("storefront")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	v.AutomaticEnv()

	fee, err := decimal.NewFromString(v.GetString("shipping_fee"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIPPING_FEE: %w", err)
	}

	cfg := &Config{
		APIURL:         strings.TrimRight(v.GetString("api_url"), "/"),
		RequestTimeout: v.GetDuration("request_timeout"),

		Port:           v.GetString("port"),
		SessionSecret:  v.GetString("session_secret"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		SecureCookies:  v.GetBool("secure_cookies"),

		ShippingFee:      fee,
		RevalidatePrices: v.GetBool("checkout_revalidate_prices"),
		OrdersPageSize:   v.GetInt("orders_page_size"),

		RedisURL: v.GetString("redis_url"),

		LogLevel:       strings.ToLower(v.GetString("log_level")),
		LogFormat:      strings.ToLower(v.GetString("log_format")),
		TracingEnabled: v.GetBool("tracing_enabled"),

		TokenFile:   v.GetString("token_file"),
		MockAPIPort: v.GetString("mockapi_port"),

		Development: v.GetBool("development"),
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.ShippingFee.IsNegative() {
		return fmt.Errorf("invalid configuration: shipping fee must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:4001")
	v.SetDefault("request_timeout", "15s")

	v.SetDefault("port", "8080")
	v.SetDefault("session_secret", "your-secret-key-change-this-in-production")
	v.SetDefault("allowed_origins", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("secure_cookies", false)

	v.SetDefault("shipping_fee", "40")
	v.SetDefault("checkout_revalidate_prices", true)
	v.SetDefault("orders_page_size", 5)

	v.SetDefault("redis_url", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("tracing_enabled", false)

	v.SetDefault("token_file", "")
	v.SetDefault("mockapi_port", "4001")

	v.SetDefault("development", true)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pcshop", "token")
}
