/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @notes
 * - The signing secret, gateway key pair, and currency are required at
 *   process start; a missing value is a startup-fatal configuration error,
 *   never a per-request one.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the credits-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours           int    `mapstructure:"JWT_EXPIRY_HOURS"`
	RazorpayAPIBaseURL       string `mapstructure:"RAZORPAY_API_BASE_URL"`
	RazorpayKeyID            string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret        string `mapstructure:"RAZORPAY_KEY_SECRET"`
	Currency                 string `mapstructure:"CURRENCY"`
	CurrencySubunitFactor    int64  `mapstructure:"CURRENCY_SUBUNIT_FACTOR"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	VerifyRateLimitPerMinute int    `mapstructure:"VERIFY_RATE_LIMIT_PER_MINUTE"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	CreditEventsExchange     string `mapstructure:"CREDIT_EVENTS_EXCHANGE"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct and validates the startup-required values.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("RAZORPAY_API_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("CURRENCY_SUBUNIT_FACTOR", 100)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "imagify:rate_limit")
	viper.SetDefault("VERIFY_RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("CREDIT_EVENTS_EXCHANGE", "imagify.events")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_EXPIRY_HOURS")
	_ = viper.BindEnv("RAZORPAY_API_BASE_URL")
	_ = viper.BindEnv("RAZORPAY_KEY_ID")
	_ = viper.BindEnv("RAZORPAY_KEY_SECRET")
	_ = viper.BindEnv("CURRENCY")
	_ = viper.BindEnv("CURRENCY_SUBUNIT_FACTOR")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("VERIFY_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("CREDIT_EVENTS_EXCHANGE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	if config.JWTExpiryHours <= 0 {
		config.JWTExpiryHours = 24
	}
	if config.CurrencySubunitFactor <= 0 {
		config.CurrencySubunitFactor = 100
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "imagify:rate_limit"
	}

	var missing []string
	for env, value := range map[string]string{
		"DATABASE_URL":        config.DatabaseURL,
		"JWT_SECRET":          config.JWTSecret,
		"RAZORPAY_KEY_ID":     config.RazorpayKeyID,
		"RAZORPAY_KEY_SECRET": config.RazorpayKeySecret,
		"CURRENCY":            config.Currency,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return config, nil
}
