package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort      string `mapstructure:"APP_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	Env          string `mapstructure:"ENV"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisEventDB  int    `mapstructure:"REDIS_EVENT_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment gateway (hosted checkout).
	PaymentAPIKey      string `mapstructure:"PAYMENT_API_KEY"`
	PaymentCallbackURL string `mapstructure:"PAYMENT_CALLBACK_URL"`
	PaymentCurrency    string `mapstructure:"PAYMENT_CURRENCY"`
	PaymentTimeoutSec  int    `mapstructure:"PAYMENT_TIMEOUT_SEC"`

	// Billing policy.
	TaxRatePercent       float64 `mapstructure:"TAX_RATE_PERCENT"`
	CancellationFeePct   float64 `mapstructure:"CANCELLATION_FEE_PERCENT"`
	PendingHoldWindowMin int     `mapstructure:"PENDING_HOLD_WINDOW_MIN"`
	SweepIntervalMin     int     `mapstructure:"SWEEP_INTERVAL_MIN"`
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

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "meserte")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_EVENT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("PAYMENT_API_KEY", "")
	viper.SetDefault("PAYMENT_CALLBACK_URL", "http://localhost:8080/api/payments/webhook")
	viper.SetDefault("PAYMENT_CURRENCY", "etb")
	viper.SetDefault("PAYMENT_TIMEOUT_SEC", 30)
	viper.SetDefault("TAX_RATE_PERCENT", 15.0)
	viper.SetDefault("CANCELLATION_FEE_PERCENT", 5.0)
	viper.SetDefault("PENDING_HOLD_WINDOW_MIN", 30)
	viper.SetDefault("SWEEP_INTERVAL_MIN", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
