package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `validate:"required"`
	Server       ServerConfig       `validate:"required"`
	Admin        AdminConfig        `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	Scheduler    SchedulerConfig    `validate:"required"`
	Licensing    LicensingConfig    `validate:"required"`
	Cache        CacheConfig        `validate:"required"`
	Notification NotificationConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required"`
	User                   string `mapstructure:"user" validate:"required"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
	ConnectRetries         uint64 `mapstructure:"connect_retries" default:"5"`
}

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Interval between recurring task ticks
	Interval time.Duration `mapstructure:"interval" validate:"required,min=1s"`
	// Workers bounds how many templates a tick processes concurrently
	Workers int `mapstructure:"workers" validate:"min=1"`
	// MaxCatchUp caps how many missed occurrences of one template a tick generates
	MaxCatchUp           int `mapstructure:"max_catch_up" validate:"min=1"`
	TriggerRatePerMinute int `mapstructure:"trigger_rate_per_minute" validate:"min=1"`
}

type LicensingConfig struct {
	BasePrice            string `mapstructure:"base_price" validate:"required"`
	SeatPrice            string `mapstructure:"seat_price" validate:"required"`
	Currency             string `mapstructure:"currency" validate:"required,len=3"`
	DefaultEmployeeLimit int    `mapstructure:"default_employee_limit" validate:"min=1"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type NotificationConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env file is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kontor")

	// Set up environment variables support
	v.SetEnvPrefix("KONTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("postgres.connect_retries", 5)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "60s")
	v.SetDefault("scheduler.workers", 4)
	v.SetDefault("scheduler.max_catch_up", 12)
	v.SetDefault("scheduler.trigger_rate_per_minute", 6)
	v.SetDefault("licensing.base_price", "2500")
	v.SetDefault("licensing.seat_price", "500")
	v.SetDefault("licensing.currency", "NOK")
	v.SetDefault("licensing.default_employee_limit", types.DefaultEmployeeLimit)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("notification.timeout", "10s")
	v.SetDefault("notification.retries", 3)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Licensing.Pricing(); err != nil {
		return err
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "kontor",
			DBName:  "kontor",
			SSLMode: "disable",
		},
		Scheduler: SchedulerConfig{
			Enabled:              true,
			Interval:             60 * time.Second,
			Workers:              4,
			MaxCatchUp:           12,
			TriggerRatePerMinute: 6,
		},
		Licensing: LicensingConfig{
			BasePrice:            "2500",
			SeatPrice:            "500",
			Currency:             "NOK",
			DefaultEmployeeLimit: types.DefaultEmployeeLimit,
		},
		Cache:        CacheConfig{Enabled: true, TTL: time.Minute},
		Notification: NotificationConfig{Timeout: 10 * time.Second, Retries: 3},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// Pricing holds the license prices the ledger charges
type Pricing struct {
	BasePrice            decimal.Decimal
	SeatPrice            decimal.Decimal
	Currency             string
	DefaultEmployeeLimit int
}

// Pricing parses the configured prices
func (c LicensingConfig) Pricing() (Pricing, error) {
	base, err := decimal.NewFromString(c.BasePrice)
	if err != nil {
		return Pricing{}, fmt.Errorf("licensing.base_price: %w", err)
	}
	seat, err := decimal.NewFromString(c.SeatPrice)
	if err != nil {
		return Pricing{}, fmt.Errorf("licensing.seat_price: %w", err)
	}
	if base.IsNegative() || seat.IsNegative() {
		return Pricing{}, fmt.Errorf("licensing prices must be non negative")
	}

	limit := c.DefaultEmployeeLimit
	if limit <= 0 {
		limit = types.DefaultEmployeeLimit
	}

	return Pricing{
		BasePrice:            base,
		SeatPrice:            seat,
		Currency:             strings.ToUpper(c.Currency),
		DefaultEmployeeLimit: limit,
	}, nil
}
