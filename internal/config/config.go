// Package config provides configuration management for the provisioning console.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like DATABASE_URL, LOG_LEVEL)
// 3. Default values
//
// Import Path: hostconsole.io/provisioning/internal/config
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"hostconsole.io/provisioning/internal/domain"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
	"hostconsole.io/provisioning/internal/pxeloader"
)

// Config is the root configuration structure.
type Config struct {
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          LogConfig          `mapstructure:"log"`
	River        RiverConfig        `mapstructure:"river"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Loader       LoaderConfig       `mapstructure:"loader"`
	Notification NotificationConfig `mapstructure:"notification"`
	Mail         MailConfig         `mapstructure:"mail"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	// ConnectRetry bounds how long startup retries the first ping.
	ConnectRetry time.Duration `mapstructure:"connect_retry"`

	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// RiverConfig contains River Queue settings.
type RiverConfig struct {
	MaxWorkers                  int           `mapstructure:"max_workers"`
	CompletedJobRetentionPeriod time.Duration `mapstructure:"completed_job_retention_period"`
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	GeneralPoolSize int `mapstructure:"general_pool_size"`
	MailPoolSize    int `mapstructure:"mail_pool_size"`
}

// MetricsConfig contains the Prometheus endpoint settings. An empty Addr
// disables the endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoaderConfig selects how the preferred PXE loader is chosen.
type LoaderConfig struct {
	// PreferencePolicy is "precedence" or "declared".
	PreferencePolicy string `mapstructure:"preference_policy"`

	// Precedence ranks loader kinds for the "precedence" policy, highest first.
	Precedence []string `mapstructure:"precedence"`

	// CatalogFile optionally extends the built-in loader catalog.
	CatalogFile string `mapstructure:"catalog_file"`
}

// Catalog returns the default catalog extended with CatalogFile, if set.
func (c LoaderConfig) Catalog() (*pxeloader.Catalog, error) {
	if c.CatalogFile == "" {
		return pxeloader.DefaultCatalog(), nil
	}
	return pxeloader.LoadCatalogFile(c.CatalogFile, pxeloader.DefaultCatalog())
}

// PrecedenceKinds returns Precedence as loader kinds, dropping blanks.
func (c LoaderConfig) PrecedenceKinds() []domain.LoaderKind {
	out := make([]domain.LoaderKind, 0, len(c.Precedence))
	for _, k := range c.Precedence {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, domain.LoaderKind(k))
		}
	}
	return out
}

// Notification delivery modes.
const (
	DeliveryInline = "inline"
	DeliveryPool   = "pool"
	DeliveryQueue  = "queue"
)

// NotificationConfig controls failed-report mail.
type NotificationConfig struct {
	FailedReportEmail bool   `mapstructure:"failed_report_email"`
	Administrator     string `mapstructure:"administrator"`
	Delivery          string `mapstructure:"delivery"` // inline, pool or queue
}

// MailConfig contains outbound SMTP settings.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Addr returns host:port of the SMTP relay.
func (c MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables.
// Environment variables use standard names without prefix.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/provisioning-console")

	// Maps nested config: loader.preference_policy → LOADER_PREFERENCE_POLICY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if _, err := pxeloader.PolicyByName(c.Loader.PreferencePolicy, c.Loader.PrecedenceKinds()); err != nil {
		return apperrors.Wrap(err, apperrors.CodeConfigInvalid,
			fmt.Sprintf("loader.preference_policy %q must be precedence or declared", c.Loader.PreferencePolicy))
	}
	catalog, err := c.Loader.Catalog()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeConfigInvalid, "loader.catalog_file is not a valid loader catalog")
	}
	for _, kind := range c.Loader.PrecedenceKinds() {
		if !catalog.Contains(kind) {
			return apperrors.Invalid(apperrors.CodeConfigInvalid,
				fmt.Sprintf("loader.precedence names unknown loader kind %q", kind))
		}
	}

	switch c.Notification.Delivery {
	case DeliveryInline, DeliveryPool, DeliveryQueue:
	default:
		return apperrors.Invalid(apperrors.CodeConfigInvalid,
			fmt.Sprintf("notification.delivery %q must be inline, pool or queue", c.Notification.Delivery))
	}

	if c.Notification.FailedReportEmail {
		if c.Notification.Administrator == "" {
			return apperrors.Invalid(apperrors.CodeConfigInvalid,
				"notification.administrator is required when failed_report_email is enabled")
		}
		if c.Mail.Host == "" || c.Mail.From == "" {
			return apperrors.Invalid(apperrors.CodeConfigInvalid,
				"mail.host and mail.from are required when failed_report_email is enabled")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Database
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "provisioning")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "provisioning")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.connect_retry", "30s")
	v.SetDefault("database.auto_migrate", true)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// River
	v.SetDefault("river.max_workers", 10)
	v.SetDefault("river.completed_job_retention_period", "24h")

	// Worker Pool
	v.SetDefault("worker.general_pool_size", 50)
	v.SetDefault("worker.mail_pool_size", 10)

	// Metrics
	v.SetDefault("metrics.addr", ":9464")

	// Loader
	v.SetDefault("loader.preference_policy", "precedence")
	v.SetDefault("loader.precedence", []string{"PXEGrub2", "PXELinux", "PXEGrub"})
	v.SetDefault("loader.catalog_file", "")

	// Notification
	v.SetDefault("notification.failed_report_email", false)
	v.SetDefault("notification.administrator", "")
	v.SetDefault("notification.delivery", DeliveryQueue)

	// Mail
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 25)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
}
