package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/tourbook/tourbook/internal/shared/config"
)

// EnvPrefix is prepended to every environment override, e.g.
// TOURBOOK_GATEWAY_SECRET_KEY for gateway.secret_key.
const EnvPrefix = "TOURBOOK"

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email" yaml:"email"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Gateway   sharedConfig.GatewayConfig   `mapstructure:"gateway" yaml:"gateway"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	// Timezone is the business timezone used for day boundaries in logs and reports
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from configs/config.yaml and TOURBOOK_* environment
// variables. A non-empty env other than "default" overrides server.mode.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	cfg, err := load(v, env)
	if err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = cfg
	appConfigMu.Unlock()

	return cfg, nil
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path, env string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	cfg, err := load(v, env)
	if err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = cfg
	appConfigMu.Unlock()

	return cfg, nil
}

func load(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindSecrets(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Scheduler.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// bindSecrets registers keys that have no default so AutomaticEnv can still
// fill them from the environment during Unmarshal.
func bindSecrets(v *viper.Viper) {
	for _, key := range []string{
		"gateway.merchant_code",
		"gateway.terminal",
		"gateway.secret_key",
		"auth.jwt.secret",
		"database.password",
		"email.smtp_password",
		"redis.password",
	} {
		_ = v.BindEnv(key)
	}
}

// setDefaults sets default configuration values. Merchant credentials are
// deliberately absent.
func setDefaults(v *viper.Viper) {
	v.SetDefault("timezone", "Europe/Madrid")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit.requests", 60)
	v.SetDefault("server.rate_limit.window", "1m")

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.database", "tourbook_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.jwt.issuer", "tourbook")
	v.SetDefault("auth.jwt.access_exp_minutes", 15)

	// Email defaults
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from_address", "payments@tourbook.local")
	v.SetDefault("email.from_name", "Tourbook Payments")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Gateway defaults
	v.SetDefault("gateway.environment", sharedConfig.GatewayEnvironmentTest)
	v.SetDefault("gateway.secret_key_encoding", "base64")
	v.SetDefault("gateway.currency", "978")
	v.SetDefault("gateway.notification_path", "/payments/notification")
	v.SetDefault("gateway.success_path", "/checkout/ok")
	v.SetDefault("gateway.failure_path", "/checkout/ko")
	v.SetDefault("gateway.default_language", "es")
	v.SetDefault("gateway.request_timeout", "30s")

	// Scheduler defaults
	v.SetDefault("scheduler.release_interval", "15m")
	v.SetDefault("scheduler.hold_window", "144h")
	v.SetDefault("scheduler.batch_size", 50)
}
