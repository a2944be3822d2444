package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrConfiguration is returned when required settings are missing or malformed.
var ErrConfiguration = errors.New("invalid configuration")

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	Mode           string   `mapstructure:"mode" yaml:"mode"`
	BaseURL        string   `mapstructure:"base_url" yaml:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// RateLimit applies to the public payment endpoints when Redis is enabled
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "mysql" (default) or "sqlite"
	Driver          string `mapstructure:"driver" yaml:"driver"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	Password        string `mapstructure:"password" yaml:"password"`
	Database        string `mapstructure:"database" yaml:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret" yaml:"secret"`
	Issuer           string `mapstructure:"issuer" yaml:"issuer"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes" yaml:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port" yaml:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user" yaml:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password" yaml:"smtp_password"`
	FromAddress  string `mapstructure:"from_address" yaml:"from_address"`
	FromName     string `mapstructure:"from_name" yaml:"from_name"`
	// ReviewRecipients receive integrity alerts for rejected gateway notifications
	ReviewRecipients []string `mapstructure:"review_recipients" yaml:"review_recipients"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	// Enabled turns on the notification delivery lock
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig holds the card gateway merchant settings. Merchant code, terminal
// and secret key have no defaults.
type GatewayConfig struct {
	MerchantCode string `mapstructure:"merchant_code" yaml:"merchant_code"`
	Terminal     string `mapstructure:"terminal" yaml:"terminal"`
	// SecretKey decodes to the 24-byte 3DES merchant key
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	// SecretKeyEncoding is "base64" or "hex"
	SecretKeyEncoding string `mapstructure:"secret_key_encoding" yaml:"secret_key_encoding"`
	// Currency is the ISO 4217 numeric code, 978 for EUR
	Currency     string `mapstructure:"currency" yaml:"currency"`
	MerchantName string `mapstructure:"merchant_name" yaml:"merchant_name"`
	// Environment is "test" or "production" and selects the gateway URLs
	Environment string `mapstructure:"environment" yaml:"environment"`
	// FormURL and RESTURL override the environment URLs when set
	FormURL string `mapstructure:"form_url" yaml:"form_url"`
	RESTURL string `mapstructure:"rest_url" yaml:"rest_url"`
	// PublicBaseURL is our externally reachable base, used for callback URLs
	PublicBaseURL    string        `mapstructure:"public_base_url" yaml:"public_base_url"`
	SuccessPath      string        `mapstructure:"success_path" yaml:"success_path"`
	FailurePath      string        `mapstructure:"failure_path" yaml:"failure_path"`
	NotificationPath string        `mapstructure:"notification_path" yaml:"notification_path"`
	DefaultLanguage  string        `mapstructure:"default_language" yaml:"default_language"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

const (
	GatewayEnvironmentTest       = "test"
	GatewayEnvironmentProduction = "production"
)

// Validate checks every setting the gateway client needs. It does not decode
// the secret key; that happens when the client is constructed.
func (g *GatewayConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(g.MerchantCode) == "" {
		missing = append(missing, "merchant_code")
	}
	if strings.TrimSpace(g.Terminal) == "" {
		missing = append(missing, "terminal")
	}
	if strings.TrimSpace(g.SecretKey) == "" {
		missing = append(missing, "secret_key")
	}
	if strings.TrimSpace(g.Currency) == "" {
		missing = append(missing, "currency")
	}
	if strings.TrimSpace(g.PublicBaseURL) == "" {
		missing = append(missing, "public_base_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: gateway settings missing: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	switch g.Environment {
	case GatewayEnvironmentTest, GatewayEnvironmentProduction:
	case "":
		if g.FormURL == "" || g.RESTURL == "" {
			return fmt.Errorf("%w: gateway environment or explicit form_url and rest_url required", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown gateway environment %q", ErrConfiguration, g.Environment)
	}

	switch strings.ToLower(g.SecretKeyEncoding) {
	case "", "base64", "hex":
	default:
		return fmt.Errorf("%w: unknown secret_key_encoding %q", ErrConfiguration, g.SecretKeyEncoding)
	}

	for name, raw := range map[string]string{
		"public_base_url": g.PublicBaseURL,
		"form_url":        g.FormURL,
		"rest_url":        g.RESTURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL, got %q", ErrConfiguration, name, raw)
		}
	}

	if g.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout must not be negative", ErrConfiguration)
	}
	return nil
}

type SchedulerConfig struct {
	// ReleaseInterval is how often stale preauthorizations are looked for
	ReleaseInterval time.Duration `mapstructure:"release_interval" yaml:"release_interval"`
	// HoldWindow is how long a preauthorization may stay unconfirmed
	HoldWindow time.Duration `mapstructure:"hold_window" yaml:"hold_window"`
	BatchSize  int           `mapstructure:"batch_size" yaml:"batch_size"`
}

// Validate rejects scheduler settings that would release live holds or spin
// the release job.
func (s SchedulerConfig) Validate() error {
	if s.HoldWindow <= 0 {
		return fmt.Errorf("%w: scheduler.hold_window must be positive, got %s", ErrConfiguration, s.HoldWindow)
	}
	if s.ReleaseInterval <= 0 {
		return fmt.Errorf("%w: scheduler.release_interval must be positive, got %s", ErrConfiguration, s.ReleaseInterval)
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("%w: scheduler.batch_size must not be negative", ErrConfiguration)
	}
	return nil
}
