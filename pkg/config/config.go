package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	// Endpoint overrides the service endpoint, e.g. http://localhost:8000 for DynamoDB Local.
	Endpoint string `mapstructure:"endpoint"`
}

type DynamoDBConfig struct {
	AccountsTable    string `mapstructure:"accounts_table"`
	LedgerTable      string `mapstructure:"ledger_table"`
	ConsentsTable    string `mapstructure:"consents_table"`
	PermissionsTable string `mapstructure:"permissions_table"`
}

type SQSConfig struct {
	QueueURL string `mapstructure:"queue_url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type PrivacyConfig struct {
	ScoreTTL time.Duration `mapstructure:"score_ttl"`
}

type LedgerConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
}

type AppConfig struct {
	ServiceName string         `mapstructure:"service_name"`
	Env         string         `mapstructure:"env"`
	LogLevel    string         `mapstructure:"log_level"`
	MetricsPath string         `mapstructure:"metrics_path"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	AWS         AWSConfig      `mapstructure:"aws"`
	DynamoDB    DynamoDBConfig `mapstructure:"dynamodb"`
	SQS         SQSConfig      `mapstructure:"sqs"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Privacy     PrivacyConfig  `mapstructure:"privacy"`
	Ledger      LedgerConfig   `mapstructure:"ledger"`
}

// Load reads path (if it exists) and overlays ETHICALBANK_* environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ETHICALBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports the first missing required setting.
func (c *AppConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"dynamodb.accounts_table", c.DynamoDB.AccountsTable},
		{"dynamodb.ledger_table", c.DynamoDB.LedgerTable},
		{"dynamodb.consents_table", c.DynamoDB.ConsentsTable},
		{"dynamodb.permissions_table", c.DynamoDB.PermissionsTable},
		{"auth.jwt_secret", c.Auth.JWTSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("config: %s is required", r.key)
		}
	}
	if c.Ledger.MaxAttempts < 1 {
		return fmt.Errorf("config: ledger.max_attempts must be at least 1")
	}
	return nil
}

// Every key needs a default, even an empty one, so AutomaticEnv can populate it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "ethicalbank")
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "5s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("dynamodb.accounts_table", "")
	v.SetDefault("dynamodb.ledger_table", "")
	v.SetDefault("dynamodb.consents_table", "")
	v.SetDefault("dynamodb.permissions_table", "")
	v.SetDefault("sqs.queue_url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("privacy.score_ttl", "30m")
	v.SetDefault("ledger.max_attempts", 3)
}
