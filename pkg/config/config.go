package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/pkg/aws"
	"github.com/storacha/redirector/pkg/build"
	"github.com/storacha/redirector/pkg/mapping"
)

const DefaultServicePort = 3000

// Source types.
const (
	SourceS3        = "s3"
	SourceFile      = "file"
	SourceDatastore = "datastore"
)

// ServerConfig contains settings for the local HTTP server
type ServerConfig struct {
	Port           int           `toml:"port" json:"port" mapstructure:"port" validate:"min=1,max=65535" flag:"port"`
	RequestTimeout time.Duration `toml:"request_timeout" json:"request_timeout" mapstructure:"request_timeout" validate:"min=0"`

	// HealthCheckPath is answered with 200 ok instead of being resolved as a
	// slug. Empty disables the health check.
	HealthCheckPath string `toml:"health_check" json:"health_check" mapstructure:"health_check" validate:"omitempty,startswith=/"`
}

// SourceConfig says where the mapping document is read from
type SourceConfig struct {
	Type            string        `toml:"type" json:"type" mapstructure:"type" validate:"required,oneof=s3 file datastore" flag:"source"`
	FetchTimeout    time.Duration `toml:"fetch_timeout" json:"fetch_timeout" mapstructure:"fetch_timeout" validate:"min=0" flag:"fetch-timeout"`
	Path            string        `toml:"path" json:"path" mapstructure:"path" flag:"file"`
	DataDir         string        `toml:"data_dir" json:"data_dir" mapstructure:"data_dir" flag:"data-dir"`
	Name            string        `toml:"name" json:"name" mapstructure:"name"`
	Bucket          string        `toml:"bucket" json:"bucket" mapstructure:"bucket" flag:"bucket"`
	Key             string        `toml:"key" json:"key" mapstructure:"key" flag:"key"`
	Region          string        `toml:"region" json:"region" mapstructure:"region" flag:"region"`
	Endpoint        string        `toml:"endpoint" json:"endpoint" mapstructure:"endpoint" validate:"omitempty,url" flag:"endpoint"`
	AccessKeyID     string        `toml:"access_key_id" json:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string        `toml:"secret_access_key" json:"secret_access_key" mapstructure:"secret_access_key"`
}

// SentryConfig contains error reporting settings
type SentryConfig struct {
	DSN         string `toml:"dsn" json:"dsn" mapstructure:"dsn"`
	Environment string `toml:"environment" json:"environment" mapstructure:"environment"`
}

// Config represents the full configuration of a local redirector
type Config struct {
	Server ServerConfig `toml:"server" json:"server" mapstructure:"server"`
	Source SourceConfig `toml:"source" json:"source" mapstructure:"source"`
	Sentry SentryConfig `toml:"sentry" json:"sentry" mapstructure:"sentry"`
}

// LoadConfig handles the entire configuration loading process, with
// flags > environment variables > config file > defaults
func LoadConfig(cCtx *cli.Context) (*Config, error) {
	cfg, err := load(cCtx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	fromCLI(cCtx, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate performs validation on the configuration values and returns any errors.
func (cfg *Config) Validate() error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	var errs error
	switch cfg.Source.Type {
	case SourceS3:
		if cfg.Source.Bucket == "" {
			errs = multierror.Append(errs, fmt.Errorf("bucket is required for the s3 source"))
		}
		if cfg.Source.Key == "" {
			errs = multierror.Append(errs, fmt.Errorf("key is required for the s3 source"))
		}
		if (cfg.Source.AccessKeyID == "") != (cfg.Source.SecretAccessKey == "") {
			errs = multierror.Append(errs, fmt.Errorf("access key id and secret access key must be set together"))
		}
	case SourceFile:
		if cfg.Source.Path == "" {
			errs = multierror.Append(errs, fmt.Errorf("path is required for the file source"))
		}
	case SourceDatastore:
		if cfg.Source.DataDir == "" {
			errs = multierror.Append(errs, fmt.Errorf("data directory is required for the datastore source"))
		}
		if cfg.Source.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("document name is required for the datastore source"))
		}
	}
	return errs
}

// load reads the configuration from the given path, if any, and the
// environment. It preserves default values for fields left unset.
func load(path string) (*Config, error) {
	v, err := setupViperWithDefaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if stat, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file path does not exist: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file at path %s: %w", path, err)
		} else if stat.IsDir() {
			return nil, fmt.Errorf("config file path points to a directory: %s", path)
		}

		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// newDefault creates a new configuration with pure default values.
func newDefault() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           DefaultServicePort,
			RequestTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Type:         SourceS3,
			FetchTimeout: mapping.DefaultTimeout,
			Bucket:       build.ConfigBucket,
			Key:          build.ConfigKey,
			Region:       aws.DefaultRegion,
			Name:         "/redirects",
		},
	}
}

// fromCLI loads configuration values from CLI flags
func fromCLI(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("port") {
		cfg.Server.Port = ctx.Int("port")
	}
	if ctx.IsSet("source") {
		cfg.Source.Type = ctx.String("source")
	}
	if ctx.IsSet("fetch-timeout") {
		cfg.Source.FetchTimeout = ctx.Duration("fetch-timeout")
	}
	if ctx.IsSet("file") {
		cfg.Source.Path = ctx.String("file")
	}
	if ctx.IsSet("data-dir") {
		cfg.Source.DataDir = ctx.String("data-dir")
	}
	if ctx.IsSet("bucket") {
		cfg.Source.Bucket = ctx.String("bucket")
	}
	if ctx.IsSet("key") {
		cfg.Source.Key = ctx.String("key")
	}
	if ctx.IsSet("region") {
		cfg.Source.Region = ctx.String("region")
	}
	if ctx.IsSet("endpoint") {
		cfg.Source.Endpoint = ctx.String("endpoint")
	}
}

// setupViperWithDefaults creates a new Viper instance with default values and environment bindings
func setupViperWithDefaults() (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("REDIRECTOR")
	v.AutomaticEnv()

	envMappings := map[string]string{
		"server.port":              "PORT",
		"server.request_timeout":   "REQUEST_TIMEOUT",
		"server.health_check":      "HEALTH_CHECK",
		"source.type":              "SOURCE",
		"source.fetch_timeout":     "FETCH_TIMEOUT",
		"source.path":              "FILE",
		"source.data_dir":          "DATA_DIR",
		"source.name":              "DOCUMENT_NAME",
		"source.bucket":            "BUCKET",
		"source.key":               "KEY",
		"source.region":            "REGION",
		"source.endpoint":          "ENDPOINT",
		"source.access_key_id":     "ACCESS_KEY_ID",
		"source.secret_access_key": "SECRET_ACCESS_KEY",
		"sentry.dsn":               "SENTRY_DSN",
		"sentry.environment":       "SENTRY_ENVIRONMENT",
	}

	for key, envVar := range envMappings {
		if err := v.BindEnv(key, "REDIRECTOR_"+envVar); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", key, err)
		}
	}

	defaultCfg := newDefault()
	v.SetDefault("server.port", defaultCfg.Server.Port)
	v.SetDefault("server.request_timeout", defaultCfg.Server.RequestTimeout)
	v.SetDefault("server.health_check", defaultCfg.Server.HealthCheckPath)
	v.SetDefault("source.type", defaultCfg.Source.Type)
	v.SetDefault("source.fetch_timeout", defaultCfg.Source.FetchTimeout)
	v.SetDefault("source.bucket", defaultCfg.Source.Bucket)
	v.SetDefault("source.key", defaultCfg.Source.Key)
	v.SetDefault("source.region", defaultCfg.Source.Region)
	v.SetDefault("source.name", defaultCfg.Source.Name)

	return v, nil
}
