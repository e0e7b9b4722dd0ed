package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"dispatch/internal/jobs"
	"dispatch/internal/pkg/errs"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTPPort string `koanf:"http_port"`

	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSslMode  string `koanf:"db_sslmode"`

	LockTimeout     time.Duration `koanf:"lock_timeout"`
	PersistTimeout  time.Duration `koanf:"persist_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	NotifierBufferSize int `koanf:"notifier_buffer_size"`

	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	MQTTBroker   string `koanf:"mqtt_broker"`
	MQTTClientID string `koanf:"mqtt_client_id"`

	AuditSchedule string `koanf:"audit_schedule"`
	AutoMigrate   bool   `koanf:"auto_migrate"`
	LogLevel      string `koanf:"log_level"`
}

// DefaultConfig holds the values used for keys no source sets.
func DefaultConfig() Config {
	return Config{
		HTTPPort:           "8080",
		DBPort:             "5432",
		DBSslMode:          "disable",
		LockTimeout:        2 * time.Second,
		PersistTimeout:     5 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		NotifierBufferSize: 256,
		KafkaTopic:         "dispatch.events",
		MQTTClientID:       "dispatch-coordinator",
		AuditSchedule:      jobs.DefaultAuditSchedule,
		LogLevel:           "info",
	}
}

// LoadConfig reads the configuration from, in increasing precedence, the
// defaults, the YAML file at path (optional when empty) and the process
// environment. A .env file in the working directory is loaded into the
// environment first if present. Keys are the lower-cased variable names,
// e.g. DB_HOST sets db_host.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
		default:
			return Config{}, fmt.Errorf("unsupported config format: %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	return cfg, cfg.Validate()
}

// compact trims list entries and drops empty ones, so "a, b," reads as [a b].
func compact(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate reports every missing or out of range setting at once.
func (c Config) Validate() error {
	var problems []error

	if c.DBHost == "" {
		problems = append(problems, errs.NewValueIsRequiredError("db_host"))
	}
	if c.DBUser == "" {
		problems = append(problems, errs.NewValueIsRequiredError("db_user"))
	}
	if c.DBName == "" {
		problems = append(problems, errs.NewValueIsRequiredError("db_name"))
	}
	if c.LockTimeout <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("lock_timeout", fmt.Errorf("%s is not positive", c.LockTimeout)))
	}
	if c.PersistTimeout <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("persist_timeout", fmt.Errorf("%s is not positive", c.PersistTimeout)))
	}
	if c.NotifierBufferSize < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("notifier_buffer_size", c.NotifierBufferSize, 1, "unbounded"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		problems = append(problems, errs.NewValueIsRequiredError("kafka_topic"))
	}
	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err)
	}

	return errors.Join(problems...)
}

// DSN is the libpq connection string of the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("log_level", err)
	}
	return level, nil
}
