package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all service settings, populated from environment variables
// and, when CONFIG_FILE is set, a YAML file underneath them.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// Conversion request stream.
	StreamEnabled      bool          `env:"STREAM_ENABLED"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" validate:"required_if=StreamEnabled true,dive,required"`
	KafkaSourceTopic   string        `env:"KAFKA_SOURCE_TOPIC" validate:"required_if=StreamEnabled true"`
	KafkaSinkTopic     string        `env:"KAFKA_SINK_TOPIC" validate:"required_if=StreamEnabled true"`
	KafkaGroupID       string        `env:"KAFKA_GROUP_ID" validate:"required_if=StreamEnabled true"`
	BatchSize          int           `env:"BATCH_SIZE" validate:"min=1,max=1000"`
	BatchFlushInterval time.Duration `env:"BATCH_FLUSH_INTERVAL" validate:"gt=0"`
}

var defaults = map[string]string{
	"HTTP_ADDR":            ":8080",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "json",
	"SHUTDOWN_TIMEOUT":     "10s",
	"STREAM_ENABLED":       "false",
	"KAFKA_BROKERS":        "localhost:9092",
	"KAFKA_SOURCE_TOPIC":   "conversion-requests",
	"KAFKA_SINK_TOPIC":     "conversion-results",
	"KAFKA_GROUP_ID":       "unit-conversion",
	"BATCH_SIZE":           "50",
	"BATCH_FLUSH_INTERVAL": "500ms",
}

var validate = newValidator()

// newValidator reports fields by their environment variable names so that
// errors point at what the operator has to change.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.BindEnv("CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("bind CONFIG_FILE: %w", err)
	}
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read CONFIG_FILE %s: %w", path, err)
		}
	}

	shutdownTimeout, err := envFirst(v, "SHUTDOWN_TIMEOUT", sharedcfg.ParseShutdownTimeout, parseDuration)
	if err != nil {
		return nil, err
	}
	flushInterval, err := envFirst(v, "BATCH_FLUSH_INTERVAL", sharedcfg.ParseBatchFlushInterval, parseDuration)
	if err != nil {
		return nil, err
	}
	batchSize, err := envFirst(v, "BATCH_SIZE", sharedcfg.ParseBatchSize, parseInt)
	if err != nil {
		return nil, err
	}
	streamEnabled, err := parseBool(v, "STREAM_ENABLED")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           strings.TrimSpace(v.GetString("HTTP_ADDR")),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		ShutdownTimeout:    shutdownTimeout,
		StreamEnabled:      streamEnabled,
		KafkaBrokers:       ParseBrokers(v.GetString("KAFKA_BROKERS")),
		KafkaSourceTopic:   strings.TrimSpace(v.GetString("KAFKA_SOURCE_TOPIC")),
		KafkaSinkTopic:     strings.TrimSpace(v.GetString("KAFKA_SINK_TOPIC")),
		KafkaGroupID:       strings.TrimSpace(v.GetString("KAFKA_GROUP_ID")),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New("invalid config: " + strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "gt":
		return name + " must be positive"
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 1000, got %v", name, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

// ParseBrokers splits a comma-separated broker list, dropping blanks. It
// returns nil when no broker remains so a blank list fails validation.
func ParseBrokers(s string) []string {
	brokers := sharedcfg.ParseBrokers(s)
	if len(brokers) == 0 {
		return nil
	}
	return brokers
}

// envFirst reads key with the shared environment parser when the variable is
// set, and from the config file or default otherwise.
func envFirst[T any](v *viper.Viper, key string, fromEnv func() (T, error), fromConfig func(*viper.Viper, string) (T, error)) (T, error) {
	if os.Getenv(key) != "" {
		return fromEnv()
	}
	return fromConfig(v, key)
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(key))
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}
