package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	spfviper "github.com/spf13/viper"

	"github.com/hammingai/hammingctl/internal/credentials"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/hammingai/hammingctl/internal/viper"
)

// Defaults.
const (
	DefaultBaseURL    = "https://app.hamming.ai"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultEnvFile    = ".env"
)

// ConfigurationError is returned when the configuration is incomplete or invalid. It is never worth retrying.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Config is the client configuration. It is constructed once at startup and handed to every component by value.
type Config struct {
	APIKey     string        `mapstructure:"apiKey" yaml:"apiKey"`
	BaseURL    string        `mapstructure:"baseUrl" yaml:"baseUrl"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"maxRetries" yaml:"maxRetries"`
	Debug      bool          `mapstructure:"debug" yaml:"debug"`
	// RequestsPerSecond limits the outgoing request rate of a single client. Zero means unlimited.
	RequestsPerSecond float64 `mapstructure:"rateLimit" yaml:"rateLimit"`

	Poll Poll `mapstructure:"poll" yaml:"poll"`

	// Source describes where the API key came from. Never the key itself.
	Source string `mapstructure:"-" yaml:"-"`
}

// Poll configures how test runs are awaited.
type Poll struct {
	Interval  time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	OnTimeout string        `mapstructure:"onTimeout" yaml:"onTimeout"`
}

// Options converts the poll settings into poll.Options.
func (p Poll) Options() (poll.Options, error) {
	policy := poll.TimeoutFail
	if p.OnTimeout != "" {
		var err error
		if policy, err = poll.ParseTimeoutPolicy(p.OnTimeout); err != nil {
			return poll.Options{}, err
		}
	}

	return poll.Options{
		Interval:  p.Interval,
		Timeout:   p.Timeout,
		OnTimeout: policy,
	}, nil
}

// Validate checks the configuration for completeness.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigurationError{Field: "apiKey", Reason: msg.MissingAPIKey}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return &ConfigurationError{Field: "baseUrl", Reason: msg.InvalidBaseURL, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{Field: "baseUrl", Reason: msg.InvalidBaseURL}
	}

	if c.Timeout <= 0 {
		return &ConfigurationError{Field: "timeout", Reason: "must be positive"}
	}
	if c.MaxRetries < 0 {
		return &ConfigurationError{Field: "maxRetries", Reason: "must not be negative"}
	}
	if c.RequestsPerSecond < 0 {
		return &ConfigurationError{Field: "rateLimit", Reason: "must not be negative"}
	}
	if _, err := c.Poll.Options(); err != nil {
		return &ConfigurationError{Field: "poll.onTimeout", Reason: msg.InvalidTimeoutPolicy, Err: err}
	}

	return nil
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile is an optional YAML file.
	ConfigFile string
	// EnvFile is a dotenv file. Defaults to DefaultEnvFile; a missing file is not an error.
	EnvFile string
	// Flags are bound to the config keys of the same meaning, see flagNames.
	Flags *pflag.FlagSet
	// SkipCredentialsFile disables the fallback to the persisted credentials.
	SkipCredentialsFile bool
}

// flagNames maps config keys to the CLI flags that can override them.
var flagNames = map[string]string{
	"apiKey":          "api-key",
	"baseUrl":         "api-url",
	"timeout":         "timeout",
	"maxRetries":      "max-retries",
	"debug":           "debug",
	"rateLimit":       "rate-limit",
	"poll::interval":  "poll-interval",
	"poll::timeout":   "poll-timeout",
	"poll::onTimeout": "timeout-policy",
}

// envNames maps config keys to their environment variables, sans the HAMMING_ prefix.
var envNames = map[string]string{
	"apiKey":          "API_KEY",
	"baseUrl":         "API_URL",
	"timeout":         "TIMEOUT",
	"maxRetries":      "MAX_RETRIES",
	"debug":           "DEBUG",
	"rateLimit":       "RATE_LIMIT",
	"poll::interval":  "POLL_INTERVAL",
	"poll::timeout":   "POLL_TIMEOUT",
	"poll::onTimeout": "TIMEOUT_POLICY",
}

// Load assembles the configuration. Precedence, highest first: flags, environment variables, dotenv file,
// config file, credentials file (API key only), defaults.
//
// Load does not validate the result, see Config.Validate.
func Load(opts LoadOptions) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("baseUrl", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("maxRetries", DefaultMaxRetries)
	v.SetDefault("debug", false)
	v.SetDefault("rateLimit", 0)
	v.SetDefault("poll::interval", poll.DefaultInterval)
	v.SetDefault("poll::timeout", poll.DefaultTimeout)
	v.SetDefault("poll::onTimeout", poll.TimeoutFail.String())

	for key, env := range envNames {
		if err := viper.BindEnv(v, key, env); err != nil {
			return Config{}, err
		}
	}
	for key, name := range flagNames {
		if err := viper.BindPFlag(v, key, opts.Flags, name); err != nil {
			return Config{}, err
		}
	}

	if opts.ConfigFile != "" {
		if err := readConfigFile(v, opts.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(decodeCfg *mapstructure.DecoderConfig) {
		decodeCfg.DecodeHook = secondsToDurationHook
	}); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Source = describeSource(v, opts)

	if cfg.APIKey == "" && !opts.SkipCredentialsFile {
		if creds := credentials.FromFile(); creds.IsValid() {
			cfg.APIKey = creds.APIKey
			cfg.Source = creds.Source
		}
	}

	log.Debug().Str("baseUrl", cfg.BaseURL).Str("source", cfg.Source).
		Dur("timeout", cfg.Timeout).Int("maxRetries", cfg.MaxRetries).Msg("Configuration loaded.")

	return cfg, nil
}

func describeSource(v interface{ InConfig(string) bool }, opts LoadOptions) string {
	if opts.Flags != nil {
		if f := opts.Flags.Lookup(flagNames["apiKey"]); f != nil && f.Changed {
			return "command line flag"
		}
	}
	if _, ok := os.LookupEnv(viper.EnvPrefix + "_" + envNames["apiKey"]); ok {
		return "environment variable"
	}
	if v.InConfig("apiKey") {
		return "config file"
	}
	return ""
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook decodes plain numbers into durations of as many seconds, e.g. HAMMING_TIMEOUT=30. Anything
// else is parsed with time.ParseDuration, e.g. "1m30s".
func secondsToDurationHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
		return time.ParseDuration(s)
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}

	return data, nil
}

// readConfigFile merges the config file at name into the config layer of v. Only the values of the file are
// subject to environment variable expansion.
func readConfigFile(v *spfviper.Viper, name string) error {
	fv := viper.New()
	fv.SetConfigFile(name)
	if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext == "" {
		fv.SetConfigType("yaml")
	}
	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", name, err)
	}

	settings, _ := expandEnv(fv.AllSettings()).(map[string]interface{})
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", name, err)
	}
	return nil
}

// expandEnv replaces ${var} or $var in string values of the config file.
func expandEnv(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return os.ExpandEnv(v.(string))
	case reflect.Map:
		if mp, ok := v.(map[string]interface{}); ok {
			for key, val := range mp {
				mp[key] = expandEnv(val)
			}
			return mp
		}
	}
	return v
}
