package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "QUESTUP"

// Default configuration values.
const (
	DefaultPort                  = 8080
	DefaultLogLevel              = "info"
	DefaultModelName             = "gemini-3-pro-preview"
	DefaultMaxRetries            = 3
	DefaultRetryBaseDelayMS      = 2000
	DefaultThinkingBudget        = 10000
	DefaultTokenLifetimeMinutes  = 60
	DefaultRequestTimeoutSeconds = 300
)

var validate = validator.New()

// Load reads configuration from environment variables (QUESTUP_SECTION_KEY)
// and an optional config.yaml in the working directory. Environment variables
// take precedence over values from the file.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadLLM reads only the llm section. Command line tools that talk to the
// generative endpoint without a database use it.
func LoadLLM() (*LLMConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg.LLM); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg.LLM, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.request_timeout_seconds", DefaultRequestTimeoutSeconds)
	v.SetDefault("auth.token_lifetime_minutes", DefaultTokenLifetimeMinutes)
	v.SetDefault("llm.model_name", DefaultModelName)
	v.SetDefault("llm.max_retries", DefaultMaxRetries)
	v.SetDefault("llm.retry_base_delay_ms", DefaultRetryBaseDelayMS)
	v.SetDefault("llm.thinking_budget", DefaultThinkingBudget)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so keys without a default
	// must be bound explicitly.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"llm.gemini_api_key",
		"llm.base_url",
		"llm.prompt_template_path",
		"llm.system_instruction",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	return v, nil
}
