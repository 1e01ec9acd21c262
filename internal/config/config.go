package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RequestTimeoutSeconds bounds a single API request, generation included.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains the generative endpoint settings.
type LLMConfig struct {
	// GeminiAPIKey is the default credential. It may be empty: a missing key
	// only fails generation calls, never startup.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	ModelName string `mapstructure:"model_name" validate:"required"`

	// BaseURL overrides the endpoint address (proxies, tests).
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// MaxRetries is the number of retries for rate-limited or unavailable calls.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryBaseDelayMS is the first backoff delay; each retry doubles it.
	RetryBaseDelayMS int `mapstructure:"retry_base_delay_ms" validate:"gte=0"`

	// ThinkingBudget is the model's thinking token budget. Zero disables it.
	ThinkingBudget int `mapstructure:"thinking_budget" validate:"gte=0"`

	// PromptTemplatePath optionally replaces the embedded exam prompt template.
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"omitempty,file"`

	// SystemInstruction is optional system-level instruction text.
	SystemInstruction string `mapstructure:"system_instruction"`
}
