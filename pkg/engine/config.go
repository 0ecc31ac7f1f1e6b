package engine

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey  = "GOOGLE_API_KEY"
	EnvModel   = "GEMINI_MODEL"
	EnvBackend = "GEMINI_BACKEND"
	EnvBaseURL = "GEMINI_BASE_URL" // Host root, see ProviderConfig.BaseURL.
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultPrompt  = "Hello Gemini!"
	DefaultKind    = "genai"
	DefaultTimeout = "60s"
)

var (
	// ErrMissingAPIKey is returned by Validate when no API key was configured.
	ErrMissingAPIKey = errors.New("engine: config: api key is required (set " + EnvAPIKey + ")")
	// ErrMissingModel is returned by Validate when no model name was configured.
	ErrMissingModel = errors.New("engine: config: model is required (set " + EnvModel + ")")
)

// Config is the top-level configuration.
type Config struct {
	Provider     ProviderConfig `yaml:"provider"`
	Prompt       string         `yaml:"prompt"`
	SystemPrompt string         `yaml:"system_prompt"`
	Timeout      string         `yaml:"timeout"` // Duration string (e.g. "30s").
}

// ProviderConfig describes which backend to call and how.
//
// BaseURL is the API host root (e.g. https://generativelanguage.googleapis.com)
// for every kind, so switching kinds keeps it valid: the openai kind appends
// /v1beta/openai/ when the URL has no path.
type ProviderConfig struct {
	Kind        string   `yaml:"kind"`        // genai, rest or openai.
	BaseURL     string   `yaml:"base_url"`    // Empty uses the public endpoint.
	APIKey      string   `yaml:"api_key"`     //nolint:gosec // configuration field, not a hardcoded secret
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"` // Nil leaves the server default; 0 is sent as 0.
	MaxTokens   int      `yaml:"max_tokens"`  // 0 leaves the backend default. At most math.MaxInt32.
}

// DefaultConfig returns a Config with the fixed prompt and default backend.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{Kind: DefaultKind},
		Prompt:   DefaultPrompt,
		Timeout:  DefaultTimeout,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so the API key can stay in the environment or a .env file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides provider settings with any non-empty environment values.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Provider.APIKey, EnvAPIKey)
	set(&c.Provider.Model, EnvModel)
	set(&c.Provider.Kind, EnvBackend)
	set(&c.Provider.BaseURL, EnvBaseURL)
}

// TimeoutDuration parses Timeout. An empty value means no deadline.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("engine: config: invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("engine: config: timeout %q must not be negative", c.Timeout)
	}

	return d, nil
}

// Validate checks the two required values and that the rest is usable:
// a known backend kind, a parseable timeout, and sampling limits the
// backends can represent.
func (c Config) Validate() error {
	if c.Provider.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Provider.Model == "" {
		return ErrMissingModel
	}
	if _, ok := getFactory(c.Provider.Kind); !ok {
		return fmt.Errorf("engine: config: unknown provider kind %q", c.Provider.Kind)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if t := c.Provider.Temperature; t != nil && *t < 0 {
		return fmt.Errorf("engine: config: temperature %v must not be negative", *t)
	}
	if n := c.Provider.MaxTokens; n < 0 || n > math.MaxInt32 {
		return fmt.Errorf("engine: config: max_tokens %d out of range [0, %d]", n, math.MaxInt32)
	}

	return nil
}
