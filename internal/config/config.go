package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Stale response policies.
const (
	StaleDiscard  = "discard"
	StaleLastWins = "last_wins"
)

// Config holds the boostube configuration.
type Config struct {
	HTTP       HTTPConfig            `yaml:"http"`
	Auth       AuthConfig            `yaml:"auth"`
	Generation GenerationConfig      `yaml:"generation"`
	Keywords   KeywordsConfig        `yaml:"keywords"`
	Breaker    BreakerConfig         `yaml:"breaker"`
	Cache      CacheConfig           `yaml:"cache"`
	Viewport   ViewportConfig        `yaml:"viewport"`
	Pipeline   PipelineConfig        `yaml:"pipeline"`
	Tools      map[string]ToolConfig `yaml:"tools"`
	Logging    LoggingConfig         `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // play always logs to a file; defaults to boostube.log
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// GenerationConfig selects and configures the text generation provider.
type GenerationConfig struct {
	Provider   string                    `yaml:"provider"` // gemini (default), openai
	Providers  map[string]ProviderConfig `yaml:"providers"`
	TimeoutSec int                       `yaml:"timeout_sec"`
}

// ProviderConfig holds generation provider settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Active returns the settings of the selected provider.
func (g GenerationConfig) Active() ProviderConfig {
	return g.Providers[g.Provider]
}

// Timeout returns the per-call generation timeout.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// KeywordsConfig holds keyword metrics service settings.
type KeywordsConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the per-call keyword lookup timeout.
func (k KeywordsConfig) Timeout() time.Duration {
	return time.Duration(k.TimeoutSec) * time.Second
}

// BreakerConfig holds circuit breaker settings shared by every remote service.
type BreakerConfig struct {
	Disabled            bool   `yaml:"disabled"`
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
	OpenTimeoutSec      int    `yaml:"open_timeout_sec"`
	HalfOpenRequests    uint32 `yaml:"half_open_requests"`
}

// CacheConfig holds the optional response cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ViewportConfig is the virtual viewport of HTTP-served particle fields.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PipelineConfig holds prompt pipeline settings.
type PipelineConfig struct {
	StaleResponses string `yaml:"stale_responses"` // discard (default), last_wins
}

// ToolConfig overrides a built-in tool.
type ToolConfig struct {
	Prompt    string `yaml:"prompt"`
	Shape     string `yaml:"shape"` // idea_list, verbatim, title_list
	Particles int    `yaml:"particles"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in a YAML document, applies defaults and validates it.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Submit blocks until the pipeline settles.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderGemini
	}
	if c.Generation.Providers == nil {
		c.Generation.Providers = map[string]ProviderConfig{}
	}
	if p, ok := c.Generation.Providers[ProviderGemini]; ok || c.Generation.Provider == ProviderGemini {
		if p.Model == "" {
			p.Model = "gemini-1.5-flash"
		}
		c.Generation.Providers[ProviderGemini] = p
	}
	if p, ok := c.Generation.Providers[ProviderOpenAI]; ok || c.Generation.Provider == ProviderOpenAI {
		if p.Model == "" {
			p.Model = "gpt-4o-mini"
		}
		c.Generation.Providers[ProviderOpenAI] = p
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 60
	}
	if c.Keywords.BaseURL == "" {
		c.Keywords.BaseURL = "http://localhost:5000"
	}
	if c.Keywords.TimeoutSec <= 0 {
		c.Keywords.TimeoutSec = 10
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = 5
	}
	if c.Breaker.OpenTimeoutSec <= 0 {
		c.Breaker.OpenTimeoutSec = 30
	}
	if c.Breaker.HalfOpenRequests == 0 {
		c.Breaker.HalfOpenRequests = 1
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 1280
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 720
	}
	if c.Pipeline.StaleResponses == "" {
		c.Pipeline.StaleResponses = StaleDiscard
	}
	if c.Logging.File == "" {
		c.Logging.File = "boostube.log"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Generation.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("generation.provider must be %q or %q, got %q",
			ProviderGemini, ProviderOpenAI, c.Generation.Provider)
	}
	if c.Generation.Provider == ProviderOpenAI && c.Generation.Active().BaseURL == "" {
		return fmt.Errorf("generation.providers.openai.base_url is required")
	}
	if !strings.HasPrefix(c.Keywords.BaseURL, "http://") && !strings.HasPrefix(c.Keywords.BaseURL, "https://") {
		return fmt.Errorf("keywords.base_url must be an http(s) url, got %q", c.Keywords.BaseURL)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	switch c.Pipeline.StaleResponses {
	case StaleDiscard, StaleLastWins:
	default:
		return fmt.Errorf("pipeline.stale_responses must be %q or %q, got %q",
			StaleDiscard, StaleLastWins, c.Pipeline.StaleResponses)
	}
	for name, t := range c.Tools {
		if t.Particles < 0 {
			return fmt.Errorf("tools.%s.particles must not be negative, got %d", name, t.Particles)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
