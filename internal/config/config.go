package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/tdsqa/internal/version"
)

// Retrieval strategies.
const (
	StrategyVector = "vector"
	StrategyScrape = "scrape"
)

// DefaultBaseURL is the OpenAI-compatible proxy used when OPENAI_BASE_URL is not set.
const DefaultBaseURL = "https://aiproxy.sanand.workers.dev/openai/v1"

// Config holds the tdsqa API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	OCR       OCRConfig       `yaml:"ocr"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty means no authentication.
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

// LLMConfig holds the OpenAI-compatible provider settings.
type LLMConfig struct {
	Provider       string `yaml:"provider"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	Dimensions     int    `yaml:"dimensions"`
	ChatModel      string `yaml:"chat_model"`
}

// RetrievalConfig selects and configures the retrieval strategy.
type RetrievalConfig struct {
	Strategy string       `yaml:"strategy"` // vector, scrape (default: vector)
	Vector   VectorConfig `yaml:"vector"`
	Scrape   ScrapeConfig `yaml:"scrape"`
}

// VectorConfig holds the prebuilt index settings.
type VectorConfig struct {
	IndexPath    string `yaml:"index_path"`
	MetadataPath string `yaml:"metadata_path"`
	Collection   string `yaml:"collection"`
	TopK         int    `yaml:"top_k"`
	Compress     bool   `yaml:"compress"` // used by tdsindex when writing the index
}

// ScrapeConfig holds the live-source settings.
type ScrapeConfig struct {
	DocsURL     string  `yaml:"docs_url"`
	LinkPattern string  `yaml:"link_pattern"`
	ForumURL    string  `yaml:"forum_url"`
	MaxItems    int     `yaml:"max_items"`
	MaxMatches  int     `yaml:"max_matches"`
	RateLimit   float64 `yaml:"rate_limit"` // requests per second
	TimeoutSec  int     `yaml:"timeout_sec"`
	UserAgent   string  `yaml:"user_agent"`
	Temperature float32 `yaml:"temperature"`
}

// OCRConfig holds the tesseract adapter settings.
type OCRConfig struct {
	Disabled      bool   `yaml:"disabled"`
	TesseractPath string `yaml:"tesseract_path"`
	Languages     string `yaml:"languages"`
	Scale         int    `yaml:"scale"`
	MaxChars      int    `yaml:"max_chars"` // 0 = strategy default, negative = no limit
}

// CacheConfig holds the optional embedding cache settings. No addrs disables the cache.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"` // skip cluster topology discovery
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether an embedding cache is configured.
func (c CacheConfig) Enabled() bool {
	return len(c.Addrs) > 0
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

// Parse decodes YAML configuration, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "aiproxy"
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("AIPROXY_TOKEN")
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultBaseURL
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.LLM.ChatModel == "" {
		c.LLM.ChatModel = "gpt-4o-mini"
	}

	if c.Retrieval.Strategy == "" {
		c.Retrieval.Strategy = StrategyVector
	}
	v := &c.Retrieval.Vector
	if v.Collection == "" {
		v.Collection = "tds"
	}
	if v.TopK <= 0 {
		v.TopK = 5
	}
	s := &c.Retrieval.Scrape
	if s.LinkPattern == "" {
		s.LinkPattern = `^#/`
	}
	if s.MaxItems <= 0 {
		s.MaxItems = 3
	}
	if s.MaxMatches <= 0 {
		s.MaxMatches = 3
	}
	if s.RateLimit <= 0 {
		s.RateLimit = 5
	}
	if s.TimeoutSec <= 0 {
		s.TimeoutSec = 30
	}
	if s.UserAgent == "" {
		s.UserAgent = version.UserAgent()
	}
	if s.Temperature == 0 {
		s.Temperature = 0.3
	}

	if c.OCR.TesseractPath == "" {
		c.OCR.TesseractPath = "tesseract"
	}
	if c.OCR.Languages == "" {
		c.OCR.Languages = "eng"
	}
	if c.OCR.Scale <= 0 {
		c.OCR.Scale = 2
	}
	if c.OCR.MaxChars == 0 && c.Retrieval.Strategy == StrategyScrape {
		c.OCR.MaxChars = 1000
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 30 * 24 * 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Retrieval.Strategy {
	case StrategyVector:
		if c.Retrieval.Vector.IndexPath == "" {
			return fmt.Errorf("retrieval.vector.index_path is required")
		}
		if c.Retrieval.Vector.MetadataPath == "" {
			return fmt.Errorf("retrieval.vector.metadata_path is required")
		}
	case StrategyScrape:
		if c.Retrieval.Scrape.DocsURL == "" && c.Retrieval.Scrape.ForumURL == "" {
			return fmt.Errorf("retrieval.scrape needs docs_url or forum_url")
		}
		if _, err := regexp.Compile(c.Retrieval.Scrape.LinkPattern); err != nil {
			return fmt.Errorf("retrieval.scrape.link_pattern: %w", err)
		}
	default:
		return fmt.Errorf(
			"retrieval.strategy must be %q or %q, got %q",
			StrategyVector, StrategyScrape, c.Retrieval.Strategy,
		)
	}
	if c.OCR.Scale > 8 {
		return fmt.Errorf("ocr.scale must be between 1 and 8, got %d", c.OCR.Scale)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

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
