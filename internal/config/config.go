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

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
)

// Backend drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the prefixsearch configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Backend    BackendConfig    `yaml:"backend"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Search     SearchConfig     `yaml:"search"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Paths      PathsConfig      `yaml:"paths"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
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

// BackendConfig selects and connects the search backend.
type BackendConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	Catalog          string   `yaml:"catalog"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
	WriteBatchSize   int      `yaml:"write_batch_size"`
}

// EmbeddingConfig holds the embedding provider settings. An empty BaseURL
// disables vectors: search and indexing run lexical-only.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"`
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	CacheTTLHours       int    `yaml:"cache_ttl_hours"` // 0 = no expiry
	BatchSize           int    `yaml:"batch_size"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// Enabled reports whether an embedding provider is configured.
func (e EmbeddingConfig) Enabled() bool {
	return e.BaseURL != ""
}

// Timeout returns the provider request timeout.
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// CacheTTL returns the embedding cache expiry, 0 meaning forever.
func (e EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLHours) * time.Hour
}

// SearchConfig shapes the hybrid query.
type SearchConfig struct {
	NameWeight        float64           `yaml:"name_weight"`
	VariantsWeight    float64           `yaml:"variants_weight"`
	DescriptionWeight float64           `yaml:"description_weight"`
	Fuzziness         *int              `yaml:"fuzziness"`
	VectorK           int               `yaml:"vector_k"`
	VectorCandidates  int               `yaml:"vector_candidates"`
	TopK              int               `yaml:"top_k"`
	MinScore          float64           `yaml:"min_score"`
	Fusion            string            `yaml:"fusion"` // sum, rrf (default: sum)
	PriceDecay        *PriceDecayConfig `yaml:"price_decay"`
}

// PriceDecayConfig enables the gaussian price multiplier.
type PriceDecayConfig struct {
	Origin float64 `yaml:"origin"`
	Scale  float64 `yaml:"scale"`
	Decay  float64 `yaml:"decay"`
}

// EvaluationConfig holds evaluation run settings.
type EvaluationConfig struct {
	Workers int `yaml:"workers"`
}

// PathsConfig holds default file locations used by the CLI. LogDir defaults
// to a logs/ directory next to the report; Metrics lives in LogDir.
type PathsConfig struct {
	Catalog string `yaml:"catalog"`
	Queries string `yaml:"queries"`
	Report  string `yaml:"report"`
	Metrics string `yaml:"metrics"`
	LogDir  string `yaml:"log_dir"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes env variables, applies defaults and validates.
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
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverRedis
	}
	if c.Backend.ReadinessTimeout <= 0 {
		c.Backend.ReadinessTimeout = 10
	}
	if c.Backend.Catalog == "" {
		c.Backend.Catalog = "products"
	}
	if c.Backend.HNSWM <= 0 {
		c.Backend.HNSWM = 16
	}
	if c.Backend.HNSWEFConstruct <= 0 {
		c.Backend.HNSWEFConstruct = 200
	}

	vec := domain.DefaultVectorConfig()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 64
	}

	if c.Search.NameWeight <= 0 {
		c.Search.NameWeight = 3
	}
	if c.Search.VariantsWeight <= 0 {
		c.Search.VariantsWeight = 2
	}
	if c.Search.DescriptionWeight <= 0 {
		c.Search.DescriptionWeight = 1
	}
	if c.Search.Fuzziness == nil {
		f := request.DefaultFuzziness
		c.Search.Fuzziness = &f
	}
	if c.Search.VectorK <= 0 {
		c.Search.VectorK = request.DefaultVectorK
	}
	if c.Search.VectorCandidates <= 0 {
		c.Search.VectorCandidates = request.DefaultVectorCandidates
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = request.DefaultTopK
	}
	if c.Search.Fusion == "" {
		c.Search.Fusion = string(request.FusionSum)
	}

	if c.Evaluation.Workers <= 0 {
		c.Evaluation.Workers = 1
	}

	if c.Paths.Catalog == "" {
		c.Paths.Catalog = "data/catalog_products.xml"
	}
	if c.Paths.Queries == "" {
		c.Paths.Queries = "data/prefix_queries.csv"
	}
	if c.Paths.Report == "" {
		c.Paths.Report = "reports/evaluation_results.csv"
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = filepath.Join(filepath.Dir(c.Paths.Report), "logs")
	}
	if c.Paths.Metrics == "" {
		c.Paths.Metrics = filepath.Join(c.Paths.LogDir, "metrics.json")
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Backend.Driver {
	case DriverRedis:
		if len(c.Backend.Addrs) == 0 {
			return fmt.Errorf("backend.addrs is required for driver %q", DriverRedis)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("backend.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Backend.Driver)
	}
	if !request.Fusion(c.Search.Fusion).IsValid() {
		return fmt.Errorf("search.fusion must be \"sum\" or \"rrf\", got %q", c.Search.Fusion)
	}
	if f := *c.Search.Fuzziness; f < 0 || f > request.MaxFuzziness {
		return fmt.Errorf("search.fuzziness must be between 0 and %d, got %d", request.MaxFuzziness, f)
	}
	if c.Search.TopK > request.MaxTopK {
		return fmt.Errorf("search.top_k must be at most %d, got %d", request.MaxTopK, c.Search.TopK)
	}
	if c.Search.VectorCandidates < c.Search.VectorK {
		return fmt.Errorf("search.vector_candidates (%d) must be >= search.vector_k (%d)",
			c.Search.VectorCandidates, c.Search.VectorK)
	}
	if d := c.Search.PriceDecay; d != nil {
		if d.Scale <= 0 || d.Decay <= 0 || d.Decay >= 1 {
			return fmt.Errorf("search.price_decay needs scale > 0 and decay in (0, 1)")
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
