package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		Backend: BackendConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
	expected := `backend.addrs is required for driver "redis"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MemoryNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = BackendConfig{Driver: DriverMemory}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Driver = "elasticsearch"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_SearchOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"fusion", func(c *Config) { c.Search.Fusion = "max" }},
		{"fuzziness", func(c *Config) { f := 3; c.Search.Fuzziness = &f }},
		{"top_k", func(c *Config) { c.Search.TopK = 1000 }},
		{"candidates", func(c *Config) { c.Search.VectorK = 50; c.Search.VectorCandidates = 10 }},
		{"price_decay", func(c *Config) { c.Search.PriceDecay = &PriceDecayConfig{Origin: 100, Scale: 50, Decay: 1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for invalid %s", tt.name)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Backend.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Backend.Driver)
	}
	if cfg.Backend.Catalog != "products" {
		t.Errorf("expected Catalog=products, got %q", cfg.Backend.Catalog)
	}
	if cfg.Backend.HNSWM != 16 || cfg.Backend.HNSWEFConstruct != 200 {
		t.Errorf("unexpected HNSW defaults: %d/%d", cfg.Backend.HNSWM, cfg.Backend.HNSWEFConstruct)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.NameWeight != 3 || cfg.Search.VariantsWeight != 2 || cfg.Search.DescriptionWeight != 1 {
		t.Errorf("unexpected weights: %+v", cfg.Search)
	}
	if cfg.Search.Fuzziness == nil || *cfg.Search.Fuzziness != 1 {
		t.Errorf("expected Fuzziness=1, got %v", cfg.Search.Fuzziness)
	}
	if cfg.Search.VectorK != 20 || cfg.Search.VectorCandidates != 100 || cfg.Search.TopK != 10 {
		t.Errorf("unexpected knn defaults: %+v", cfg.Search)
	}
	if cfg.Search.Fusion != "sum" {
		t.Errorf("expected Fusion=sum, got %q", cfg.Search.Fusion)
	}
	if cfg.Evaluation.Workers != 1 {
		t.Errorf("expected Workers=1, got %d", cfg.Evaluation.Workers)
	}
	if cfg.Paths.LogDir != filepath.Join("reports", "logs") {
		t.Errorf("expected LogDir next to report, got %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.Metrics != filepath.Join("reports", "logs", "metrics.json") {
		t.Errorf("expected metrics in log dir, got %q", cfg.Paths.Metrics)
	}
	if cfg.Embedding.Enabled() {
		t.Error("embedding should be disabled without base_url")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0
	cfg := Config{
		HTTP:    HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Backend: BackendConfig{Driver: DriverMemory, Catalog: "grocery", HNSWM: 32},
		Search:  SearchConfig{Fuzziness: &zero, TopK: 5, Fusion: "rrf"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if cfg.Backend.Driver != DriverMemory || cfg.Backend.Catalog != "grocery" || cfg.Backend.HNSWM != 32 {
		t.Errorf("backend overridden: %+v", cfg.Backend)
	}
	if *cfg.Search.Fuzziness != 0 {
		t.Errorf("expected explicit fuzziness 0 kept, got %d", *cfg.Search.Fuzziness)
	}
	if cfg.Search.TopK != 5 || cfg.Search.Fusion != "rrf" {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("PS_REDIS_ADDR", "redis:6380")
	t.Setenv("PS_EMBED_KEY", "")

	yaml := []byte(`
backend:
  driver: redis
  addrs: ["${PS_REDIS_ADDR}"]
embedding:
  base_url: ${PS_EMBED_URL:-http://localhost:8000/v1}
  api_key: ${PS_EMBED_KEY:-none}
  timeout_sec: 5
  cache_ttl_hours: 24
auth:
  api_keys: ["k1"]
`)
	cfg, err := Parse(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Addrs[0] != "redis:6380" {
		t.Errorf("unexpected addr: %v", cfg.Backend.Addrs)
	}
	if cfg.Embedding.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("unexpected base url: %q", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.APIKey != "none" {
		t.Errorf("expected default for empty var, got %q", cfg.Embedding.APIKey)
	}
	if !cfg.Embedding.Enabled() {
		t.Error("expected embedding enabled")
	}
	if cfg.Embedding.Timeout() != 5*time.Second || cfg.Embedding.CacheTTL() != 24*time.Hour {
		t.Errorf("unexpected durations: %v %v", cfg.Embedding.Timeout(), cfg.Embedding.CacheTTL())
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Errorf("unexpected api keys: %v", cfg.Auth.APIKeys)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("backend: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("backend:\n  driver: redis\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  driver: memory\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Driver != DriverMemory {
		t.Errorf("unexpected driver: %q", cfg.Backend.Driver)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Catalog == "" {
		t.Error("expected catalog name")
	}
}
