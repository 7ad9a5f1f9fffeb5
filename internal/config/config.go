package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-token-scanner/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ChainConfig holds the RPC endpoints of one chain, in failover order
type ChainConfig struct {
	ID        domain.Chain `mapstructure:"id"`
	Endpoints []string     `mapstructure:"endpoints"`
}

// EnumeratorConfig holds token enumeration configuration
type EnumeratorConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`  // Concurrent index lookups per batch
	BatchDelay time.Duration `mapstructure:"batch_delay"` // Pause between batches (e.g., "200ms")
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`

	// RequestsPerSecond caps outgoing requests; 0 means unlimited
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// IndexingConfig holds indexing progress configuration
type IndexingConfig struct {
	LagThreshold uint64 `mapstructure:"lag_threshold"` // Blocks behind the head before an indexer is behind
}

// ResolveConfig holds token URI resolution configuration
type ResolveConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ScannerConfig holds configuration for token-scanner
type ScannerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Chains     []ChainConfig    `mapstructure:"chains"`
	Enumerator EnumeratorConfig `mapstructure:"enumerator"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Indexing   IndexingConfig   `mapstructure:"indexing"`
	Resolve    ResolveConfig    `mapstructure:"resolve"`
}

// LoadScannerConfig loads configuration for token-scanner
func LoadScannerConfig(configFile string, envPath string) (*ScannerConfig, error) {
	v := configureViper("token-scanner", configFile, envPath)

	// Set defaults
	v.SetDefault("enumerator.batch_size", domain.DEFAULT_ENUMERATION_BATCH_SIZE)
	v.SetDefault("enumerator.batch_delay", time.Duration(domain.DEFAULT_ENUMERATION_BATCH_WAIT)*time.Millisecond)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.requests_per_second", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("indexing.lag_threshold", domain.DEFAULT_INDEXING_LAG_THRESHOLD)
	v.SetDefault("resolve.concurrency", 8)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg ScannerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if len(cfg.Chains) == 0 {
		return nil, errors.New("chains is required")
	}
	seen := make(map[domain.Chain]struct{}, len(cfg.Chains))
	for i, chain := range cfg.Chains {
		if !domain.IsValidChain(chain.ID) {
			return nil, fmt.Errorf("chains[%d].id %q is not a supported CAIP-2 chain", i, chain.ID)
		}
		if _, ok := seen[chain.ID]; ok {
			return nil, fmt.Errorf("chains[%d].id %q is duplicated", i, chain.ID)
		}
		seen[chain.ID] = struct{}{}
		if len(chain.Endpoints) == 0 {
			return nil, fmt.Errorf("chains[%d].endpoints is required", i)
		}
	}
	if cfg.Enumerator.BatchSize <= 0 {
		return nil, errors.New("enumerator.batch_size must be positive")
	}
	if cfg.Enumerator.BatchDelay < 0 {
		return nil, errors.New("enumerator.batch_delay must not be negative")
	}
	if cfg.HTTP.RequestsPerSecond < 0 {
		return nil, errors.New("http.requests_per_second must not be negative")
	}
	if cfg.HTTP.RequestsPerSecond > 0 && cfg.HTTP.Burst <= 0 {
		return nil, errors.New("http.burst must be positive when rate limiting")
	}
	if cfg.Resolve.Concurrency <= 0 {
		return nil, errors.New("resolve.concurrency must be positive")
	}

	return &cfg, nil
}

// EndpointSets returns the configured endpoints as endpoint sets
func (c *ScannerConfig) EndpointSets() []domain.EndpointSet {
	sets := make([]domain.EndpointSet, 0, len(c.Chains))
	for _, chain := range c.Chains {
		sets = append(sets, domain.EndpointSet{Chain: chain.ID, URLs: chain.Endpoints}.Clone())
	}
	return sets
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/token-scanner/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_SCANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all scalar environment variables.
// Chains are lists of objects and only come from the config file.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Enumerator
		"enumerator.batch_size",
		"enumerator.batch_delay",
		// HTTP
		"http.timeout",
		"http.requests_per_second",
		"http.burst",
		// Indexing
		"indexing.lag_threshold",
		// Resolve
		"resolve.concurrency",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot walks up from the working directory to the first directory
// holding a config/ folder, so relative config paths work from any package
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
