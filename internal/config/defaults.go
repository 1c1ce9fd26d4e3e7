package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultExtensionBlock = true
	DefaultOperationLimit = 0
	DefaultMaxAtoms       = 100000
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCacheJitter    = 0.1

	DefaultRedisMode   = "standalone"
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "molnotation:"

	DefaultMetricsNamespace = "molnotation"
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Notation.ExtensionBlock = DefaultExtensionBlock
	cfg.Notation.CacheJitter = DefaultCacheJitter
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields.  Booleans and the cache jitter are
// left alone because their zero value cannot be told apart from unset; their defaults come from
// registerDefaults when loading through viper.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Notation.MaxAtoms == 0 {
		cfg.Notation.MaxAtoms = DefaultMaxAtoms
	}
	if cfg.Notation.CacheTTL == 0 {
		cfg.Notation.CacheTTL = DefaultCacheTTL
	}

	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Addr == "" && cfg.Redis.Mode == DefaultRedisMode {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisPrefix
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// registerDefaults declares every key on v so that environment variables
// bind to it during Unmarshal.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})

	v.SetDefault("notation.ignore_hydrogens", false)
	v.SetDefault("notation.canonize_chiralities", false)
	v.SetDefault("notation.extension_block", DefaultExtensionBlock)
	v.SetDefault("notation.ignore_invalid_hcount", false)
	v.SetDefault("notation.detach_rsites", false)
	v.SetDefault("notation.sanitize_pseudo_labels", false)
	v.SetDefault("notation.operation_limit", DefaultOperationLimit)
	v.SetDefault("notation.max_atoms", DefaultMaxAtoms)
	v.SetDefault("notation.cache_ttl", DefaultCacheTTL)
	v.SetDefault("notation.cache_jitter", DefaultCacheJitter)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.mode", DefaultRedisMode)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", DefaultRedisPrefix)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.process_metrics", false)
	v.SetDefault("metrics.go_metrics", false)
}
