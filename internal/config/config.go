// Package config defines the molnotation configuration tree and its
// validation.  Loading lives in loader.go and defaults in defaults.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/molnotation/internal/infrastructure/database/redis"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/prometheus"
)

// NotationConfig holds the saver options applied when a request does not
// override them, plus service-level limits.
type NotationConfig struct {
	IgnoreHydrogens      bool `mapstructure:"ignore_hydrogens"`
	CanonizeChiralities  bool `mapstructure:"canonize_chiralities"`
	ExtensionBlock       bool `mapstructure:"extension_block"`
	IgnoreInvalidHCount  bool `mapstructure:"ignore_invalid_hcount"`
	DetachRSites         bool `mapstructure:"detach_rsites"`
	SanitizePseudoLabels bool `mapstructure:"sanitize_pseudo_labels"`

	// OperationLimit bounds the work of one serialization; 0 is unlimited.
	OperationLimit int `mapstructure:"operation_limit"`

	// MaxAtoms rejects larger documents before serialization; 0 is unlimited.
	MaxAtoms int `mapstructure:"max_atoms"`

	// CacheTTL is how long results stay in the redis cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// CacheJitter spreads cache expirations by this fraction of CacheTTL.
	CacheJitter float64 `mapstructure:"cache_jitter"`
}

// Config is the root configuration.
type Config struct {
	Log      logging.LogConfig           `mapstructure:"log"`
	Notation NotationConfig              `mapstructure:"notation"`
	Redis    redis.RedisConfig           `mapstructure:"redis"`
	Metrics  prometheus.CollectorConfig `mapstructure:"metrics"`
}

// Validate reports the first semantic problem in c.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Notation.OperationLimit < 0 {
		return fmt.Errorf("config: notation.operation_limit must be >= 0, got %d", c.Notation.OperationLimit)
	}
	if c.Notation.MaxAtoms < 0 {
		return fmt.Errorf("config: notation.max_atoms must be >= 0, got %d", c.Notation.MaxAtoms)
	}
	if c.Notation.CacheTTL < 0 {
		return fmt.Errorf("config: notation.cache_ttl must not be negative")
	}
	if c.Notation.CacheJitter < 0 || c.Notation.CacheJitter >= 1 {
		return fmt.Errorf("config: notation.cache_jitter must be in [0, 1), got %g", c.Notation.CacheJitter)
	}

	if c.Redis.Enabled {
		switch c.Redis.Mode {
		case redis.ModeStandalone:
			if c.Redis.Addr == "" {
				return fmt.Errorf("config: redis.addr is required")
			}
		case redis.ModeSentinel:
			if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
				return fmt.Errorf("config: redis sentinel mode needs master_name and sentinel_addrs")
			}
		case redis.ModeCluster:
			if len(c.Redis.ClusterAddrs) == 0 {
				return fmt.Errorf("config: redis cluster mode needs cluster_addrs")
			}
		default:
			return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}
	return nil
}
