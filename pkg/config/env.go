package config

import (
	"strconv"
	"time"
)

// Environment variables read by [Load].
const (
	EnvCacheBackend = "FLOWLAYOUT_CACHE"
	EnvCacheDir     = "FLOWLAYOUT_CACHE_DIR"
	EnvRedisAddr    = "FLOWLAYOUT_REDIS_ADDR"
	EnvRedisPass    = "FLOWLAYOUT_REDIS_PASSWORD"
	EnvCacheTTL     = "FLOWLAYOUT_CACHE_TTL"
	EnvServerAddr   = "FLOWLAYOUT_ADDR"
	EnvMongoURI     = "FLOWLAYOUT_MONGO_URI"
	EnvFirstStart   = "FLOWLAYOUT_FIRST_START"
)

// applyEnv overrides cfg from the environment. Values that do not parse are
// ignored.
func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvCacheBackend); v != "" {
		cfg.Cache.Backend = v
	}
	if v := getenv(EnvCacheDir); v != "" {
		cfg.Cache.Dir = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := getenv(EnvRedisPass); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := getenv(EnvCacheTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := getenv(EnvServerAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		cfg.Server.MongoURI = v
	}
	if v := getenv(EnvFirstStart); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Output.FirstStart = b
		}
	}
}
