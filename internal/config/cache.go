package config

import "time"

// CacheConfig configures the snapshot store. An empty Addr disables the
// cache entirely; resolution then always falls through to the provider.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether a cache store is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Addr != ""
}
