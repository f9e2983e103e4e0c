package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware used on
// immutable catalog reads.  When Enabled is false or no Redis client is
// configured, caching is disabled.  MethodList names the HTTP methods to
// cache; Methods is the upper-cased set derived from it.
type CacheConfig struct {
    Enabled      bool            `envconfig:"CACHE_ENABLED" default:"true"`
    MethodList   []string        `envconfig:"CACHE_METHODS" default:"GET"`
    TTL          time.Duration   `envconfig:"CACHE_TTL" default:"5m"`
    KeyStrategy  string          `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
    Prefix       string          `envconfig:"CACHE_PREFIX" default:"cache"`
    MaxBodyBytes int             `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
    Methods      map[string]bool `ignored:"true"`
}

func (c *CacheConfig) normalize() {
    c.Methods = parseMethods(c.MethodList)
    if c.TTL <= 0 {
        c.TTL = time.Second
    }
}

func parseMethods(list []string) map[string]bool {
    m := map[string]bool{}
    for _, p := range list {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
