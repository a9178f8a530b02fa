package config

import (
	"errors"
	"sync"
)

// MapConfig serves keys from memory. Tests use it in place of a dotenv file.
type MapConfig struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMapConfig(entries map[string]string) *MapConfig {
	c := &MapConfig{values: make(map[string]string, len(entries))}
	for key, val := range entries {
		c.values[key] = val
	}

	return c
}

func (c *MapConfig) Load() error { return nil }

func (c *MapConfig) LoadFromPath(_ string) error {
	return errors.New("MapConfig cannot load from a path")
}

func (c *MapConfig) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *MapConfig) Lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.values[key]
	return val, ok
}
