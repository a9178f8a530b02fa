package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
)

// Keys reads typed values from a Configer. Empty values count as unset.
type Keys struct {
	Source Configer
}

func (k Keys) GetKey(key string) string {
	val, _ := k.Source.Lookup(key)
	return strings.TrimSpace(val)
}

func (k Keys) MustGetKey(key string) string {
	val := k.GetKey(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (k Keys) GetKeyWithDefault(key, defaultValue string) string {
	if val := k.GetKey(key); val != "" {
		return val
	}

	return defaultValue
}

func (k Keys) GetIntKeyWithDefault(key string, defaultValue int) int {
	n, err := strconv.Atoi(k.GetKey(key))
	if err != nil {
		return defaultValue
	}

	return n
}

// GetDurationKeyWithDefault accepts Go durations ("10s", "1m") and bare
// integers as seconds. Values that are not positive give defaultValue.
func (k Keys) GetDurationKeyWithDefault(key string, defaultValue time.Duration) time.Duration {
	val := k.GetKey(key)
	if val == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		seconds, convErr := strconv.Atoi(val)
		if convErr != nil {
			return defaultValue
		}
		d = time.Duration(seconds) * time.Second
	}

	if d <= 0 {
		return defaultValue
	}

	return d
}
