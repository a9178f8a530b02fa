// Package config holds the daemon configuration. Values come from a dotenv
// file loaded into the environment; tests swap in a MapConfig.
package config

import (
	"os"
	"time"

	"github.com/apex/log"
)

var keys = Keys{Source: NewDotenvConfig(DefaultDotenvPath)}

func SetConfig(c Configer) {
	keys = Keys{Source: c}
}

func GetConfig() Configer {
	return keys.Source
}

// MustLoadFromDotenv loads the file named by ARSIPD_DOTENV_PATH, falling back
// to DefaultDotenvPath. A missing default file is not an error, so a plain
// environment works too.
func MustLoadFromDotenv() {
	path := os.Getenv("ARSIPD_DOTENV_PATH")
	explicit := path != ""
	if !explicit {
		path = DefaultDotenvPath
	}

	if err := keys.Source.LoadFromPath(path); err != nil && (explicit || !os.IsNotExist(err)) {
		log.Fatalf("Failed loading configuration file %s: %s", path, err)
	}
}

func LoadFromPath(path string) error { return keys.Source.LoadFromPath(path) }

func GetKey(key string) string { return keys.GetKey(key) }

func MustGetKey(key string) string { return keys.MustGetKey(key) }

func GetKeyWithDefault(key, defaultValue string) string {
	return keys.GetKeyWithDefault(key, defaultValue)
}

func GetIntKeyWithDefault(key string, defaultValue int) int {
	return keys.GetIntKeyWithDefault(key, defaultValue)
}

func GetDurationKeyWithDefault(key string, defaultValue time.Duration) time.Duration {
	return keys.GetDurationKeyWithDefault(key, defaultValue)
}
