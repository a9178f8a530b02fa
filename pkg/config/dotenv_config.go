package config

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/subosito/gotenv"
)

// DefaultDotenvPath is used when ARSIPD_DOTENV_PATH is not set.
const DefaultDotenvPath = "~/.arsipd.env"

// DotenvConfig loads a dotenv file into the process environment and reads
// keys from there. Variables already set in the environment are kept.
type DotenvConfig struct {
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{DotenvPath: path}
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return c.Load()
}

func (c *DotenvConfig) Load() error {
	path, err := homedir.Expand(c.DotenvPath)
	if err != nil {
		return err
	}

	return gotenv.Load(path)
}

func (c *DotenvConfig) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
