package config

// Configer is a source of configuration keys. The typed getters in this
// package are written once on top of Lookup.
type Configer interface {
	Load() error
	LoadFromPath(path string) error
	Lookup(key string) (string, bool)
}
