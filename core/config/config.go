package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	cacheMu sync.RWMutex
	cache   = make(map[reflect.Type]any)
)

// Load parses environment variables into cfg. A .env file in the working
// directory is loaded once per process before the first parse; a missing
// file is not an error. Each configuration type is parsed only once and
// cached, so repeated loads of the same type return identical values.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Absence of a .env file is the normal production case.
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)

	cacheMu.RLock()
	if cached, ok := cache[key]; ok {
		cacheMu.RUnlock()
		*cfg = cached.(T)
		return nil
	}
	cacheMu.RUnlock()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to load config %s: %w", key.Name(), err)
	}

	cacheMu.Lock()
	cache[key] = *cfg
	cacheMu.Unlock()

	return nil
}

// MustLoad is Load that panics on failure, useful during application startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
