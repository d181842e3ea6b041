// Package config loads typed configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment.
//   - Load parses the environment into a struct and caches the result per type,
//     so every package can call Load for its own Config without re-parsing.
//   - Parse does the same without the cache, which the CLI uses after flag
//     overrides have been applied to the environment.
//
// Struct fields are described with `env` / `envDefault` tags:
//
//	type Config struct {
//	    BaseURL string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8000/api/v1"`
//	    Timeout time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Errors can be matched with errors.Is against ErrParsingConfig, ErrNilPointer
// and ErrLoadingEnvFile.
package config
