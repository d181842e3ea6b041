package apiclient

import "time"

// Config holds transport settings loaded from the environment.
type Config struct {
	BaseURL   string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8000/api/v1"`
	Timeout   time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"15s"`
	UserAgent string        `env:"STOREFRONT_USER_AGENT" envDefault:"storefront-go/1.0"`
}
