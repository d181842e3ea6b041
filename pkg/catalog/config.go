package catalog

import "time"

type Config struct {
	CacheSize int           `env:"STOREFRONT_CATALOG_CACHE_SIZE" envDefault:"256"`
	CacheTTL  time.Duration `env:"STOREFRONT_CATALOG_CACHE_TTL" envDefault:"5m"`
}
