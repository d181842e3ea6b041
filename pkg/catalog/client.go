package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/cache"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

const (
	// DefaultFeaturedLimit applies when Featured is called with limit 0.
	DefaultFeaturedLimit = 10
	maxListLimit         = 100
	maxFeaturedLimit     = 20
)

// Client reads the catalog through any apiclient.Doer, normally an
// *apiclient.Authorized so a logged-in user's token rides along.
type Client struct {
	api   apiclient.Doer
	cache *cache.LRU[int64, Product]
	log   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a catalog client with a product cache of cfg.CacheSize entries
// (256 when unset) that expire after cfg.CacheTTL (never when zero).
func New(api apiclient.Doer, cfg Config, opts ...Option) *Client {
	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	c := &Client{
		api:   api,
		cache: cache.NewLRU[int64, Product](size, cfg.CacheTTL),
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("catalog"))
	return c
}

// List returns products matching params.
func (c *Client) List(ctx context.Context, params ListParams) ([]Product, error) {
	if params.Limit < 0 || params.Limit > maxListLimit || params.Skip < 0 {
		return nil, fmt.Errorf("%w: skip must be >= 0 and limit within 1..%d", ErrInvalidLimit, maxListLimit)
	}
	var products []Product
	if err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  params.query(),
	}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Featured returns up to limit featured products; limit 0 means the default of 10.
func (c *Client) Featured(ctx context.Context, limit int) ([]Product, error) {
	if limit == 0 {
		limit = DefaultFeaturedLimit
	}
	if limit < 1 || limit > maxFeaturedLimit {
		return nil, fmt.Errorf("%w: featured limit must be within 1..%d", ErrInvalidLimit, maxFeaturedLimit)
	}
	var products []Product
	if err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products/featured",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a product by id, from cache when possible.
func (c *Client) Get(ctx context.Context, id int64) (Product, error) {
	if p, ok := c.cache.Get(id); ok {
		c.log.DebugContext(ctx, "product cache hit", logger.ProductID(id))
		return p.Clone(), nil
	}
	var p Product
	if err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products/" + strconv.FormatInt(id, 10),
	}, &p); err != nil {
		return Product{}, err
	}
	c.cache.Put(p.ID, p.Clone())
	return p, nil
}

// GetBySlug always hits the API and refreshes the cached snapshot.
func (c *Client) GetBySlug(ctx context.Context, slug string) (Product, error) {
	if slug == "" {
		return Product{}, ErrEmptySlug
	}
	var p Product
	if err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products/slug/" + url.PathEscape(slug),
	}, &p); err != nil {
		return Product{}, err
	}
	c.cache.Put(p.ID, p.Clone())
	return p, nil
}

// Categories lists the active categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products/categories",
	}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Forget drops a cached snapshot so the next Get goes to the API.
func (c *Client) Forget(id int64) {
	c.cache.Remove(id)
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*p.CategoryID, 10))
	}
	if p.IsFeatured != nil {
		q.Set("is_featured", strconv.FormatBool(*p.IsFeatured))
	}
	if p.IsFree != nil {
		q.Set("is_free", strconv.FormatBool(*p.IsFree))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}
