package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

// Category groups products in the catalog.
type Category struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Slug        string               `json:"slug"`
	IsActive    bool                 `json:"is_active"`
	CreatedAt   apiclient.Timestamp  `json:"created_at"`
	UpdatedAt   *apiclient.Timestamp `json:"updated_at,omitempty"`
}

// Product is a full product record as returned by the detail endpoints.
// List endpoints fill a subset of the fields.
type Product struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"short_description,omitempty"`
	Slug             string           `json:"slug"`
	Price            decimal.Decimal  `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	IsFree           bool             `json:"is_free"`
	IsActive         bool             `json:"is_active"`
	IsFeatured       bool             `json:"is_featured"`
	IsDigital        bool             `json:"is_digital"`
	CategoryID       *int64           `json:"category_id,omitempty"`
	Category         *Category        `json:"category,omitempty"`

	Thumbnail   string `json:"thumbnail,omitempty"`
	Images      string `json:"images,omitempty"`
	PreviewFile string `json:"preview_file,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	FileSize    *int64 `json:"file_size,omitempty"`
	FileType    string `json:"file_type,omitempty"`

	DownloadLimit int             `json:"download_limit"`
	DownloadCount int             `json:"download_count"`
	ViewCount     int             `json:"view_count"`
	PurchaseCount int             `json:"purchase_count"`
	Rating        decimal.Decimal `json:"rating"`

	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	Keywords        string `json:"keywords,omitempty"`

	CreatedAt apiclient.Timestamp  `json:"created_at"`
	UpdatedAt *apiclient.Timestamp `json:"updated_at,omitempty"`
}

// Clone returns a copy that shares no pointers with c.
func (c Category) Clone() Category {
	c.UpdatedAt = clonePtr(c.UpdatedAt)
	return c
}

// Clone returns a copy that shares no pointers with p, so a snapshot held by
// the cart is not changed through a cached or caller-owned product.
func (p Product) Clone() Product {
	p.OriginalPrice = clonePtr(p.OriginalPrice)
	p.CategoryID = clonePtr(p.CategoryID)
	p.FileSize = clonePtr(p.FileSize)
	p.UpdatedAt = clonePtr(p.UpdatedAt)
	if p.Category != nil {
		c := p.Category.Clone()
		p.Category = &c
	}
	return p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Discounted reports whether the product sells below its original price.
func (p Product) Discounted() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// ListParams filters GET /products. Zero values are omitted from the query.
type ListParams struct {
	Skip       int
	Limit      int
	CategoryID *int64
	IsFeatured *bool
	IsFree     *bool
	Search     string
}
