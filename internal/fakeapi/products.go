package fakeapi

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/slug"
)

// ProductInput describes a product to add to the catalog.
type ProductInput struct {
	Name             string
	ShortDescription string
	Price            string
	OriginalPrice    string
	CategorySlug     string
	IsFree           bool
	IsFeatured       bool
}

// AddCategory creates an active category and returns it.
func (s *Server) AddCategory(name, description string) catalog.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := catalog.Category{
		ID:          int64(len(s.categories) + 1),
		Name:        name,
		Description: description,
		Slug:        slug.Make(name, slug.MaxLength(100)),
		IsActive:    true,
		CreatedAt:   apiclient.Timestamp{Time: s.now().UTC()},
	}
	s.categories = append(s.categories, c)
	return c
}

// AddProduct creates an active product; the slug is derived from the name.
func (s *Server) AddProduct(in ProductInput) (catalog.Product, error) {
	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("fakeapi: price %q: %w", in.Price, err)
	}
	if price.IsNegative() {
		return catalog.Product{}, fmt.Errorf("fakeapi: price %q must be >= 0", in.Price)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProdID++
	p := catalog.Product{
		ID:               s.nextProdID,
		Name:             in.Name,
		ShortDescription: in.ShortDescription,
		Description:      in.ShortDescription,
		Slug:             slug.Make(in.Name, slug.MaxLength(255)),
		Price:            price,
		IsFree:           in.IsFree,
		IsActive:         true,
		IsFeatured:       in.IsFeatured,
		IsDigital:        true,
		DownloadLimit:    5,
		Rating:           decimal.Zero,
		CreatedAt:        apiclient.Timestamp{Time: s.now().UTC()},
	}
	if in.OriginalPrice != "" {
		orig, err := decimal.NewFromString(in.OriginalPrice)
		if err != nil {
			return catalog.Product{}, fmt.Errorf("fakeapi: original price %q: %w", in.OriginalPrice, err)
		}
		p.OriginalPrice = &orig
	}
	if in.CategorySlug != "" {
		i := slices.IndexFunc(s.categories, func(c catalog.Category) bool { return c.Slug == in.CategorySlug })
		if i < 0 {
			return catalog.Product{}, fmt.Errorf("fakeapi: unknown category %q", in.CategorySlug)
		}
		cat := s.categories[i]
		p.CategoryID = &cat.ID
		p.Category = &cat
	}
	s.products = append(s.products, p)
	return p, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, ok := intParam(w, q.Get("skip"), "skip", 0, 0, -1)
	if !ok {
		return
	}
	limit, ok := intParam(w, q.Get("limit"), "limit", 20, 1, 100)
	if !ok {
		return
	}

	var (
		categoryID       *int64
		featured, isFree *bool
	)
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeQueryError(w, "category_id", "Input should be a valid integer")
			return
		}
		categoryID = &id
	}
	for name, dst := range map[string]**bool{"is_featured": &featured, "is_free": &isFree} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeQueryError(w, name, "Input should be a valid boolean")
				return
			}
			*dst = &b
		}
	}
	search := strings.ToLower(q.Get("search"))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, limit)
	seen := 0
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		if featured != nil && p.IsFeatured != *featured {
			continue
		}
		if isFree != nil && p.IsFree != *isFree {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if seen++; seen <= skip {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) featuredProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r.URL.Query().Get("limit"), "limit", 10, 1, 20)
	if !ok {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, limit)
	for _, p := range s.products {
		if p.IsActive && p.IsFeatured {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) productByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationDetail{{Loc: []string{"path", "product_id"}, Msg: "Input should be a valid integer", Type: "int_parsing"}},
		})
		return
	}
	s.productWhere(w, func(p catalog.Product) bool { return p.ID == id })
}

func (s *Server) productBySlug(w http.ResponseWriter, r *http.Request) {
	want := chi.URLParam(r, "slug")
	s.productWhere(w, func(p catalog.Product) bool { return p.Slug == want })
}

func (s *Server) productWhere(w http.ResponseWriter, match func(catalog.Product) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].IsActive && match(s.products[i]) {
			s.products[i].ViewCount++
			writeJSON(w, http.StatusOK, s.products[i])
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Product not found")
}

// intParam parses an optional integer query parameter within [lo, hi];
// hi < 0 means unbounded. It writes the 422 itself and reports false on error.
func intParam(w http.ResponseWriter, raw, name string, def, lo, hi int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeQueryError(w, name, "Input should be a valid integer")
		return 0, false
	}
	if v < lo {
		writeQueryError(w, name, fmt.Sprintf("Input should be greater than or equal to %d", lo))
		return 0, false
	}
	if hi >= 0 && v > hi {
		writeQueryError(w, name, fmt.Sprintf("Input should be less than or equal to %d", hi))
		return 0, false
	}
	return v, true
}

func writeQueryError(w http.ResponseWriter, name, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []validationDetail{{Loc: []string{"query", name}, Msg: msg, Type: "value_error"}},
	})
}
