package cart

import "errors"

var (
	// ErrInvalidQuantity is returned by Add for a quantity below 1.
	ErrInvalidQuantity = errors.New("cart.invalid_quantity")
	// ErrInvalidProduct is returned by Add for a product without an id.
	ErrInvalidProduct = errors.New("cart.invalid_product")
)
