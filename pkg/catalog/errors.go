package catalog

import "errors"

var (
	ErrInvalidLimit = errors.New("catalog.invalid_limit")
	ErrEmptySlug    = errors.New("catalog.empty_slug")
)
