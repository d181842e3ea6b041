package kvstore

import "errors"

var (
	// ErrNotFound indicates the key holds no value.
	ErrNotFound = errors.New("kvstore.not_found")

	// ErrInvalidKey indicates an empty key or one the backend cannot represent.
	ErrInvalidKey = errors.New("kvstore.invalid_key")

	// ErrDecode indicates a stored value could not be decoded.
	ErrDecode = errors.New("kvstore.decode_failed")

	// ErrUnknownDriver indicates Config.Driver names no known backend.
	ErrUnknownDriver = errors.New("kvstore.unknown_driver")
)
