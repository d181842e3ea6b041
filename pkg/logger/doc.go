// Package logger builds the *slog.Logger instances used across the storefront
// SDK and its CLI.
//
// New assembles a text or JSON handler from a set of Option values, attaches
// static attributes and wraps the result with a decorator that pulls extra
// attributes out of context.Context on every record (the API client uses this
// to stamp request ids).
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("development", "storefront"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.Info("cart updated", logger.ProductID(42), logger.Quantity(3))
//
// Components that accept a logger default to Discard so the SDK stays silent
// unless the caller opts in.
//
// Attribute helpers (Error, UserID, Component, Operation, ...) return an empty
// slog.Attr for nil input, so they can be passed unconditionally.
package logger
