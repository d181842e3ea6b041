package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier. Nil ids produce an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// RequestID records the outgoing request identifier.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Operation names the state-changing operation being logged (login, cart.add, ...).
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

func ProductID(id int64) slog.Attr {
	return slog.Int64("product_id", id)
}

func Quantity(n int) slog.Attr {
	return slog.Int("quantity", n)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func Method(m string) slog.Attr {
	return slog.String("method", m)
}

func Path(p string) slog.Attr {
	return slog.String("path", p)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Key records a durable storage key.
func Key(k string) slog.Attr {
	return slog.String("key", k)
}
