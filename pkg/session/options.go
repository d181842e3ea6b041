package session

import "log/slog"

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithEventBuffer sets how many events each subscriber may lag behind
// before events are dropped for it. Defaults to 16.
func WithEventBuffer(n int) Option {
	return func(m *Manager) {
		m.eventBuffer = n
	}
}
