package repository

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
