package services

import (
	"log/slog"

	"github.com/srgjo27/acceloka/internal/core/ports"
)

type options struct {
	cache     ports.CatalogCache
	publisher ports.EventPublisher
	logger    *slog.Logger
}

type Option func(*options)

// WithCatalogCache enables read-through caching for catalog queries and
// invalidation after booking mutations.
func WithCatalogCache(c ports.CatalogCache) Option {
	return func(o *options) { o.cache = c }
}

func WithPublisher(p ports.EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
