package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/srgjo27/acceloka/internal/core/domain"
	"github.com/srgjo27/acceloka/internal/core/ports"
)

type CatalogService struct {
	tickets ports.TicketRepository
	cache   ports.CatalogCache
	log     *slog.Logger
}

func NewCatalogService(tickets ports.TicketRepository, opts ...Option) *CatalogService {
	o := buildOptions(opts)
	return &CatalogService{
		tickets: tickets,
		cache:   o.cache,
		log:     o.logger.With("component", "catalog"),
	}
}

// ListAvailableTickets returns tickets with remaining quota matching q, in
// the requested order. It never returns a nil slice on success.
func (s *CatalogService) ListAvailableTickets(ctx context.Context, q domain.CatalogQuery) ([]domain.Ticket, error) {
	q = q.Normalize()

	// The generation is read before the store so a listing computed across a
	// concurrent booking is filed under a generation that booking retires.
	var gen int64
	useCache := s.cache != nil
	if useCache {
		var err error
		if gen, err = s.cache.Generation(ctx); err != nil {
			s.log.WarnContext(ctx, "catalog cache generation read failed", "error", err)
			useCache = false
		}
	}

	if useCache {
		cached, ok, err := s.cache.Get(ctx, gen, q)
		if err != nil {
			s.log.WarnContext(ctx, "catalog cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	tickets, err := s.tickets.SearchAvailable(ctx, q)
	if err != nil {
		s.log.ErrorContext(ctx, "catalog query failed", "error", err)
		return nil, fmt.Errorf("list available tickets: %w", err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	if useCache {
		if err := s.cache.Set(ctx, gen, q, tickets); err != nil {
			s.log.WarnContext(ctx, "catalog cache write failed", "error", err)
		}
	}

	return tickets, nil
}
