package ports

import (
	"context"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

// Transactor runs fn inside one store transaction. Repository calls made
// with the context handed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TicketRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*domain.Ticket, error)
	UpdateQuota(ctx context.Context, code string, remainingQuota int) error
	SearchAvailable(ctx context.Context, q domain.CatalogQuery) ([]domain.Ticket, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	AddLine(ctx context.Context, line *domain.BookedTicket) error
	GetLinesForUpdate(ctx context.Context, bookingID int64) ([]domain.BookedTicket, error)
	GetLineForUpdate(ctx context.Context, bookingID int64, ticketCode string) (*domain.BookedTicket, error)
	GetDetails(ctx context.Context, bookingID int64) ([]domain.BookedTicketDetail, error)
	UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, lineID int64) error
	CountLines(ctx context.Context, bookingID int64) (int, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
}

// CatalogCache stores catalog listings keyed by query and generation.
// Invalidate advances the generation; callers read it before querying the
// store and tag what they Set with it, so a listing computed before a
// mutation committed is never served after that mutation's Invalidate.
type CatalogCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, q domain.CatalogQuery) ([]domain.Ticket, bool, error)
	Set(ctx context.Context, gen int64, q domain.CatalogQuery, tickets []domain.Ticket) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}
