package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/srgjo27/acceloka/internal/core/domain"
	"github.com/srgjo27/acceloka/internal/core/ports"
	"github.com/srgjo27/acceloka/internal/platform/clock"
)

type BookingService struct {
	tx        ports.Transactor
	tickets   ports.TicketRepository
	bookings  ports.BookingRepository
	clock     clock.Clock
	cache     ports.CatalogCache
	publisher ports.EventPublisher
	log       *slog.Logger
}

func NewBookingService(
	tx ports.Transactor,
	tickets ports.TicketRepository,
	bookings ports.BookingRepository,
	clk clock.Clock,
	opts ...Option,
) *BookingService {
	o := buildOptions(opts)
	return &BookingService{
		tx:        tx,
		tickets:   tickets,
		bookings:  bookings,
		clock:     clk,
		cache:     o.cache,
		publisher: o.publisher,
		log:       o.logger.With("component", "booking"),
	}
}

// BookTickets reserves every requested line under a new booking. Requests
// are validated in order against quota already reserved earlier in the same
// call; the first failure rolls the whole call back.
func (s *BookingService) BookTickets(ctx context.Context, requests []TicketQuantity) (*BookTicketsResult, error) {
	if len(requests) == 0 {
		return nil, domain.ErrEmptyRequest
	}

	now := s.clock.Now()
	booking := &domain.Booking{Reference: uuid.New(), CreatedAt: now}
	var result *BookTicketsResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.bookings.CreateBooking(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		locked := make(map[string]*domain.Ticket)
		summary := newPriceSummary()

		for _, req := range requests {
			if req.Quantity < 1 {
				return fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, req.TicketCode)
			}

			ticket, err := s.lockTicket(ctx, locked, req.TicketCode)
			if err != nil {
				return err
			}
			if err := ticket.CheckBookable(req.Quantity, now); err != nil {
				return err
			}
			if err := ticket.Reserve(req.Quantity); err != nil {
				return err
			}

			if line := booking.LineFor(ticket.TicketCode); line != nil {
				line.Quantity += req.Quantity
			} else {
				booking.Lines = append(booking.Lines, domain.BookedTicket{
					BookingID:  booking.ID,
					TicketCode: ticket.TicketCode,
					Quantity:   req.Quantity,
					BookedDate: now,
				})
			}
			summary.add(ticket)
		}

		for i := range booking.Lines {
			line := &booking.Lines[i]
			if err := s.bookings.AddLine(ctx, line); err != nil {
				return fmt.Errorf("add booked ticket %s: %w", line.TicketCode, err)
			}
			if err := s.tickets.UpdateQuota(ctx, line.TicketCode, locked[line.TicketCode].RemainingQuota); err != nil {
				return fmt.Errorf("update quota %s: %w", line.TicketCode, err)
			}
		}

		result = summary.result(booking)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "book tickets", err)
		return nil, err
	}

	s.log.InfoContext(ctx, "tickets booked",
		"booked_ticket_id", booking.ID,
		"reference", booking.Reference,
		"lines", len(booking.Lines),
		"price_summary", result.PriceSummary.String(),
	)
	s.afterCommit(ctx, domain.BookingCreated, booking.ID, eventLines(booking.Lines))

	return result, nil
}

// GetBookedTicketDetails returns the booking grouped by category. A nil
// slice with a nil error means the booking does not exist.
func (s *BookingService) GetBookedTicketDetails(ctx context.Context, bookedTicketID int64) ([]CategoryDetail, error) {
	details, err := s.bookings.GetDetails(ctx, bookedTicketID)
	if err != nil {
		s.log.ErrorContext(ctx, "load booking details failed", "booked_ticket_id", bookedTicketID, "error", err)
		return nil, fmt.Errorf("get booked ticket details: %w", err)
	}
	if len(details) == 0 {
		return nil, nil
	}

	var categories []CategoryDetail
	index := make(map[string]int)
	for _, d := range details {
		i, ok := index[d.CategoryName]
		if !ok {
			i = len(categories)
			index[d.CategoryName] = i
			categories = append(categories, CategoryDetail{CategoryName: d.CategoryName})
		}
		c := &categories[i]
		c.QtyPerCategory += d.Quantity
		c.Tickets = append(c.Tickets, BookedTicketLine{
			TicketCode: d.TicketCode,
			TicketName: d.TicketName,
			EventDate:  d.EventDate,
			Quantity:   d.Quantity,
		})
	}
	return categories, nil
}

// RevokeTicket returns quantity units of one booked line to the ticket's
// quota. The line is removed when it reaches zero, and the booking with it
// once no lines remain.
func (s *BookingService) RevokeTicket(ctx context.Context, bookedTicketID int64, ticketCode string, quantity int) (*RemainingLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, ticketCode)
	}

	var result *RemainingLine
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		line, err := s.bookings.GetLineForUpdate(ctx, bookedTicketID, ticketCode)
		if err != nil {
			return fmt.Errorf("load booked ticket: %w", err)
		}
		if line == nil {
			return fmt.Errorf("%w: %d/%s", domain.ErrBookedTicketNotFound, bookedTicketID, ticketCode)
		}
		if quantity > line.Quantity {
			return fmt.Errorf("%w: %d requested, %d booked", domain.ErrRevokeExceedsBooked, quantity, line.Quantity)
		}

		ticket, err := s.tickets.GetByCodeForUpdate(ctx, ticketCode)
		if err != nil {
			return err
		}

		ticket.Release(quantity)
		line.Quantity -= quantity

		if err := s.tickets.UpdateQuota(ctx, ticket.TicketCode, ticket.RemainingQuota); err != nil {
			return fmt.Errorf("update quota %s: %w", ticket.TicketCode, err)
		}

		if line.Quantity > 0 {
			if err := s.bookings.UpdateLineQuantity(ctx, line.ID, line.Quantity); err != nil {
				return fmt.Errorf("update booked ticket: %w", err)
			}
		} else {
			if err := s.bookings.DeleteLine(ctx, line.ID); err != nil {
				return fmt.Errorf("delete booked ticket: %w", err)
			}
			remaining, err := s.bookings.CountLines(ctx, bookedTicketID)
			if err != nil {
				return fmt.Errorf("count booked tickets: %w", err)
			}
			if remaining == 0 {
				if err := s.bookings.DeleteBooking(ctx, bookedTicketID); err != nil {
					return fmt.Errorf("delete booking: %w", err)
				}
			}
		}

		r := remainingLine(ticket, line.Quantity)
		result = &r
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "revoke ticket", err, "booked_ticket_id", bookedTicketID, "ticket_code", ticketCode)
		return nil, err
	}

	s.log.InfoContext(ctx, "ticket revoked",
		"booked_ticket_id", bookedTicketID,
		"ticket_code", ticketCode,
		"quantity", quantity,
		"remaining_quantity", result.RemainingQuantity,
	)
	s.afterCommit(ctx, domain.BookingRevoked, bookedTicketID, []domain.BookingEventLine{{TicketCode: ticketCode, Quantity: quantity}})

	return result, nil
}

// EditBookedTickets sets new quantities on lines of an existing booking. The
// quantity a line already holds counts as headroom for its new quantity.
func (s *BookingService) EditBookedTickets(ctx context.Context, bookedTicketID int64, updates []TicketQuantity) ([]RemainingLine, error) {
	if len(updates) == 0 {
		return nil, domain.ErrEmptyRequest
	}

	var results []RemainingLine
	booking := domain.Booking{ID: bookedTicketID}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := s.bookings.GetLinesForUpdate(ctx, bookedTicketID)
		if err != nil {
			return fmt.Errorf("load booked tickets: %w", err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: %d", domain.ErrUnknownBooking, bookedTicketID)
		}
		booking.Lines = lines

		locked := make(map[string]*domain.Ticket)
		var touched []string

		for _, upd := range updates {
			line := booking.LineFor(upd.TicketCode)
			if line == nil {
				return fmt.Errorf("%w: %s", domain.ErrTicketNotInBooking, upd.TicketCode)
			}

			ticket, err := s.lockTicket(ctx, locked, upd.TicketCode)
			if err != nil {
				return err
			}
			if upd.Quantity > ticket.RemainingQuota+line.Quantity {
				return fmt.Errorf("%w: %s has %d available, %d requested",
					domain.ErrQuotaExceeded, ticket.TicketCode, ticket.RemainingQuota+line.Quantity, upd.Quantity)
			}
			if upd.Quantity < 1 {
				return fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, upd.TicketCode)
			}

			ticket.Release(line.Quantity)
			if err := ticket.Reserve(upd.Quantity); err != nil {
				return err
			}
			line.Quantity = upd.Quantity

			if !contains(touched, line.TicketCode) {
				touched = append(touched, line.TicketCode)
			}
			results = append(results, remainingLine(ticket, line.Quantity))
		}

		for _, code := range touched {
			line := booking.LineFor(code)
			if err := s.bookings.UpdateLineQuantity(ctx, line.ID, line.Quantity); err != nil {
				return fmt.Errorf("update booked ticket %s: %w", code, err)
			}
			if err := s.tickets.UpdateQuota(ctx, code, locked[code].RemainingQuota); err != nil {
				return fmt.Errorf("update quota %s: %w", code, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "edit booked tickets", err, "booked_ticket_id", bookedTicketID)
		return nil, err
	}

	s.log.InfoContext(ctx, "booked tickets edited", "booked_ticket_id", bookedTicketID, "updates", len(updates))

	lines := make([]domain.BookingEventLine, 0, len(updates))
	for _, upd := range updates {
		lines = append(lines, domain.BookingEventLine{TicketCode: upd.TicketCode, Quantity: upd.Quantity})
	}
	s.afterCommit(ctx, domain.BookingEdited, bookedTicketID, lines)

	return results, nil
}

// lockTicket loads a ticket row for update once per transaction so repeated
// codes in one call see each other's reservations.
func (s *BookingService) lockTicket(ctx context.Context, locked map[string]*domain.Ticket, code string) (*domain.Ticket, error) {
	if t, ok := locked[code]; ok {
		return t, nil
	}
	t, err := s.tickets.GetByCodeForUpdate(ctx, code)
	if err != nil {
		return nil, err
	}
	locked[code] = t
	return t, nil
}

// afterCommit runs the best-effort side effects of a committed mutation.
func (s *BookingService) afterCommit(ctx context.Context, typ domain.BookingEventType, bookedTicketID int64, lines []domain.BookingEventLine) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
		}
	}
	if s.publisher == nil {
		return
	}
	event := domain.BookingEvent{
		ID:             uuid.New(),
		Type:           typ,
		BookedTicketID: bookedTicketID,
		Lines:          lines,
		OccurredAt:     s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "publish booking event failed",
			"event_type", string(typ),
			"booked_ticket_id", bookedTicketID,
			"error", err,
		)
	}
}

func (s *BookingService) logFailure(ctx context.Context, op string, err error, attrs ...any) {
	attrs = append(attrs, "error", err)
	if domain.IsRejection(err) {
		s.log.WarnContext(ctx, op+" rejected", attrs...)
		return
	}
	s.log.ErrorContext(ctx, op+" failed", attrs...)
}

func eventLines(lines []domain.BookedTicket) []domain.BookingEventLine {
	out := make([]domain.BookingEventLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.BookingEventLine{TicketCode: l.TicketCode, Quantity: l.Quantity})
	}
	return out
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// priceSummary groups booked lines by category in first-seen order. Category
// totals add unit prices per booked line, not per unit.
type priceSummary struct {
	categories []CategoryPrice
	index      map[string]int
}

func newPriceSummary() *priceSummary {
	return &priceSummary{index: make(map[string]int)}
}

func (p *priceSummary) add(t *domain.Ticket) {
	i, ok := p.index[t.CategoryName]
	if !ok {
		i = len(p.categories)
		p.index[t.CategoryName] = i
		p.categories = append(p.categories, CategoryPrice{CategoryName: t.CategoryName})
	}
	c := &p.categories[i]
	c.SummaryPrice = c.SummaryPrice.Add(t.Price)
	c.Tickets = append(c.Tickets, BookedTicketPrice{
		TicketCode: t.TicketCode,
		TicketName: t.TicketName,
		Price:      t.Price,
	})
}

func (p *priceSummary) result(b *domain.Booking) *BookTicketsResult {
	var total domain.Money
	for _, c := range p.categories {
		total = total.Add(c.SummaryPrice)
	}
	return &BookTicketsResult{
		BookedTicketID:       b.ID,
		Reference:            b.Reference,
		PriceSummary:         total,
		TicketsPerCategories: p.categories,
	}
}
