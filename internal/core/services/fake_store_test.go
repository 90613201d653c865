package services_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

// fakeStore is an in-memory store whose WithinTx restores a snapshot when fn
// fails.
type fakeStore struct {
	tickets  map[string]domain.Ticket
	bookings map[int64]domain.Booking
	lines    map[int64]domain.BookedTicket

	nextBooking int64
	nextLine    int64

	// afterSearch runs once, after SearchAvailable has read the tickets.
	afterSearch func()
	searches    int
}

func newFakeStore(tickets ...domain.Ticket) *fakeStore {
	f := &fakeStore{
		tickets:  make(map[string]domain.Ticket),
		bookings: make(map[int64]domain.Booking),
		lines:    make(map[int64]domain.BookedTicket),
	}
	for _, t := range tickets {
		f.tickets[t.TicketCode] = t
	}
	return f
}

type fakeSnapshot struct {
	tickets     map[string]domain.Ticket
	bookings    map[int64]domain.Booking
	lines       map[int64]domain.BookedTicket
	nextBooking int64
	nextLine    int64
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := fakeSnapshot{
		tickets:     make(map[string]domain.Ticket, len(f.tickets)),
		bookings:    make(map[int64]domain.Booking, len(f.bookings)),
		lines:       make(map[int64]domain.BookedTicket, len(f.lines)),
		nextBooking: f.nextBooking,
		nextLine:    f.nextLine,
	}
	for k, v := range f.tickets {
		snap.tickets[k] = v
	}
	for k, v := range f.bookings {
		snap.bookings[k] = v
	}
	for k, v := range f.lines {
		snap.lines[k] = v
	}

	if err := fn(ctx); err != nil {
		f.tickets = snap.tickets
		f.bookings = snap.bookings
		f.lines = snap.lines
		f.nextBooking = snap.nextBooking
		f.nextLine = snap.nextLine
		return err
	}
	return nil
}

func (f *fakeStore) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	t, ok := f.tickets[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTicket, code)
	}
	return &t, nil
}

func (f *fakeStore) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Ticket, error) {
	return f.GetByCode(ctx, code)
}

func (f *fakeStore) UpdateQuota(_ context.Context, code string, remainingQuota int) error {
	t, ok := f.tickets[code]
	if !ok {
		return fmt.Errorf("update quota: no ticket %s", code)
	}
	if remainingQuota < 0 {
		return fmt.Errorf("update quota: negative quota for %s", code)
	}
	t.RemainingQuota = remainingQuota
	f.tickets[code] = t
	return nil
}

// SearchAvailable applies the catalog predicate in memory and orders by
// ticket code.
func (f *fakeStore) SearchAvailable(_ context.Context, q domain.CatalogQuery) ([]domain.Ticket, error) {
	f.searches++
	var out []domain.Ticket
	for _, t := range f.tickets {
		if matches(q, t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketCode < out[j].TicketCode })

	if hook := f.afterSearch; hook != nil {
		f.afterSearch = nil
		hook()
	}
	return out, nil
}

func matches(q domain.CatalogQuery, t domain.Ticket) bool {
	switch {
	case t.RemainingQuota <= 0:
		return false
	case !strings.Contains(t.CategoryName, q.CategoryName),
		!strings.Contains(t.TicketCode, q.TicketCode),
		!strings.Contains(t.TicketName, q.TicketName):
		return false
	case q.MaxPrice != nil && t.Price.GreaterThan(q.MaxPrice.Decimal):
		return false
	case q.StartDate != nil && t.EventDate.Before(*q.StartDate):
		return false
	case q.EndDate != nil && t.EventDate.After(*q.EndDate):
		return false
	}
	return true
}

// memCache is an in-memory generation-keyed catalog cache.
type memCache struct {
	gen     int64
	entries map[string][]domain.Ticket
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]domain.Ticket)}
}

func (c *memCache) key(gen int64, q domain.CatalogQuery) string {
	var maxPrice, start, end string
	if q.MaxPrice != nil {
		maxPrice = q.MaxPrice.String()
	}
	if q.StartDate != nil {
		start = q.StartDate.String()
	}
	if q.EndDate != nil {
		end = q.EndDate.String()
	}
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s|%s|%s", gen,
		q.CategoryName, q.TicketCode, q.TicketName, maxPrice, start, end, q.OrderBy, q.OrderState)
}

func (c *memCache) Generation(context.Context) (int64, error) { return c.gen, nil }

func (c *memCache) Get(_ context.Context, gen int64, q domain.CatalogQuery) ([]domain.Ticket, bool, error) {
	tickets, ok := c.entries[c.key(gen, q)]
	return tickets, ok, nil
}

func (c *memCache) Set(_ context.Context, gen int64, q domain.CatalogQuery, tickets []domain.Ticket) error {
	c.entries[c.key(gen, q)] = tickets
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.gen++
	return nil
}

func (f *fakeStore) CreateBooking(_ context.Context, b *domain.Booking) error {
	f.nextBooking++
	b.ID = f.nextBooking
	f.bookings[b.ID] = domain.Booking{ID: b.ID, Reference: b.Reference, CreatedAt: b.CreatedAt}
	return nil
}

func (f *fakeStore) AddLine(_ context.Context, line *domain.BookedTicket) error {
	if _, ok := f.bookings[line.BookingID]; !ok {
		return fmt.Errorf("add line: no booking %d", line.BookingID)
	}
	for _, l := range f.lines {
		if l.BookingID == line.BookingID && l.TicketCode == line.TicketCode {
			return fmt.Errorf("add line: duplicate %d/%s", line.BookingID, line.TicketCode)
		}
	}
	f.nextLine++
	line.ID = f.nextLine
	f.lines[line.ID] = *line
	return nil
}

func (f *fakeStore) bookingLines(bookingID int64) []domain.BookedTicket {
	var out []domain.BookedTicket
	for _, l := range f.lines {
		if l.BookingID == bookingID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) GetLinesForUpdate(_ context.Context, bookingID int64) ([]domain.BookedTicket, error) {
	return f.bookingLines(bookingID), nil
}

func (f *fakeStore) GetLineForUpdate(_ context.Context, bookingID int64, code string) (*domain.BookedTicket, error) {
	for _, l := range f.bookingLines(bookingID) {
		if l.TicketCode == code {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetDetails(_ context.Context, bookingID int64) ([]domain.BookedTicketDetail, error) {
	var out []domain.BookedTicketDetail
	for _, l := range f.bookingLines(bookingID) {
		t := f.tickets[l.TicketCode]
		out = append(out, domain.BookedTicketDetail{
			BookedTicket: l,
			CategoryName: t.CategoryName,
			TicketName:   t.TicketName,
			EventDate:    t.EventDate,
			Price:        t.Price,
		})
	}
	return out, nil
}

func (f *fakeStore) UpdateLineQuantity(_ context.Context, lineID int64, quantity int) error {
	l, ok := f.lines[lineID]
	if !ok {
		return fmt.Errorf("update line: no line %d", lineID)
	}
	l.Quantity = quantity
	f.lines[lineID] = l
	return nil
}

func (f *fakeStore) DeleteLine(_ context.Context, lineID int64) error {
	delete(f.lines, lineID)
	return nil
}

func (f *fakeStore) CountLines(_ context.Context, bookingID int64) (int, error) {
	return len(f.bookingLines(bookingID)), nil
}

func (f *fakeStore) DeleteBooking(_ context.Context, bookingID int64) error {
	for id, l := range f.lines {
		if l.BookingID == bookingID {
			delete(f.lines, id)
		}
	}
	delete(f.bookings, bookingID)
	return nil
}

func (f *fakeStore) quota(code string) int {
	return f.tickets[code].RemainingQuota
}

func (f *fakeStore) booked(code string) int {
	n := 0
	for _, l := range f.lines {
		if l.TicketCode == code {
			n += l.Quantity
		}
	}
	return n
}

func ticket(code, category string, quota int, price string, event time.Time) domain.Ticket {
	return domain.Ticket{
		TicketCode:     code,
		CategoryName:   category,
		TicketName:     "Ticket " + code,
		EventDate:      event,
		Price:          domain.MustMoney(price),
		RemainingQuota: quota,
	}
}
