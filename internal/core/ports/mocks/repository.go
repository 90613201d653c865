// Package mocks holds testify mocks for the core ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type Transactor struct {
	mock.Mock
}

func NewTransactor(t testingT) *Transactor {
	m := &Transactor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// WithinTx records the call and, unless an error is configured, runs fn
// with the caller's context.
func (m *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ret := m.Called(ctx)
	if err := ret.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type TicketRepository struct {
	mock.Mock
}

func NewTicketRepository(t testingT) *TicketRepository {
	m := &TicketRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	ret := m.Called(ctx, code)
	var r0 *domain.Ticket
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Ticket)
	}
	return r0, ret.Error(1)
}

func (m *TicketRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Ticket, error) {
	ret := m.Called(ctx, code)
	var r0 *domain.Ticket
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Ticket)
	}
	return r0, ret.Error(1)
}

func (m *TicketRepository) UpdateQuota(ctx context.Context, code string, remainingQuota int) error {
	ret := m.Called(ctx, code, remainingQuota)
	return ret.Error(0)
}

func (m *TicketRepository) SearchAvailable(ctx context.Context, q domain.CatalogQuery) ([]domain.Ticket, error) {
	ret := m.Called(ctx, q)
	var r0 []domain.Ticket
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Ticket)
	}
	return r0, ret.Error(1)
}

type BookingRepository struct {
	mock.Mock
}

func NewBookingRepository(t testingT) *BookingRepository {
	m := &BookingRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	ret := m.Called(ctx, booking)
	return ret.Error(0)
}

func (m *BookingRepository) AddLine(ctx context.Context, line *domain.BookedTicket) error {
	ret := m.Called(ctx, line)
	return ret.Error(0)
}

func (m *BookingRepository) GetLinesForUpdate(ctx context.Context, bookingID int64) ([]domain.BookedTicket, error) {
	ret := m.Called(ctx, bookingID)
	var r0 []domain.BookedTicket
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.BookedTicket)
	}
	return r0, ret.Error(1)
}

func (m *BookingRepository) GetLineForUpdate(ctx context.Context, bookingID int64, ticketCode string) (*domain.BookedTicket, error) {
	ret := m.Called(ctx, bookingID, ticketCode)
	var r0 *domain.BookedTicket
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.BookedTicket)
	}
	return r0, ret.Error(1)
}

func (m *BookingRepository) GetDetails(ctx context.Context, bookingID int64) ([]domain.BookedTicketDetail, error) {
	ret := m.Called(ctx, bookingID)
	var r0 []domain.BookedTicketDetail
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.BookedTicketDetail)
	}
	return r0, ret.Error(1)
}

func (m *BookingRepository) UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	ret := m.Called(ctx, lineID, quantity)
	return ret.Error(0)
}

func (m *BookingRepository) DeleteLine(ctx context.Context, lineID int64) error {
	ret := m.Called(ctx, lineID)
	return ret.Error(0)
}

func (m *BookingRepository) CountLines(ctx context.Context, bookingID int64) (int, error) {
	ret := m.Called(ctx, bookingID)
	return ret.Int(0), ret.Error(1)
}

func (m *BookingRepository) DeleteBooking(ctx context.Context, bookingID int64) error {
	ret := m.Called(ctx, bookingID)
	return ret.Error(0)
}

type CatalogCache struct {
	mock.Mock
}

func NewCatalogCache(t testingT) *CatalogCache {
	m := &CatalogCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CatalogCache) Generation(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	var r0 int64
	if v := ret.Get(0); v != nil {
		r0 = v.(int64)
	}
	return r0, ret.Error(1)
}

func (m *CatalogCache) Get(ctx context.Context, gen int64, q domain.CatalogQuery) ([]domain.Ticket, bool, error) {
	ret := m.Called(ctx, gen, q)
	var r0 []domain.Ticket
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Ticket)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (m *CatalogCache) Set(ctx context.Context, gen int64, q domain.CatalogQuery, tickets []domain.Ticket) error {
	ret := m.Called(ctx, gen, q, tickets)
	return ret.Error(0)
}

func (m *CatalogCache) Invalidate(ctx context.Context) error {
	ret := m.Called(ctx)
	return ret.Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	ret := m.Called(ctx, event)
	return ret.Error(0)
}
