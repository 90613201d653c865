package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking groups the line items created by a single booking call. Its ID is
// the bookedTicketId clients use to address the booking.
type Booking struct {
	ID        int64
	Reference uuid.UUID
	CreatedAt time.Time
	Lines     []BookedTicket
}

// BookedTicket is one reservation line: a quantity of a single ticket code.
type BookedTicket struct {
	ID         int64
	BookingID  int64
	TicketCode string
	Quantity   int
	BookedDate time.Time
}

// BookedTicketDetail is a booked line joined with its catalog entry.
type BookedTicketDetail struct {
	BookedTicket
	CategoryName string
	TicketName   string
	EventDate    time.Time
	Price        Money
}

// LineFor returns the line holding code, or nil.
func (b *Booking) LineFor(code string) *BookedTicket {
	for i := range b.Lines {
		if b.Lines[i].TicketCode == code {
			return &b.Lines[i]
		}
	}
	return nil
}

type BookingEventType string

const (
	BookingCreated BookingEventType = "booking.created"
	BookingEdited  BookingEventType = "booking.edited"
	BookingRevoked BookingEventType = "booking.revoked"
)

// BookingEvent is emitted after a booking mutation has been committed.
type BookingEvent struct {
	ID             uuid.UUID          `json:"id"`
	Type           BookingEventType   `json:"type"`
	BookedTicketID int64              `json:"bookedTicketId"`
	Lines          []BookingEventLine `json:"lines"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

type BookingEventLine struct {
	TicketCode string `json:"ticketCode"`
	Quantity   int    `json:"quantity"`
}
