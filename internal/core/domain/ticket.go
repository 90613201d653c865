package domain

import (
	"fmt"
	"time"
)

type Ticket struct {
	ID             int64     `json:"-"`
	TicketCode     string    `json:"ticketCode"`
	CategoryName   string    `json:"categoryName"`
	TicketName     string    `json:"ticketName"`
	EventDate      time.Time `json:"eventDate"`
	Price          Money     `json:"price"`
	RemainingQuota int       `json:"remainingQuota"`
}

// CheckBookable runs the booking rules in the order callers observe them:
// exhausted quota, insufficient quota, then event timing.
func (t *Ticket) CheckBookable(quantity int, now time.Time) error {
	if t.RemainingQuota <= 0 {
		return fmt.Errorf("%w: %s", ErrQuotaExhausted, t.TicketCode)
	}
	if t.RemainingQuota < quantity {
		return fmt.Errorf("%w: %s has %d left, %d requested", ErrQuotaExceeded, t.TicketCode, t.RemainingQuota, quantity)
	}
	if !t.EventDate.After(now) {
		return fmt.Errorf("%w: %s", ErrEventAlreadyPassed, t.TicketCode)
	}
	return nil
}

func (t *Ticket) Reserve(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > t.RemainingQuota {
		return fmt.Errorf("%w: %s has %d left, %d requested", ErrQuotaExceeded, t.TicketCode, t.RemainingQuota, quantity)
	}
	t.RemainingQuota -= quantity
	return nil
}

func (t *Ticket) Release(quantity int) {
	t.RemainingQuota += quantity
}
