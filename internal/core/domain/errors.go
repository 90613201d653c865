package domain

import "errors"

var (
	ErrUnknownTicket        = errors.New("ticket code is not registered")
	ErrQuotaExhausted       = errors.New("ticket quota is exhausted")
	ErrQuotaExceeded        = errors.New("requested quantity exceeds the remaining quota")
	ErrEventAlreadyPassed   = errors.New("event date must be after the booking date")
	ErrRevokeExceedsBooked  = errors.New("revoke quantity exceeds the booked quantity")
	ErrUnknownBooking       = errors.New("booked ticket id is not registered")
	ErrTicketNotInBooking   = errors.New("ticket code is not part of this booking")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrBookedTicketNotFound = errors.New("booked ticket id and ticket code combination is not registered")
	ErrEmptyRequest         = errors.New("at least one ticket is required")
)

var rejections = []error{
	ErrUnknownTicket,
	ErrQuotaExhausted,
	ErrQuotaExceeded,
	ErrEventAlreadyPassed,
	ErrRevokeExceedsBooked,
	ErrUnknownBooking,
	ErrTicketNotInBooking,
	ErrInvalidQuantity,
	ErrBookedTicketNotFound,
	ErrEmptyRequest,
}

// IsRejection reports whether err is a business-rule rejection as opposed to
// an infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
