package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

const lineColumns = `id, booking_id, ticket_code, quantity, booked_date`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking inserts the booking header and sets booking.ID.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	const stmt = `
	INSERT INTO bookings (reference, created_at)
	VALUES ($1, $2)
	RETURNING id
	`

	err := conn(ctx, r.db).QueryRowContext(ctx, stmt, booking.Reference, booking.CreatedAt).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) AddLine(ctx context.Context, line *domain.BookedTicket) error {
	const stmt = `
	INSERT INTO booked_tickets (booking_id, ticket_code, quantity, booked_date)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`

	err := conn(ctx, r.db).QueryRowContext(ctx, stmt,
		line.BookingID, line.TicketCode, line.Quantity, line.BookedDate,
	).Scan(&line.ID)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: %s", domain.ErrUnknownTicket, line.TicketCode)
		case isUniqueViolation(err):
			return fmt.Errorf("insert booked ticket %d/%s: duplicate line: %w", line.BookingID, line.TicketCode, err)
		}
		return fmt.Errorf("insert booked ticket %s: %w", line.TicketCode, err)
	}
	return nil
}

func scanLine(row rowScanner) (domain.BookedTicket, error) {
	var l domain.BookedTicket
	err := row.Scan(&l.ID, &l.BookingID, &l.TicketCode, &l.Quantity, &l.BookedDate)
	l.BookedDate = l.BookedDate.UTC()
	return l, err
}

func (r *BookingRepository) GetLinesForUpdate(ctx context.Context, bookingID int64) ([]domain.BookedTicket, error) {
	query := `SELECT ` + lineColumns + ` FROM booked_tickets WHERE booking_id = $1 ORDER BY id FOR UPDATE`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("query booked tickets: %w", err)
	}
	defer rows.Close()

	var lines []domain.BookedTicket
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booked ticket: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked tickets: %w", err)
	}
	return lines, nil
}

// GetLineForUpdate returns nil without error when the booking holds no line
// for ticketCode.
func (r *BookingRepository) GetLineForUpdate(ctx context.Context, bookingID int64, ticketCode string) (*domain.BookedTicket, error) {
	query := `SELECT ` + lineColumns + ` FROM booked_tickets WHERE booking_id = $1 AND ticket_code = $2 FOR UPDATE`

	l, err := scanLine(conn(ctx, r.db).QueryRowContext(ctx, query, bookingID, ticketCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booked ticket: %w", err)
	}
	return &l, nil
}

func (r *BookingRepository) GetDetails(ctx context.Context, bookingID int64) ([]domain.BookedTicketDetail, error) {
	const query = `
	SELECT bt.id, bt.booking_id, bt.ticket_code, bt.quantity, bt.booked_date,
	       t.category_name, t.ticket_name, t.event_date, t.price
	FROM booked_tickets bt
	JOIN tickets t ON t.ticket_code = bt.ticket_code
	WHERE bt.booking_id = $1
	ORDER BY bt.id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("query booking details: %w", err)
	}
	defer rows.Close()

	var details []domain.BookedTicketDetail
	for rows.Next() {
		var d domain.BookedTicketDetail
		if err := rows.Scan(
			&d.ID,
			&d.BookingID,
			&d.TicketCode,
			&d.Quantity,
			&d.BookedDate,
			&d.CategoryName,
			&d.TicketName,
			&d.EventDate,
			&d.Price,
		); err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}
		d.BookedDate = d.BookedDate.UTC()
		d.EventDate = d.EventDate.UTC()
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking details: %w", err)
	}
	return details, nil
}

func (r *BookingRepository) UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	const stmt = `UPDATE booked_tickets SET quantity = $2 WHERE id = $1`

	if _, err := conn(ctx, r.db).ExecContext(ctx, stmt, lineID, quantity); err != nil {
		return fmt.Errorf("update booked ticket %d: %w", lineID, err)
	}
	return nil
}

func (r *BookingRepository) DeleteLine(ctx context.Context, lineID int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM booked_tickets WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("delete booked ticket %d: %w", lineID, err)
	}
	return nil
}

func (r *BookingRepository) CountLines(ctx context.Context, bookingID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM booked_tickets WHERE booking_id = $1`, bookingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count booked tickets: %w", err)
	}
	return n, nil
}

// DeleteBooking removes the booking header; remaining lines go with it.
func (r *BookingRepository) DeleteBooking(ctx context.Context, bookingID int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID); err != nil {
		return fmt.Errorf("delete booking %d: %w", bookingID, err)
	}
	return nil
}
