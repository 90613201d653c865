package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

const ticketColumns = `id, ticket_code, category_name, ticket_name, event_date, price, remaining_quota`

var sortColumns = map[domain.SortField]string{
	domain.SortByCategoryName: "category_name",
	domain.SortByTicketCode:   "ticket_code",
	domain.SortByTicketName:   "ticket_name",
	domain.SortByPrice:        "price",
	domain.SortByEventDate:    "event_date",
}

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID,
		&t.TicketCode,
		&t.CategoryName,
		&t.TicketName,
		&t.EventDate,
		&t.Price,
		&t.RemainingQuota,
	)
	if err != nil {
		return nil, err
	}
	t.EventDate = t.EventDate.UTC()
	return &t, nil
}

func (r *TicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.getByCode(ctx, code, "")
}

// GetByCodeForUpdate locks the ticket row until the surrounding transaction ends.
func (r *TicketRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.getByCode(ctx, code, " FOR UPDATE")
}

func (r *TicketRepository) getByCode(ctx context.Context, code, lock string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_code = $1` + lock

	t, err := scanTicket(conn(ctx, r.db).QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTicket, code)
		}
		return nil, fmt.Errorf("get ticket %s: %w", code, err)
	}
	return t, nil
}

func (r *TicketRepository) UpdateQuota(ctx context.Context, code string, remainingQuota int) error {
	const stmt = `UPDATE tickets SET remaining_quota = $2 WHERE ticket_code = $1`

	res, err := conn(ctx, r.db).ExecContext(ctx, stmt, code, remainingQuota)
	if err != nil {
		return fmt.Errorf("update quota %s: %w", code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quota %s: %w", code, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownTicket, code)
	}
	return nil
}

// SearchAvailable expects a normalized query. Substring filters are case-sensitive.
func (r *TicketRepository) SearchAvailable(ctx context.Context, q domain.CatalogQuery) ([]domain.Ticket, error) {
	query, args := buildSearchQuery(q)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, nil
}

func buildSearchQuery(q domain.CatalogQuery) (string, []any) {
	where := []string{"remaining_quota > 0"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.CategoryName != "" {
		where = append(where, "strpos(category_name, "+arg(q.CategoryName)+") > 0")
	}
	if q.TicketCode != "" {
		where = append(where, "strpos(ticket_code, "+arg(q.TicketCode)+") > 0")
	}
	if q.TicketName != "" {
		where = append(where, "strpos(ticket_name, "+arg(q.TicketName)+") > 0")
	}
	if q.MaxPrice != nil {
		where = append(where, "price <= "+arg(*q.MaxPrice))
	}
	if q.StartDate != nil {
		where = append(where, "event_date >= "+arg(*q.StartDate))
	}
	if q.EndDate != nil {
		where = append(where, "event_date <= "+arg(*q.EndDate))
	}

	col, ok := sortColumns[q.OrderBy]
	if !ok {
		col = "ticket_code"
	}
	dir := "ASC"
	if q.OrderState == domain.SortDesc {
		dir = "DESC"
	}
	order := col + " " + dir
	if col != "ticket_code" {
		order += ", ticket_code ASC"
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY ` + order
	return query, args
}
