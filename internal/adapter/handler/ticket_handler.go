package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

type CatalogUseCase interface {
	ListAvailableTickets(ctx context.Context, q domain.CatalogQuery) ([]domain.Ticket, error)
}

type TicketHandler struct {
	svc CatalogUseCase
	log *slog.Logger
}

func NewTicketHandler(svc CatalogUseCase, log *slog.Logger) *TicketHandler {
	return &TicketHandler{svc: svc, log: log}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (h *TicketHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	q, p := parseCatalogQuery(r.URL.Query())
	if p != nil {
		writeProblem(w, *p)
		return
	}

	tickets, err := h.svc.ListAvailableTickets(r.Context(), q)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list available tickets failed", "error", err)
		writeProblem(w, problem{
			Type:   problemTypeRFC7807,
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "failed to list available tickets",
		})
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func parseCatalogQuery(v url.Values) (domain.CatalogQuery, *problem) {
	q := domain.CatalogQuery{
		CategoryName: v.Get("categoryName"),
		TicketCode:   v.Get("ticketCode"),
		TicketName:   v.Get("ticketName"),
		OrderBy:      domain.SortField(v.Get("orderBy")),
		OrderState:   domain.SortOrder(v.Get("orderState")),
	}

	if s := v.Get("maxPrice"); s != "" {
		m, err := domain.NewMoney(s)
		if err != nil {
			return q, &problem{
				Type:   problemTypeRFC7807,
				Title:  "Invalid Price Format",
				Status: http.StatusBadRequest,
				Detail: "maxPrice must be a decimal number.",
			}
		}
		q.MaxPrice = &m
	}

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &q.StartDate},
		{"endDate", &q.EndDate},
	} {
		s := v.Get(f.name)
		if s == "" {
			continue
		}
		t, ok := parseDate(s)
		if !ok {
			return q, &problem{
				Type:   problemTypeRFC7807,
				Title:  "Invalid Date Format",
				Status: http.StatusBadRequest,
				Detail: "The date format provided is incorrect. Please use ISO 8601 format (YYYY-MM-DDTHH:MM:SSZ).",
			}
		}
		*f.dst = &t
	}

	return q, nil
}

// parseDate reads ISO 8601 values; inputs without a zone are taken as UTC.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
