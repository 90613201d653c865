package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/srgjo27/acceloka/internal/core/services"
)

type BookingUseCase interface {
	BookTickets(ctx context.Context, requests []services.TicketQuantity) (*services.BookTicketsResult, error)
	GetBookedTicketDetails(ctx context.Context, bookedTicketID int64) ([]services.CategoryDetail, error)
	RevokeTicket(ctx context.Context, bookedTicketID int64, ticketCode string, quantity int) (*services.RemainingLine, error)
	EditBookedTickets(ctx context.Context, bookedTicketID int64, updates []services.TicketQuantity) ([]services.RemainingLine, error)
}

type BookingHandler struct {
	svc BookingUseCase
}

func NewBookingHandler(svc BookingUseCase) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) BookTickets(w http.ResponseWriter, r *http.Request) {
	reqs, err := decodeTicketList(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, codeEmptyRequest, "at least one ticket is required")
		return
	}

	resp, err := h.svc.BookTickets(r.Context(), reqs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetBookedTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := bookedTicketID(w, r)
	if !ok {
		return
	}

	details, err := h.svc.GetBookedTicketDetails(r.Context(), id)
	if err != nil {
		writeProblem(w, problem{
			Type:   problemTypeRFC7807,
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "failed to load booked tickets",
		})
		return
	}
	if details == nil {
		writeProblem(w, problem{
			Type:   "https://httpstatuses.com/404",
			Title:  "Not Found",
			Status: http.StatusNotFound,
			Detail: fmt.Sprintf("bookedTicketId %d is not registered", id),
		})
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *BookingHandler) RevokeTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := bookedTicketID(w, r)
	if !ok {
		return
	}
	qty, err := strconv.Atoi(chi.URLParam(r, "qty"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPathParam, "qty must be an integer")
		return
	}

	resp, err := h.svc.RevokeTicket(r.Context(), id, chi.URLParam(r, "ticketCode"), qty)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) EditBookedTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := bookedTicketID(w, r)
	if !ok {
		return
	}
	updates, err := decodeTicketList(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, codeEmptyRequest, "at least one ticket is required")
		return
	}

	resp, err := h.svc.EditBookedTickets(r.Context(), id, updates)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func bookedTicketID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookedTicketId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPathParam, "bookedTicketId must be an integer")
		return 0, false
	}
	return id, true
}

type ticketLine struct {
	TicketCode string `json:"ticketCode"`
	KodeTiket  string `json:"kodeTiket"`
	Quantity   int    `json:"quantity"`
}

// decodeTicketList accepts a bare array or an object with a "tickets" array.
// The legacy field name kodeTiket is read when ticketCode is absent.
func decodeTicketList(body io.Reader) ([]services.TicketQuantity, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return nil, errors.New("unable to read request body")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("request body is required")
	}

	var lines []ticketLine
	switch raw[0] {
	case '[':
		err = json.Unmarshal(raw, &lines)
	case '{':
		var wrapped struct {
			Tickets []ticketLine `json:"tickets"`
		}
		err = json.Unmarshal(raw, &wrapped)
		lines = wrapped.Tickets
	default:
		return nil, errors.New("request body must be a JSON array or object")
	}
	if err != nil {
		return nil, errors.New("invalid json body")
	}

	out := make([]services.TicketQuantity, 0, len(lines))
	for i, l := range lines {
		code := l.TicketCode
		if code == "" {
			code = l.KodeTiket
		}
		if code == "" {
			return nil, fmt.Errorf("tickets[%d].ticketCode is required", i)
		}
		out = append(out, services.TicketQuantity{TicketCode: code, Quantity: l.Quantity})
	}
	return out, nil
}
