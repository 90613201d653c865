package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

const (
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidPathParam    = "invalid_path_parameter"
	codeEmptyRequest        = "empty_request"
	codeUnknownTicket       = "unknown_ticket"
	codeQuotaExhausted      = "quota_exhausted"
	codeQuotaExceeded       = "quota_exceeded"
	codeEventAlreadyPassed  = "event_already_passed"
	codeRevokeExceedsBooked = "revoke_exceeds_booked"
	codeUnknownBooking      = "unknown_booking"
	codeTicketNotInBooking  = "ticket_not_in_booking"
	codeInvalidQuantity     = "invalid_quantity"
	codeBookedTicketMissing = "booked_ticket_not_found"
	codeNotFound            = "not_found"
	codeMethodNotAllowed    = "method_not_allowed"
	codeInternalError       = "internal_error"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrEmptyRequest, codeEmptyRequest},
	{domain.ErrUnknownTicket, codeUnknownTicket},
	{domain.ErrQuotaExhausted, codeQuotaExhausted},
	{domain.ErrQuotaExceeded, codeQuotaExceeded},
	{domain.ErrEventAlreadyPassed, codeEventAlreadyPassed},
	{domain.ErrRevokeExceedsBooked, codeRevokeExceedsBooked},
	{domain.ErrUnknownBooking, codeUnknownBooking},
	{domain.ErrTicketNotInBooking, codeTicketNotInBooking},
	{domain.ErrInvalidQuantity, codeInvalidQuantity},
	{domain.ErrBookedTicketNotFound, codeBookedTicketMissing},
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// problem is an RFC 7807 payload.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

const problemTypeRFC7807 = "https://tools.ietf.org/html/rfc7807"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeProblem(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeServiceError maps business rejections to 400 and everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			writeError(w, http.StatusBadRequest, ec.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
}
