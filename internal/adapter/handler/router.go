package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(bookings *BookingHandler, tickets *TicketHandler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/book-ticket", func(r chi.Router) {
			r.Post("/", bookings.BookTickets)
			r.Get("/{bookedTicketId}", bookings.GetBookedTicket)
			r.Put("/{bookedTicketId}", bookings.EditBookedTickets)
			r.Delete("/{bookedTicketId}/{ticketCode}/{qty}", bookings.RevokeTicket)

			r.Get("/get-booked-ticket/{bookedTicketId}", bookings.GetBookedTicket)
			r.Put("/edit-booked-ticket/{bookedTicketId}", bookings.EditBookedTickets)
			r.Delete("/revoke-ticket/{bookedTicketId}/{ticketCode}/{qty}", bookings.RevokeTicket)
		})

		r.Get("/tikets/get-available-ticket", tickets.ListAvailable)
	})

	return r
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
