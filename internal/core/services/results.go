package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

type TicketQuantity struct {
	TicketCode string `json:"ticketCode"`
	Quantity   int    `json:"quantity"`
}

type BookedTicketPrice struct {
	TicketCode string       `json:"ticketCode"`
	TicketName string       `json:"ticketName"`
	Price      domain.Money `json:"price"`
}

type CategoryPrice struct {
	CategoryName string              `json:"categoryName"`
	SummaryPrice domain.Money        `json:"summaryPrice"`
	Tickets      []BookedTicketPrice `json:"tickets"`
}

type BookTicketsResult struct {
	BookedTicketID       int64           `json:"bookedTicketId"`
	Reference            uuid.UUID       `json:"reference"`
	PriceSummary         domain.Money    `json:"priceSummary"`
	TicketsPerCategories []CategoryPrice `json:"ticketsPerCategories"`
}

type BookedTicketLine struct {
	TicketCode string    `json:"ticketCode"`
	TicketName string    `json:"ticketName"`
	EventDate  time.Time `json:"eventDate"`
	Quantity   int       `json:"quantity"`
}

type CategoryDetail struct {
	CategoryName   string             `json:"categoryName"`
	QtyPerCategory int                `json:"qtyPerCategory"`
	Tickets        []BookedTicketLine `json:"tickets"`
}

// RemainingLine reports a booked line after revoke or edit.
type RemainingLine struct {
	TicketCode        string `json:"ticketCode"`
	TicketName        string `json:"ticketName"`
	CategoryName      string `json:"categoryName"`
	RemainingQuantity int    `json:"remainingQuantity"`
}

func remainingLine(t *domain.Ticket, quantity int) RemainingLine {
	return RemainingLine{
		TicketCode:        t.TicketCode,
		TicketName:        t.TicketName,
		CategoryName:      t.CategoryName,
		RemainingQuantity: quantity,
	}
}
