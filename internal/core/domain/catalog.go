package domain

import (
	"strings"
	"time"
)

// DefaultEventDate is substituted for omitted catalog date bounds.
var DefaultEventDate = time.Date(2023, time.November, 5, 19, 0, 0, 0, time.UTC)

type SortField string

const (
	SortByCategoryName SortField = "categoryName"
	SortByTicketCode   SortField = "ticketCode"
	SortByTicketName   SortField = "ticketName"
	SortByPrice        SortField = "price"
	SortByEventDate    SortField = "eventDate"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortField is case-insensitive and also accepts the legacy column
// aliases. Anything unrecognised sorts by ticket code.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "categoryname", "namakategori":
		return SortByCategoryName
	case "ticketname", "namatiket":
		return SortByTicketName
	case "price", "harga":
		return SortByPrice
	case "eventdate", "tanggalevent":
		return SortByEventDate
	default:
		return SortByTicketCode
	}
}

func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// CatalogQuery filters the ticket catalog. Empty strings and nil pointers
// mean "no filter" except for the date bounds, see Normalize.
type CatalogQuery struct {
	CategoryName string
	TicketCode   string
	TicketName   string
	MaxPrice     *Money
	StartDate    *time.Time
	EndDate      *time.Time
	OrderBy      SortField
	OrderState   SortOrder
}

// Normalize fills defaults: both date bounds fall back to DefaultEventDate,
// ordering falls back to ticket code ascending.
func (q CatalogQuery) Normalize() CatalogQuery {
	if q.StartDate == nil {
		d := DefaultEventDate
		q.StartDate = &d
	}
	if q.EndDate == nil {
		d := DefaultEventDate
		q.EndDate = &d
	}
	q.OrderBy = ParseSortField(string(q.OrderBy))
	q.OrderState = ParseSortOrder(string(q.OrderState))
	return q
}
