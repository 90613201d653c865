package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

func sampleTickets() []domain.Ticket {
	return []domain.Ticket{{
		TicketCode:     "C1",
		CategoryName:   "Cinema",
		TicketName:     "Late Show",
		EventDate:      time.Date(2027, 1, 1, 20, 0, 0, 0, time.UTC),
		Price:          domain.MustMoney("75000"),
		RemainingQuota: 12,
	}}
}

func TestCatalogCache_Generation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCatalogCache(db, time.Minute, "test")

	mock.ExpectGet("test:catalog:gen").RedisNil()
	mock.ExpectGet("test:catalog:gen").SetVal("7")
	mock.ExpectGet("test:catalog:gen").SetErr(errors.New("connection refused"))

	gen, err := c.Generation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	gen, err = c.Generation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), gen)

	_, err = c.Generation(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCatalogCache(db, time.Minute, "test")
	q := domain.CatalogQuery{}.Normalize()

	mock.ExpectGet(c.key(0, q)).RedisNil()

	got, ok, err := c.Get(context.Background(), 0, q)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCatalogCache(db, time.Minute, "test")
	q := domain.CatalogQuery{TicketCode: "C"}.Normalize()
	tickets := sampleTickets()

	body, err := json.Marshal(tickets)
	require.NoError(t, err)

	mock.ExpectSetEx(c.key(3, q), string(body), time.Minute).SetVal("OK")
	mock.ExpectGet(c.key(3, q)).SetVal(string(body))

	require.NoError(t, c.Set(context.Background(), 3, q, tickets))

	got, ok, err := c.Get(context.Background(), 3, q)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "C1", got[0].TicketCode)
	assert.Equal(t, "75000.00", got[0].Price.String())
	assert.True(t, got[0].EventDate.Equal(tickets[0].EventDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCatalogCache(db, time.Minute, "test")

	mock.ExpectIncr("test:catalog:gen").SetVal(1)
	mock.ExpectIncr("test:catalog:gen").SetErr(errors.New("connection refused"))

	require.NoError(t, c.Invalidate(context.Background()))
	assert.Error(t, c.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCache_StaleWriteIsNotServed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCatalogCache(db, time.Minute, "test")
	ctx := context.Background()
	q := domain.CatalogQuery{}.Normalize()

	body, err := json.Marshal(sampleTickets())
	require.NoError(t, err)

	// reader takes generation 0, a booking invalidates, then the reader
	// stores what it read before the booking committed
	mock.ExpectGet("test:catalog:gen").RedisNil()
	mock.ExpectIncr("test:catalog:gen").SetVal(1)
	mock.ExpectSetEx(c.key(0, q), string(body), time.Minute).SetVal("OK")
	mock.ExpectGet("test:catalog:gen").SetVal("1")
	mock.ExpectGet(c.key(1, q)).RedisNil()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, q, sampleTickets()))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	_, ok, err := c.Get(ctx, gen, q)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEqual(t, c.key(0, q), c.key(1, q))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCatalogCache(db, time.Minute, "test")
	q := domain.CatalogQuery{}.Normalize()

	mock.ExpectGet(c.key(0, q)).SetErr(errors.New("connection refused"))

	_, ok, err := c.Get(context.Background(), 0, q)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCatalogCache_KeyDependsOnQuery(t *testing.T) {
	c := NewCatalogCache(nil, time.Minute, "")
	maxPrice := domain.MustMoney("100")

	base := domain.CatalogQuery{}.Normalize()
	withPrice := domain.CatalogQuery{MaxPrice: &maxPrice}.Normalize()
	sorted := domain.CatalogQuery{OrderBy: "price"}.Normalize()

	assert.Equal(t, c.key(0, base), c.key(0, domain.CatalogQuery{}.Normalize()))
	assert.NotEqual(t, c.key(0, base), c.key(0, withPrice))
	assert.NotEqual(t, c.key(0, base), c.key(0, sorted))
	assert.NotEqual(t, c.key(0, base), c.key(1, base))
	assert.Contains(t, c.key(0, base), "acceloka:catalog:0:")
}
