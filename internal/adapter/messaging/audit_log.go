package messaging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/srgjo27/acceloka/internal/core/domain"
	"github.com/srgjo27/acceloka/internal/platform/clock"
)

// AuditLog appends one line per booking event to dir/booking-YYYYMMDD.log.
type AuditLog struct {
	dir   string
	clock clock.Clock
	mu    sync.Mutex
}

func NewAuditLog(dir string, clk clock.Clock) *AuditLog {
	return &AuditLog{dir: dir, clock: clk}
}

// Handle decodes a delivery body and appends it.
func (a *AuditLog) Handle(body []byte) error {
	var ev domain.BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	return a.Append(ev)
}

func (a *AuditLog) Append(ev domain.BookingEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(a.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Path is the file receiving today's entries.
func (a *AuditLog) Path() string {
	return filepath.Join(a.dir, "booking-"+a.clock.Now().Format("20060102")+".log")
}

func FormatEvent(ev domain.BookingEvent) string {
	lines := make([]string, 0, len(ev.Lines))
	for _, l := range ev.Lines {
		lines = append(lines, fmt.Sprintf("%s x%d", l.TicketCode, l.Quantity))
	}
	return fmt.Sprintf("[%s] %s | booked_ticket_id=%d | event_id=%s | lines=[%s]\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookedTicketID, ev.ID, strings.Join(lines, ", "))
}
