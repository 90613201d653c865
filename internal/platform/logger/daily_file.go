package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile is an io.Writer appending to prefix+YYYYMMDD+ext in dir, switching
// files when the date changes.
type DailyFile struct {
	dir    string
	prefix string
	ext    string
	now    func() time.Time

	mu  sync.Mutex
	day string
	f   *os.File
}

func NewDailyFile(dir, prefix, ext string) *DailyFile {
	return &DailyFile{
		dir:    dir,
		prefix: prefix,
		ext:    ext,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	day := d.now().Format("20060102")
	if d.f == nil || day != d.day {
		if err := d.open(day); err != nil {
			return 0, err
		}
	}
	return d.f.Write(p)
}

func (d *DailyFile) open(day string) error {
	if d.f != nil {
		_ = d.f.Close()
		d.f = nil
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(d.dir, d.prefix+day+d.ext), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	d.f, d.day = f, day
	return nil
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
