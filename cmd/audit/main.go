// Command audit consumes booking events from the broker and appends them to
// a daily audit file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/srgjo27/acceloka/internal/adapter/messaging"
	"github.com/srgjo27/acceloka/internal/platform/clock"
	"github.com/srgjo27/acceloka/internal/platform/config"
	"github.com/srgjo27/acceloka/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "acceloka-audit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Dir: cfg.Log.Dir})
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit := messaging.NewAuditLog(cfg.AuditDir, clock.NewSystem())
	consumer := messaging.NewConsumer(cfg.Broker.URL, cfg.Broker.Queue, audit.Handle, log)

	log.Info("audit consumer starting", "queue", cfg.Broker.Queue, "dir", cfg.AuditDir)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("audit consumer stopped")
	return nil
}
