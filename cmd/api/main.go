package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/acceloka/internal/adapter/cache"
	"github.com/srgjo27/acceloka/internal/adapter/handler"
	"github.com/srgjo27/acceloka/internal/adapter/messaging"
	"github.com/srgjo27/acceloka/internal/adapter/repository/postgres"
	"github.com/srgjo27/acceloka/internal/core/services"
	"github.com/srgjo27/acceloka/internal/platform/clock"
	"github.com/srgjo27/acceloka/internal/platform/config"
	"github.com/srgjo27/acceloka/internal/platform/database"
	"github.com/srgjo27/acceloka/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "acceloka: %v\n", err)
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
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.Database.DSN()); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	opts := []services.Option{services.WithLogger(log)}

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis at %s: %w", cfg.Cache.Addr, err)
		}
		log.Info("redis connected", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
		opts = append(opts, services.WithCatalogCache(cache.NewCatalogCache(rdb, cfg.Cache.TTL, cfg.Cache.Prefix)))
	}

	if cfg.Broker.Enabled {
		pub := messaging.NewPublisher(cfg.Broker.URL, cfg.Broker.Queue, log)
		defer pub.Close()
		if err := pub.Connect(ctx); err != nil {
			log.Warn("broker not reachable, events are dropped until it is", "error", err)
		} else {
			log.Info("broker connected", "queue", cfg.Broker.Queue)
		}
		opts = append(opts, services.WithPublisher(pub))
	}

	tx := postgres.NewTransactor(db)
	ticketRepo := postgres.NewTicketRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	bookingService := services.NewBookingService(tx, ticketRepo, bookingRepo, clock.NewSystem(), opts...)
	catalogService := services.NewCatalogService(ticketRepo, opts...)

	router := handler.NewRouter(
		handler.NewBookingHandler(bookingService),
		handler.NewTicketHandler(catalogService, log),
		log,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
