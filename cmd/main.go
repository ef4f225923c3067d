package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/networth/internal/config"
	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/events"
	"github.com/tinoosan/networth/internal/finance"
	httpapi "github.com/tinoosan/networth/internal/httpapi/v1"
	"github.com/tinoosan/networth/internal/service/snapshot"
	"github.com/tinoosan/networth/internal/storage/memory"
	pgstore "github.com/tinoosan/networth/internal/storage/postgres"
	"github.com/tinoosan/networth/internal/storage/sqlite"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := buildLogger(cfg)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.DataBackend, "err", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("storage backend: " + cfg.DataBackend)

	if cfg.DevSeed || cfg.DataBackend == config.BackendMemory {
		user, err := seedDev(ctx, store, logger)
		if err != nil {
			logger.Error("dev seed failed", "err", err)
		} else {
			logger.Info("DEV seed ("+cfg.DataBackend+")", "user_id", user.String())
			printDevSeedBanner(user)
		}
	}

	format, err := finance.NewFormatter(cfg.Currency, cfg.Locale)
	if err != nil {
		logger.Error("invalid display currency", "err", err)
		os.Exit(1)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		client, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			logger.Error("failed to connect to broker", "err", err)
			os.Exit(1)
		}
		pub = client
		logger.Info("publishing snapshot events", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Warn("publisher close", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(store, pub, format, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("networth service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (httpapi.Store, func(), error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}

// seedDev records six month-end snapshots for a fresh user so the dashboard has a trend.
func seedDev(ctx context.Context, store httpapi.Store, logger *slog.Logger) (uuid.UUID, error) {
	svc := snapshot.New(store, store, snapshot.WithLogger(logger))
	user := uuid.New()
	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 5; i >= 0; i-- {
		monthEnd := firstOfMonth.AddDate(0, -i, 0).AddDate(0, 0, -1)
		step := int64(5 - i)
		hours := finance.HoursInMonth(monthEnd.Year(), monthEnd.Month())
		in := snapshot.Input{
			OwnerID:       user,
			Date:          monthEnd,
			HoursInPeriod: &hours,
			Accounts: []snapshot.AccountInput{
				{Name: "Everyday Checking", Type: "checking", CategoryID: dictionary.CategoryCash, Balance: 4200 + 350*step},
				{Name: "High Yield Savings", Type: "savings", CategoryID: dictionary.CategoryCash, Balance: 15000 + 800*step},
				{Name: "Brokerage", Type: "investment", CategoryID: dictionary.CategoryInvestments, Balance: 38000 + 1200*step},
				{Name: "401k", Type: "retirement", CategoryID: dictionary.CategoryRetirement, Balance: 61000 + 900*step},
				{Name: "Visa", Type: "credit-card", CategoryID: dictionary.CategoryCreditCards, Balance: 2300 - 150*step},
				{Name: "Car Loan", Type: "loan", CategoryID: dictionary.CategoryLoans, Balance: 14500 - 400*step},
			},
		}
		if _, _, err := svc.Create(ctx, in); err != nil {
			return uuid.Nil, fmt.Errorf("seed %s: %w", monthEnd.Format("2006-01-02"), err)
		}
	}
	return user, nil
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(user uuid.UUID) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", user.String())
	fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "ERR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
