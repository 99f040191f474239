package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/paper-trader/internal/api"
	"github.com/trogers1052/paper-trader/internal/auth"
	"github.com/trogers1052/paper-trader/internal/config"
	"github.com/trogers1052/paper-trader/internal/database"
	"github.com/trogers1052/paper-trader/internal/kafka"
	"github.com/trogers1052/paper-trader/internal/portfolio"
	"github.com/trogers1052/paper-trader/internal/quote"
	"github.com/trogers1052/paper-trader/internal/session"
	"go.uber.org/zap"
)

type serveCmd struct {
	skipMigrate bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the trading HTTP server" }
func (*serveCmd) Usage() string {
	return `papertrader serve [-skip-migrate]

  Applies pending migrations and serves the trading API. Configuration is
  read from the environment and an optional .env file.
`
}

func (s *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&s.skipMigrate, "skip-migrate", false, "Do not apply migrations on startup.")
}

func (s *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	if err := s.run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (s *serveCmd) run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if !s.skipMigrate {
		if err := db.Migrate(false); err != nil {
			return err
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	sessions := session.NewRedisStore(rdb, cfg.Session.TTL)
	defer sessions.Close()

	// a nil *Producer must not reach the engine as a non-nil Publisher
	var publisher portfolio.Publisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		logger.Info("publishing trade events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	startingCash, err := cfg.Ledger.StartingCash()
	if err != nil {
		return err
	}

	quoter := quote.NewClient(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Timeout, quote.Paths{
		Symbol: cfg.Quote.SymbolPath,
		Name:   cfg.Quote.NamePath,
		Price:  cfg.Quote.PricePath,
	})
	accounts := auth.NewService(db, startingCash, cfg.Ledger.BcryptCost, logger)
	engine := portfolio.NewEngine(db, quoter, publisher, logger)

	handler := api.NewHandler(accounts, engine, sessions, api.CookieConfig{
		Name: cfg.Session.CookieName,
		TTL:  cfg.Session.TTL,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
