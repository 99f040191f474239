package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/trogers1052/paper-trader/internal/config"
	"github.com/trogers1052/paper-trader/internal/kafka"
	"github.com/trogers1052/paper-trader/internal/models"
	"go.uber.org/zap"
)

type eventsCmd struct {
	group string
}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "stream trade-executed events as JSON lines" }
func (*eventsCmd) Usage() string {
	return `papertrader events [-group <consumer_group>]

  Reads trade events from every partition of the configured Kafka topic and
  prints one JSON object per line until interrupted. Offsets are committed
  to the consumer group, so a restart resumes where the group left off.
`
}

func (e *eventsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&e.group, "group", kafka.DefaultGroupID, "Consumer group. A new group starts from the oldest event.")
}

func (e *eventsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if !cfg.Kafka.Enabled() {
		fmt.Fprintln(os.Stderr, "KAFKA_BROKERS is not set")
		return subcommands.ExitFailure
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	enc := json.NewEncoder(os.Stdout)
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, e.group,
		func(_ context.Context, event models.TradeEvent) error {
			return enc.Encode(event)
		}, logger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.Error("consumer exited", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
