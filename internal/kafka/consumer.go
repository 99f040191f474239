package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/paper-trader/internal/models"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// TradeHandler receives each trade-executed event in partition order
type TradeHandler func(ctx context.Context, event models.TradeEvent) error

// DefaultGroupID is used when no consumer group is given
const DefaultGroupID = "papertrader-events"

const defaultRetryDelay = time.Second

// Consumer reads trade events back off the topic the Producer writes to
type Consumer struct {
	reader     messageReader
	handler    TradeHandler
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewConsumer creates a consumer in groupID, or DefaultGroupID when empty.
// The group is assigned every partition of the topic and starts from the
// first offset the first time it is used.
func NewConsumer(brokers []string, topic, groupID string, handler TradeHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:     kafka.NewReader(readerConfig(brokers, topic, groupID)),
		handler:    handler,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

func readerConfig(brokers []string, topic, groupID string) kafka.ReaderConfig {
	if groupID == "" {
		groupID = DefaultGroupID
	}
	return kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	}
}

// Start consumes until ctx is cancelled. Bad messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting trade event consumer")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Warn("error processing message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.TradeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trade event: %w", err)
	}

	if event.EventType != models.EventTradeExecuted {
		c.logger.Debug("ignoring event", zap.String("event_type", event.EventType))
		return nil
	}
	if event.Side != models.TradeTypeBuy && event.Side != models.TradeTypeSell {
		return fmt.Errorf("invalid trade side: %q", event.Side)
	}

	return c.handler(ctx, event)
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
