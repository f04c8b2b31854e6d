package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"docverify/internal/config"
)

// KafkaConsumer reads upload notifications from a consumer group with
// auto-commit disabled. Backlog records published before the process started
// are committed and skipped so a restart never reprocesses stale uploads.
type KafkaConsumer struct {
	cl      *kgo.Client
	start   time.Time
	log     *slog.Logger
	pending []*kgo.Record
}

func NewKafkaConsumer(cfg config.KafkaConfig, log *slog.Logger) (*KafkaConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaConsumer{
		cl:    cl,
		start: time.Now(),
		log:   log.With("component", "queue", "topic", cfg.Topic),
	}, nil
}

// Fetch blocks until a processable notification arrives. Records that should
// not reach the worker (backlog, sidecar uploads, malformed payloads) are
// committed in place and skipped.
func (c *KafkaConsumer) Fetch(ctx context.Context) (Message, error) {
	for {
		for len(c.pending) > 0 {
			rec := c.pending[0]
			c.pending = c.pending[1:]

			msg, reason, ok := c.admit(rec)
			if ok {
				return msg, nil
			}
			c.log.Info("skipping record", "reason", reason,
				"partition", rec.Partition, "offset", rec.Offset)
			if err := c.cl.CommitRecords(ctx, rec); err != nil {
				return Message{}, fmt.Errorf("commit skipped record: %w", err)
			}
		}

		fetches := c.cl.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		if fetches.IsClientClosed() {
			return Message{}, fmt.Errorf("kafka client closed")
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.log.Error("fetch error", "topic", topic, "partition", partition, "error", err)
		})
		c.pending = append(c.pending, fetches.Records()...)
	}
}

// admit decides whether a record becomes a worker message. It never touches
// the broker; the caller commits rejected records.
func (c *KafkaConsumer) admit(rec *kgo.Record) (Message, string, bool) {
	if rec.Timestamp.Before(c.start) {
		return Message{}, "backlog record older than process start", false
	}
	note, err := decode(rec.Value)
	if err != nil {
		return Message{}, err.Error(), false
	}
	if strings.HasSuffix(note.StorageKey, ".json") {
		return Message{}, "sidecar metadata upload", false
	}
	return Message{Note: note, Timestamp: rec.Timestamp, rec: rec}, "", true
}

// Commit marks the message's record consumed. Called by the worker after the
// document outcome is persisted.
func (c *KafkaConsumer) Commit(ctx context.Context, msg Message) error {
	if msg.rec == nil {
		return nil
	}
	if err := c.cl.CommitRecords(ctx, msg.rec); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

func (c *KafkaConsumer) Close() {
	c.cl.Close()
}
