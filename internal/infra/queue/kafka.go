package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stock_sim/internal/domain"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of *kafka.Writer used for sending.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReader is the subset of *kafka.Reader used for consuming.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka carries payloads on a topic named after the queue.
// Consume waits at most pollTimeout and reports "" when nothing arrived.
// A fetched message is always delivered; if its offset commit fails the
// commit is retried on the next Consume and again on Close.
type Kafka struct {
	writer      KafkaWriter
	reader      KafkaReader
	topic       string
	pollTimeout time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	pending []kafka.Message // fetched but not yet committed
}

// NewKafka builds a channel from an explicit writer and reader bound to topic.
func NewKafka(writer KafkaWriter, reader KafkaReader, topic string, pollTimeout time.Duration) *Kafka {
	return &Kafka{
		writer:      writer,
		reader:      reader,
		topic:       topic,
		pollTimeout: pollTimeout,
		logger:      slog.Default().With(slog.String("component", "kafka")),
	}
}

// DialKafka creates a writer and a consumer-group reader for topic.
func DialKafka(brokers []string, groupID, topic string, pollTimeout time.Duration) *Kafka {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           5 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  pollTimeout,
	})
	return NewKafka(writer, reader, topic, pollTimeout)
}

func (k *Kafka) Send(ctx context.Context, payload, queue string) error {
	msg := kafka.Message{Topic: queue, Value: []byte(payload)}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return domain.NewQueueError("send", queue, err)
	}
	return nil
}

func (k *Kafka) Consume(ctx context.Context, queue string) (string, error) {
	if queue != k.topic {
		return "", domain.NewFatalQueueError("consume", queue, fmt.Errorf("reader is bound to topic %s", k.topic))
	}

	if err := k.commitPending(ctx); err != nil {
		k.logger.Debug("Pending commit retry failed", slog.Int("pending", k.Pending()), slog.Any("error", err))
	}

	pollCtx, cancel := context.WithTimeout(ctx, k.pollTimeout)
	defer cancel()

	msg, err := k.reader.FetchMessage(pollCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", nil
		}
		return "", domain.NewQueueError("consume", queue, err)
	}

	if err := k.reader.CommitMessages(ctx, msg); err != nil {
		k.logger.Warn("Offset commit failed, will retry",
			slog.String("topic", queue),
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err),
		)
		k.mu.Lock()
		k.pending = append(k.pending, msg)
		k.mu.Unlock()
	}
	return string(msg.Value), nil
}

// Pending reports how many delivered messages still await an offset commit.
func (k *Kafka) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.pending)
}

// commitPending retries earlier failed commits. Failures keep them queued.
func (k *Kafka) commitPending(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.pending) == 0 {
		return nil
	}
	if err := k.reader.CommitMessages(ctx, k.pending...); err != nil {
		return err
	}
	k.pending = nil
	return nil
}

func (k *Kafka) Close() error {
	var commitErr error
	if err := k.commitPending(context.Background()); err != nil {
		commitErr = domain.NewQueueError("commit", k.topic, err)
	}
	return errors.Join(commitErr, k.writer.Close(), k.reader.Close())
}
