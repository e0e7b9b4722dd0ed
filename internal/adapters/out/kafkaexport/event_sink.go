// Package kafkaexport exports every dispatch change event to a Kafka topic.
//
// Messages are keyed by entity id and partitioned by key hash, so all events
// of one entity land on one partition in sequence order. Consumers detect
// dropped events from gaps in the sequence header.
package kafkaexport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"dispatch/internal/core/application/notifier"

	"github.com/segmentio/kafka-go"
)

const clientID = "kafka-export"

// Source is the notifier side of the sink.
type Source interface {
	Consume(ctx context.Context, clientID string, filter notifier.Filter, handle func(context.Context, notifier.Event)) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventSink forwards notifier events to Kafka.
type EventSink struct {
	writer       messageWriter
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewEventSink creates a sink writing to topic on brokers.
func NewEventSink(brokers []string, topic string, logger *slog.Logger) *EventSink {
	return newEventSink(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}, logger)
}

func newEventSink(writer messageWriter, logger *slog.Logger) *EventSink {
	return &EventSink{
		writer:       writer,
		writeTimeout: 10 * time.Second,
		logger:       logger.With("component", "KafkaEventSink"),
	}
}

// Run consumes every event until ctx is done, then closes the writer.
func (s *EventSink) Run(ctx context.Context, source Source) error {
	s.logger.InfoContext(ctx, "kafka export started")
	defer func() {
		if err := s.writer.Close(); err != nil {
			s.logger.Error("failed to close kafka writer", "error", err)
		}
	}()

	return source.Consume(ctx, clientID, notifier.All(), s.Handle)
}

// Handle writes one event. Failures are logged and the event is skipped;
// the writer already retries internally.
func (s *EventSink) Handle(ctx context.Context, e notifier.Event) {
	msg, err := Message(e)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode event", "event_id", e.ID, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err = s.writer.WriteMessages(writeCtx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to export event",
			"event_id", e.ID,
			"kind", e.Kind,
			"entity_id", e.EntityID,
			"sequence", e.Sequence,
			"error", err,
		)
	}
}

// Message encodes an event as a Kafka message keyed by entity id.
func Message(e notifier.Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", e.ID, err)
	}

	return kafka.Message{
		Key:   []byte(e.EntityID),
		Value: value,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(e.Kind)},
			{Key: "sequence", Value: []byte(strconv.FormatInt(e.Sequence, 10))},
		},
	}, nil
}
