package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/unit-conversion-service/internal/config"
	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces conversion results to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes results in a single WriteMessages call.
// Results are keyed by request ID so a request and its retries share a partition.
// A result that cannot be serialized is logged and dropped; it never holds
// back the rest of the batch.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.ConversionResult) error {
	msgs := make([]kafkago.Message, 0, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
		if err != nil {
			w.logger.Error("dropping unserializable result", "error", err, "request_id", results[i].RequestID)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d results: %w", len(msgs), err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ConversionResult into a Kafka message.
func serializeToMessage(result domain.ConversionResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize conversion result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "domain", Value: []byte(result.Domain)},
			{Key: "outcome", Value: []byte(result.Outcome())},
			{Key: "processed_at", Value: []byte(result.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
