package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/planecrash-geodata/internal/config"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

// Writer publishes cleaned accidents to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured accidents topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes accidents in a single WriteMessages
// call. Messages are keyed by accident id so reruns land on the same
// partition.
func (w *Writer) LoadBatch(ctx context.Context, accidents []domain.Accident) error {
	if len(accidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(accidents))
	for i := range accidents {
		msg, err := serializeToMessage(accidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("batch published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(a domain.Accident) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize accident %s: %w", a.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location_country", Value: []byte(a.LocationCountry)},
			{Key: "date", Value: []byte(a.Date.Format(time.DateOnly))},
		},
	}, nil
}
