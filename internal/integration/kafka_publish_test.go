//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/planecrash-geodata/internal/adapter/kafka"
	"github.com/couchcryptid/planecrash-geodata/internal/config"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
)

const testTopic = "test-accidents"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func sampleAccidents() []domain.Accident {
	raws := []domain.RawAccident{
		{Year: 1977, Number: 20, Date: "March 27, 1977", Location: "Tenerife, Canary Islands",
			Route: "Tenerife - Las Palmas", Fatalities: "583 (passengers:560 crew:23)"},
		{Year: 1985, Number: 36, Date: "August 12, 1985", Location: "Mt. Osutaka, Japan",
			Route: "Tokyo - Osaka", Fatalities: "520 (passengers:505 crew:15)"},
		{Year: 1996, Number: 60, Date: "November 12, 1996", Location: "Charkhi Dadri, India",
			Route: "?", Fatalities: "349"},
	}
	return domain.CleanAll(raws, discardLogger())
}

// TestPublishAccidents publishes cleaned accidents through the Publisher and
// reads them back from the topic.
func TestPublishAccidents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	accidents := sampleAccidents()
	p := pipeline.NewPublisher(writer, discardLogger(), observability.NewMetricsForTesting(), 2)
	n, err := p.Publish(ctx, accidents)
	require.NoError(t, err)
	require.Equal(t, len(accidents), n)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]domain.Accident)
	headers := make(map[string]map[string]string)
	for len(got) < len(accidents) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from topic")

		var a domain.Accident
		require.NoError(t, json.Unmarshal(msg.Value, &a))
		assert.Equal(t, a.ID, string(msg.Key))
		got[a.ID] = a

		h := make(map[string]string, len(msg.Headers))
		for _, kv := range msg.Headers {
			h[kv.Key] = string(kv.Value)
		}
		headers[a.ID] = h
	}

	tenerife := got["1977-20"]
	assert.Equal(t, "Tenerife", tenerife.Origin)
	assert.Equal(t, "Las Palmas", tenerife.Destination)
	require.NotNil(t, tenerife.Fatalities.Crew)
	assert.Equal(t, 23, *tenerife.Fatalities.Crew)
	assert.Equal(t, "Canary Islands", headers["1977-20"]["location_country"])
	assert.Equal(t, "1977-03-27", headers["1977-20"]["date"])

	assert.Equal(t, "India", got["1996-60"].LocationCountry)
	assert.Empty(t, got["1996-60"].Origin)
}
