package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
)

// --- mocks ---

type mockLoader struct {
	mu       sync.Mutex
	failures int // calls to fail before succeeding; -1 fails forever
	calls    int
	batches  [][]domain.Accident
}

func (m *mockLoader) LoadBatch(_ context.Context, accidents []domain.Accident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, accidents)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func makeAccidents(n int) []domain.Accident {
	out := make([]domain.Accident, n)
	for i := range out {
		out[i] = domain.Accident{
			ID:   fmt.Sprintf("2000-%d", i+1),
			Date: time.Date(2000, time.January, i+1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

// --- Publisher ---

func TestPublisher_Batches(t *testing.T) {
	loader := &mockLoader{}
	p := pipeline.NewPublisher(loader, discardLogger(), newTestMetrics(), 2)

	n, err := p.Publish(context.Background(), makeAccidents(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.Len(t, loader.batches, 3)
	assert.Len(t, loader.batches[0], 2)
	assert.Len(t, loader.batches[2], 1)
	assert.Equal(t, "2000-5", loader.batches[2][0].ID)
}

func TestPublisher_SingleBatchWhenUnbounded(t *testing.T) {
	loader := &mockLoader{}
	p := pipeline.NewPublisher(loader, discardLogger(), newTestMetrics(), 0)

	n, err := p.Publish(context.Background(), makeAccidents(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Len(t, loader.batches, 1)
}

func TestPublisher_RetriesTransientFailure(t *testing.T) {
	loader := &mockLoader{failures: 1}
	p := pipeline.NewPublisher(loader, discardLogger(), newTestMetrics(), 10)

	n, err := p.Publish(context.Background(), makeAccidents(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, loader.calls)
}

func TestPublisher_StopsOnContextCancel(t *testing.T) {
	loader := &mockLoader{failures: -1}
	p := pipeline.NewPublisher(loader, discardLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	n, err := p.Publish(ctx, makeAccidents(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, n)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, pipeline.IsTimeout(fmt.Errorf("get page: %w", context.DeadlineExceeded)))
	assert.True(t, pipeline.IsTimeout(&timeoutError{}))
	assert.False(t, pipeline.IsTimeout(errors.New("connection refused")))
	assert.False(t, pipeline.IsTimeout(nil))
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
