// Package pipeline orchestrates the batch jobs: scraping yearly snapshots,
// building geolocations, and publishing cleaned accidents.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
)

// BatchLoader writes multiple accidents to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, accidents []domain.Accident) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Publisher pushes accidents to a BatchLoader in fixed-size batches,
// retrying failed batches with exponential backoff.
type Publisher struct {
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	maxAttempts int
}

// NewPublisher creates a Publisher. batchSize below 1 means one batch.
func NewPublisher(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Publisher {
	return &Publisher{
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		maxAttempts: 5,
	}
}

// Publish loads all accidents and returns how many were written. It stops at
// the first batch that still fails after all attempts.
func (p *Publisher) Publish(ctx context.Context, accidents []domain.Accident) (int, error) {
	size := p.batchSize
	if size < 1 {
		size = max(len(accidents), 1)
	}
	p.logger.Info("publishing accidents", "count", len(accidents), "batch_size", size)

	published := 0
	for _, batch := range domain.Chunks(accidents, size) {
		if err := p.loadWithRetry(ctx, batch); err != nil {
			return published, err
		}
		published += len(batch)
		p.metrics.AccidentsPublished.Add(float64(len(batch)))
	}
	p.logger.Info("publish complete", "published", published)
	return published, nil
}

func (p *Publisher) loadWithRetry(ctx context.Context, batch []domain.Accident) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, batch); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)
		if attempt == p.maxAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("load batch after %d attempts: %w", p.maxAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
