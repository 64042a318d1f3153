package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/couchcryptid/unit-conversion-service/internal/observability"
)

const (
	firstRetryDelay = 200 * time.Millisecond
	maxRetryDelay   = 5 * time.Second
)

// BatchExtractor fetches raw conversion requests, at most batchSize per call.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer decodes and evaluates one request. It errors only when the
// payload is not a request at all; such messages are dropped.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.ConversionResult, error)
}

// BatchLoader publishes a batch of results.
type BatchLoader interface {
	LoadBatch(ctx context.Context, results []domain.ConversionResult) error
}

// Pipeline answers every request read from the stream with a published
// result, committing the request only once its answer is out.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness reports ready after the first successful publish.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ready.Load() {
		return nil
	}
	return errors.New("no conversion results published yet")
}

// Run blocks until ctx is done. Cancellation is a clean stop and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := retryDelay{next: firstRetryDelay}
	for ctx.Err() == nil && p.step(ctx, &delay) {
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// step handles a single batch and reports whether the loop may continue.
func (p *Pipeline) step(ctx context.Context, delay *retryDelay) bool {
	started := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	switch {
	case err != nil && ctx.Err() != nil:
		return false
	case err != nil:
		p.logger.Error("fetch requests failed", "error", err)
		return delay.wait(ctx)
	case len(batch) == 0:
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	delay.reset()

	results, answered := p.convert(ctx, batch)
	if len(results) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, results); err != nil {
		// Requests stay uncommitted and are redelivered after the retry.
		p.logger.Error("publish results failed", "error", err, "batch_size", len(results))
		return delay.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(results)))
	for _, raw := range answered {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(started).Seconds())
	p.ready.Store(true)
	return true
}

// convert evaluates the batch. Failed conversions still yield a result;
// undecodable messages are committed on the spot and left out.
func (p *Pipeline) convert(ctx context.Context, batch []domain.RawMessage) ([]domain.ConversionResult, []domain.RawMessage) {
	results := make([]domain.ConversionResult, 0, len(batch))
	answered := make([]domain.RawMessage, 0, len(batch))

	for _, raw := range batch {
		result, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.metrics.TransformErrors.Inc()
			p.logger.Warn("dropping undecodable request",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.commit(ctx, raw)
			continue
		}
		results = append(results, result)
		answered = append(answered, raw)
	}
	return results, answered
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retryDelay is the exponential pause between failed fetch or publish attempts.
type retryDelay struct {
	next time.Duration
}

func (d *retryDelay) reset() { d.next = firstRetryDelay }

// wait sleeps for the pending delay, then doubles it up to maxRetryDelay.
// It returns false if ctx ends first.
func (d *retryDelay) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, d.next) {
		return false
	}
	d.next = retry.NextBackoff(d.next, maxRetryDelay)
	return true
}
