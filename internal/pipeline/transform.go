package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/couchcryptid/unit-conversion-service/internal/observability"
	"github.com/google/uuid"
)

// ConversionTransformer implements Transformer by running each decoded
// request through the conversion orchestrator.
type ConversionTransformer struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewTransformer(metrics *observability.Metrics, logger *slog.Logger) *ConversionTransformer {
	return &ConversionTransformer{metrics: metrics, logger: logger}
}

// Transform returns an error only for payloads that are not a conversion
// request. Failed conversions are reported inside the result.
func (t *ConversionTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.ConversionResult, error) {
	req, err := domain.ParseRequest(raw)
	if err != nil {
		return domain.ConversionResult{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result := domain.Execute(req)
	t.metrics.ObserveConversion(result)
	if !result.OK() {
		t.logger.Debug("conversion failed",
			"request_id", result.RequestID,
			"domain", result.Domain,
			"kind", result.Error.Kind,
			"offset", raw.Offset,
		)
	}
	return result, nil
}
