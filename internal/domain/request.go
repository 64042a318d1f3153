package domain

import (
	"time"
)

// Outcome labels used in metrics and message headers.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ConversionRequest is a single conversion asked for by a caller. Amount is
// the raw text as entered; it is validated by Execute.
type ConversionRequest struct {
	ID     string `json:"id,omitempty"`
	Domain string `json:"domain" validate:"required"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Amount string `json:"amount"`
}

// Swapped returns a copy of r with source and target exchanged.
func (r ConversionRequest) Swapped() ConversionRequest {
	r.Source, r.Target = r.Target, r.Source
	return r
}

// ResultError is the wire form of a failed conversion.
type ResultError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ConversionResult carries either Value (with its Formatted text) or Error,
// never both.
type ConversionResult struct {
	RequestID   string       `json:"request_id,omitempty"`
	Domain      string       `json:"domain"`
	Source      string       `json:"source"`
	Target      string       `json:"target"`
	Amount      string       `json:"amount"`
	Value       *float64     `json:"value,omitempty"`
	Formatted   string       `json:"formatted,omitempty"`
	Error       *ResultError `json:"error,omitempty"`
	ProcessedAt time.Time    `json:"processed_at"`
}

// OK reports whether the conversion succeeded.
func (r ConversionResult) OK() bool {
	return r.Error == nil && r.Value != nil
}

// Outcome returns OutcomeSuccess or OutcomeError.
func (r ConversionResult) Outcome() string {
	if r.OK() {
		return OutcomeSuccess
	}
	return OutcomeError
}

// Execute runs req through the orchestrator and stamps the result with the
// package clock. Failures are reported in the result, not as a Go error.
func Execute(req ConversionRequest) ConversionResult {
	result := ConversionResult{
		RequestID:   req.ID,
		Domain:      req.Domain,
		Source:      req.Source,
		Target:      req.Target,
		Amount:      req.Amount,
		ProcessedAt: clock.Now().UTC(),
	}

	value, err := convertRequest(req)
	if err != nil {
		result.Error = &ResultError{Kind: ErrorKind(err), Message: ErrorMessage(err)}
		return result
	}

	result.Value = &value
	result.Formatted = FormatValue(value)
	return result
}

func convertRequest(req ConversionRequest) (float64, error) {
	d, err := ParseDomain(req.Domain)
	if err != nil {
		return 0, err
	}
	return Convert(d, req.Source, req.Target, req.Amount)
}
