package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawMessage is an undecoded message from the request topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseRequest decodes a RawMessage value into a ConversionRequest. When the
// payload carries no ID, the message key is used.
func ParseRequest(raw RawMessage) (ConversionRequest, error) {
	var req ConversionRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return ConversionRequest{}, fmt.Errorf("parse conversion request: %w", err)
	}
	if req.ID == "" && len(raw.Key) > 0 {
		req.ID = string(raw.Key)
	}
	return req, nil
}
