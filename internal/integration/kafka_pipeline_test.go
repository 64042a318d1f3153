//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/unit-conversion-service/internal/adapter/kafka"
	"github.com/couchcryptid/unit-conversion-service/internal/config"
	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/couchcryptid/unit-conversion-service/internal/observability"
	"github.com/couchcryptid/unit-conversion-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-conversion-requests"
	testSinkTopic   = "test-conversion-results"
)

// publishedResult holds a decoded message read from the sink topic.
type publishedResult struct {
	Result  domain.ConversionResult
	Key     string
	Headers map[string]string
}

func readResult(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedResult {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var result domain.ConversionResult
	require.NoError(t, json.Unmarshal(msg.Value, &result), "unmarshal sink message")

	return publishedResult{Result: result, Key: string(msg.Key), Headers: headers}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func requestMessage(t *testing.T, req domain.ConversionRequest) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(req.ID), Value: payload}
}

// TestKafkaReaderWriter round-trips one request through kafka.Reader and
// kafka.Writer without the pipeline loop.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msg := requestMessage(t, domain.ConversionRequest{
		ID: "req-1", Domain: "Temperature", Source: "Celsius", Target: "Fahrenheit", Amount: "100",
	})
	require.NoError(t, producer.WriteMessages(ctx, msg))

	// The consumer group may need a rebalance before partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawMessage
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.Equal(t, msg.Value, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(observability.NewMetricsForTesting(), discardLogger())
	result, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.ConversionResult{result}))

	pr := readResult(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, "req-1", pr.Key)
	assert.Equal(t, "Temperature", pr.Headers["domain"])
	assert.Equal(t, domain.OutcomeSuccess, pr.Headers["outcome"])
	_, err = time.Parse(time.RFC3339, pr.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	require.NotNil(t, pr.Result.Value)
	assert.InDelta(t, 212.0, *pr.Result.Value, 1e-9)
	assert.Equal(t, "212", pr.Result.Formatted)
}

// TestPipelineEndToEnd runs the full Reader -> Transformer -> Writer loop and
// checks every request yields exactly one result.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	requests := []domain.ConversionRequest{
		{ID: "t-1", Domain: "Temperature", Source: "Fahrenheit", Target: "Celsius", Amount: "212"},
		{ID: "t-2", Domain: "Temperature", Source: "Celsius", Target: "Kelvin", Amount: "-40"},
		{ID: "l-1", Domain: "Length", Source: "Meters", Target: "Feet", Amount: "1"},
		{ID: "l-2", Domain: "Length", Source: "Feet", Target: "Inches", Amount: "2.5"},
		{ID: "m-1", Domain: "Mass", Source: "Pounds", Target: "Ounces", Amount: "1"},
		{ID: "m-2", Domain: "Mass", Source: "Kilograms", Target: "Pounds", Amount: "0"},
		{ID: "x-1", Domain: "Volume", Source: "Liters", Target: "Cups", Amount: "1"},
	}
	want := map[string]float64{
		"t-1": 100,
		"t-2": 233.15,
		"l-1": 3.280839895013123,
		"l-2": 30,
		"m-1": 16,
	}
	wantErr := map[string]string{
		"m-2": domain.KindInvalidInput,
		"x-1": domain.KindUnsupportedDomain,
	}

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(requests))
	for _, req := range requests {
		msgs = append(msgs, requestMessage(t, req))
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(metrics, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make(map[string]publishedResult, len(requests))
	for len(received) < len(requests) {
		pr := readResult(ctx, t, consumer)
		received[pr.Key] = pr
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	require.NoError(t, p.CheckReadiness(ctx))

	for id, value := range want {
		pr := received[id]
		assert.Equal(t, domain.OutcomeSuccess, pr.Headers["outcome"], id)
		require.NotNil(t, pr.Result.Value, id)
		assert.InDelta(t, value, *pr.Result.Value, 1e-9, id)
	}
	for id, kind := range wantErr {
		pr := received[id]
		assert.Equal(t, domain.OutcomeError, pr.Headers["outcome"], id)
		require.NotNil(t, pr.Result.Error, id)
		assert.Equal(t, kind, pr.Result.Error.Kind, id)
	}
}

// TestPipelinePoisonPill verifies an undecodable message is skipped and the
// pipeline keeps processing the rest of the topic.
func TestPipelinePoisonPill(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		requestMessage(t, domain.ConversionRequest{
			ID: "good", Domain: "Length", Source: "Inches", Target: "Feet", Amount: "24",
		}),
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(metrics, discardLogger()), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	pr := readResult(ctx, t, consumer)
	assert.Equal(t, "good", pr.Key)
	require.NotNil(t, pr.Result.Value)
	assert.InDelta(t, 2.0, *pr.Result.Value, 1e-9)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
