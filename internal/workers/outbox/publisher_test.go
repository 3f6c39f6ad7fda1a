package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type memOutbox struct {
	mu       sync.Mutex
	events   []*domain.OutboxEvent
	attempts map[int64]int
}

func (m *memOutbox) FetchUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memOutbox) MarkPublished(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, e := range m.events {
		for _, id := range ids {
			if e.ID == id {
				e.PublishedAt = &now
			}
		}
	}
	return nil
}

func (m *memOutbox) IncrementAttempts(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.attempts[id]++
	}
	return nil
}

func (m *memOutbox) isPublished(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			return e.PublishedAt != nil
		}
	}
	return false
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

type countingMetrics struct {
	published map[string]int
}

func (m *countingMetrics) IncOutboxPublished(eventType string) { m.published[eventType]++ }

func newOutbox(n int) *memOutbox {
	m := &memOutbox{attempts: map[int64]int{}}
	for i := 1; i <= n; i++ {
		m.events = append(m.events, &domain.OutboxEvent{
			ID:            int64(i),
			EventID:       "evt-" + string(rune('a'+i-1)),
			AggregateType: domain.AggregateAppointment,
			AggregateID:   int64(100 + i),
			EventType:     domain.EventAppointmentCreated,
			Key:           "7",
			Payload:       []byte(`{"appointmentId":1}`),
		})
	}
	return m
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishBatch(t *testing.T) {
	repo := newOutbox(3)
	writer := &recordingWriter{}
	metrics := &countingMetrics{published: map[string]int{}}
	p := NewPublisher(repo, passThroughTx{}, writer, metrics, logger.NewNop(), Config{Topic: "salon.appointments", BatchSize: 2})

	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, writer.messages, 3)
	msg := writer.messages[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, "evt-a", header(msg, "event_id"))
	assert.Equal(t, "appointment.created", header(msg, "event_type"))
	assert.Equal(t, "101", header(msg, "aggregate_id"))
	assert.Equal(t, 3, metrics.published["appointment.created"])
}

func TestPublishBatch_WriteFailure(t *testing.T) {
	repo := newOutbox(2)
	writer := &recordingWriter{err: errors.New("leader not available")}
	metrics := &countingMetrics{published: map[string]int{}}
	p := NewPublisher(repo, passThroughTx{}, writer, metrics, logger.NewNop(), Config{BatchSize: 10})

	_, err := p.PublishBatch(context.Background())
	assert.ErrorIs(t, err, ErrPublish)
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, repo.attempts)
	for _, e := range repo.events {
		assert.Nil(t, e.PublishedAt)
	}

	// после восстановления Kafka события уходят
	writer.err = nil
	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestToMessage_TraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg := toMessage(ctx, newOutbox(1).events[0])
	traceparent := header(msg, "traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestRun_StopsOnCancel(t *testing.T) {
	repo := newOutbox(1)
	writer := &recordingWriter{}
	p := NewPublisher(repo, passThroughTx{}, writer, &countingMetrics{published: map[string]int{}},
		logger.NewNop(), Config{PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return repo.isPublished(1) }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}
