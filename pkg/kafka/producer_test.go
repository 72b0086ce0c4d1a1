package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func buildMessage(t *testing.T, key string, value any) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey(key).
		WithValue(value).
		WithEventType("booking.submitted").
		WithSource("bookings").
		WithSchemaVersion("1").
		Build()
	require.NoError(t, err)
	return msg
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "bookings.submitted")

	msg := buildMessage(t, "booking-1", map[string]string{"name": "Ann"})
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.messages, 1)
	got := w.messages[0]
	assert.Equal(t, "booking-1", string(got.Key))
	assert.JSONEq(t, `{"name":"Ann"}`, string(got.Value))

	headers := map[string]string{}
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "booking.submitted", headers[HeaderEventType])
	assert.Equal(t, "bookings", headers[HeaderSource])
	assert.Equal(t, "1", headers[HeaderSchemaVersion])
	assert.NotEmpty(t, headers[HeaderEventID])
	assert.NotEmpty(t, headers[HeaderTimestamp])
}

func TestProducerRejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, "t")

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestProducerClosed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "t")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}), ErrProducerClosed)
}

func TestProducerMiddlewareOrder(t *testing.T) {
	p := newProducer(&fakeWriter{}, "t")

	var order []string
	record := func(name string) ProducerMiddleware {
		return func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
			order = append(order, name+":before")
			err := next(ctx, msg)
			order = append(order, name+":after")
			return err
		}
	}
	p.Use(record("outer"))
	p.Use(record("inner"))

	require.NoError(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}))
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, order)
}

func TestProducerSetsTopic(t *testing.T) {
	p := newProducer(&fakeWriter{}, "bookings.submitted")

	var seen string
	p.Use(func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
		seen = msg.Topic
		return next(ctx, msg)
	})

	require.NoError(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}))
	assert.Equal(t, "bookings.submitted", seen)
}

func TestProducerWriteErrorIsClassified(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("dial tcp: connection refused")}, "t")

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")})
	require.Error(t, err)

	var kafkaErr *KafkaError
	require.ErrorAs(t, err, &kafkaErr)
	assert.Equal(t, ErrorTypeTransient, kafkaErr.Type)
}

func TestProducerWriteErrorIsPermanent(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("unknown topic or partition")}, "t")

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")})

	var kafkaErr *KafkaError
	require.ErrorAs(t, err, &kafkaErr)
	assert.Equal(t, ErrorTypePermanent, kafkaErr.Type)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestMessageBuilderEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()

	var kafkaErr *KafkaError
	require.ErrorAs(t, err, &kafkaErr)
	assert.Equal(t, ErrorTypePermanent, kafkaErr.Type)
}

func TestMessageBuilderKeepsExplicitHeaders(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("k").
		WithValue("v").
		WithEventID("evt-1").
		WithCorrelationID("req-1").
		WithTimestamp(ts).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "evt-1", msg.GetEventID())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.Equal(t, "2025-06-01T10:00:00Z", msg.Headers[HeaderTimestamp])

	var decoded string
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "v", decoded)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"timeout", errors.New("i/o timeout"), ErrorTypeTransient},
		{"refused", errors.New("Connection Refused"), ErrorTypeTransient},
		{"empty key", ErrEmptyKey, ErrorTypePermanent},
		{"unknown", errors.New("unknown topic or partition"), ErrorTypePermanent},
		{"wrapped transient", NewTransientError("write", errors.New("x")), ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
