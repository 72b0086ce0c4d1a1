package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"bookingform/pkg/kafka"
	"bookingform/pkg/logger"
)

func TestMetricsProducerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := m.ProducerMiddleware()

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("broker down") }

	for i := 0; i < 3; i++ {
		if err := mw(context.Background(), kafka.Message{}, ok); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := mw(context.Background(), kafka.Message{}, fail); err == nil {
		t.Fatal("expected error to propagate")
	}

	snap := m.Snapshot()
	if snap.Published != 3 || snap.Failed != 1 {
		t.Errorf("snapshot = %+v, want 3 published and 1 failed", snap)
	}
	if snap.SuccessRate != 0.75 {
		t.Errorf("SuccessRate = %v, want 0.75", snap.SuccessRate)
	}
}

func TestMetricsSnapshotEmpty(t *testing.T) {
	snap := NewMetrics().Snapshot()
	if snap.SuccessRate != 1 || snap.Published != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestLoggingProducerMiddlewarePassesThrough(t *testing.T) {
	mw := LoggingProducerMiddleware(logger.Discard())
	want := errors.New("boom")

	called := false
	err := mw(context.Background(), kafka.Message{Key: "k"}, func(ctx context.Context, msg kafka.Message) error {
		called = true
		return want
	})

	if !called {
		t.Fatal("next was not called")
	}
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
