package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"bookingform/pkg/kafka"
)

// Metrics counts publish attempts of one producer.
type Metrics struct {
	published            atomic.Int64
	failed               atomic.Int64
	publishDurationTotal atomic.Int64 // nanoseconds
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Published          int64   `json:"published"`
	Failed             int64   `json:"failed"`
	AvgPublishDuration string  `json:"avg_publish_duration"`
	SuccessRate        float64 `json:"success_rate"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	failed := m.failed.Load()

	var avg time.Duration
	if published > 0 {
		avg = time.Duration(m.publishDurationTotal.Load() / published)
	}

	rate := 1.0
	if total := published + failed; total > 0 {
		rate = float64(published) / float64(total)
	}

	return MetricsSnapshot{
		Published:          published,
		Failed:             failed,
		AvgPublishDuration: avg.String(),
		SuccessRate:        rate,
	}
}

// ProducerMiddleware records the outcome of every publish in m.
func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.publishDurationTotal.Add(int64(time.Since(start)))
		return nil
	}
}
