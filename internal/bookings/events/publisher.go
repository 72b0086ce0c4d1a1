// Package events publishes booking domain events to Kafka.
package events

import (
	"context"
	"time"

	"bookingform/pkg/kafka"
	"bookingform/pkg/model"
	"bookingform/pkg/sanitizer"
)

const (
	EventBookingSubmitted = "booking.submitted"
	SchemaVersion         = "1"
	DefaultTopic          = "bookings.submitted"
)

// BookingSubmitted is the payload of a booking.submitted event.
type BookingSubmitted struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	// PhoneE164 is empty when the number does not parse for the RU region.
	PhoneE164   string    `json:"phone_e164,omitempty"`
	Email       string    `json:"email"`
	Date        string    `json:"date"`
	Consent     bool      `json:"consent"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func NewBookingSubmitted(b *model.Booking) BookingSubmitted {
	return BookingSubmitted{
		BookingID:   b.ID,
		Name:        b.Name,
		Phone:       b.Phone,
		PhoneE164:   sanitizer.NormalizePhone(b.Phone, sanitizer.DefaultRegion),
		Email:       b.Email,
		Date:        b.Date,
		Consent:     b.Consent,
		SubmittedAt: b.Timestamp,
	}
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type Publisher struct {
	producer messagePublisher
	source   string
}

func NewPublisher(producer messagePublisher, source string) *Publisher {
	return &Publisher{producer: producer, source: source}
}

// PublishBookingSubmitted emits one event keyed by the booking id.
// correlationID is the request id, when known.
func (p *Publisher) PublishBookingSubmitted(ctx context.Context, booking *model.Booking, correlationID string) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(NewBookingSubmitted(booking)).
		WithEventType(EventBookingSubmitted).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(correlationID).
		WithTimestamp(booking.Timestamp).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}
