package model

import (
	"time"
)

// BookingRequest is the untrusted form payload. Text fields that arrive as
// anything other than a JSON string are treated as absent.
type BookingRequest struct {
	Name           LooseString `json:"name"`
	Phone          LooseString `json:"phone"`
	Email          LooseString `json:"email"`
	Date           LooseString `json:"date"`
	Consent        Consent     `json:"consent"`
	RecaptchaToken LooseString `json:"recaptchaToken"`
}

// Booking is the sanitized record handed to the sheet, chat and event sinks.
type Booking struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Date      string    `json:"date"`
	Consent   bool      `json:"consent"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address,omitempty"`
}

// Request turns a sanitized record back into a request, so it can be run
// through validation or sanitization again.
func (b *Booking) Request() *BookingRequest {
	return &BookingRequest{
		Name:    LooseString(b.Name),
		Phone:   LooseString(b.Phone),
		Email:   LooseString(b.Email),
		Date:    LooseString(b.Date),
		Consent: BoolConsent(b.Consent),
	}
}
