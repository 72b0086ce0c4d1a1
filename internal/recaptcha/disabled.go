package recaptcha

import (
	"context"

	"bookingform/pkg/logger"
)

// Disabled accepts every submission. It is used when no keys are configured.
type Disabled struct {
	logger *logger.Logger
}

func NewDisabled(log *logger.Logger) *Disabled {
	return &Disabled{logger: log}
}

func (d *Disabled) Mode() string {
	return ModeDisabled
}

func (d *Disabled) Verify(ctx context.Context, token, remoteIP string) (Assessment, error) {
	d.logger.Warn("reCAPTCHA verification skipped: not configured")
	return Assessment{Human: true, Score: 1, Reason: ReasonDisabled}, nil
}
