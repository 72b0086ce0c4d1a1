package recaptcha

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"bookingform/pkg/client"
	"bookingform/pkg/logger"
)

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Siteverify checks tokens against the reCAPTCHA v3 verify endpoint.
type Siteverify struct {
	http      *client.HttpClient
	secret    string
	threshold float64
	logger    *logger.Logger
}

func NewSiteverify(cfg Config, log *logger.Logger) *Siteverify {
	cfg = cfg.withDefaults()
	return &Siteverify{
		http:      client.NewHttpClient(cfg.VerifyURL),
		secret:    cfg.SecretKey,
		threshold: cfg.Threshold,
		logger:    log,
	}
}

func (s *Siteverify) Mode() string {
	return ModeSiteverify
}

// Verify reports a human when the endpoint answers success and the score, if
// any, reaches the threshold. Transport failures are returned as errors along
// with a rejecting assessment.
func (s *Siteverify) Verify(ctx context.Context, token, remoteIP string) (Assessment, error) {
	if token == "" {
		return Assessment{Reason: ReasonMissingToken}, nil
	}

	form := url.Values{}
	form.Set("secret", s.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	resp, err := s.http.POSTForm(ctx, "", form)
	if err != nil {
		s.logger.Error("reCAPTCHA verification request failed", "error", err)
		return Assessment{Reason: ReasonAPIError}, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("siteverify returned status %d", resp.StatusCode)
		s.logger.Error("reCAPTCHA verification failed", "error", err)
		return Assessment{Reason: ReasonAPIError}, err
	}

	var body siteverifyResponse
	if err := resp.DecodeJSON(&body); err != nil {
		s.logger.Error("Failed to decode reCAPTCHA response", "error", err)
		return Assessment{Reason: ReasonAPIError}, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	a := Assessment{
		Human:   body.Success,
		Action:  body.Action,
		Reasons: body.ErrorCodes,
	}
	if body.Score != nil {
		a.Score = *body.Score
	}

	switch {
	case !body.Success:
		a.Reason = ReasonNotSuccessful
	case body.Score != nil && *body.Score < s.threshold:
		a.Human = false
		a.Reason = ReasonLowScore
	}

	s.logger.Debug("reCAPTCHA verification result",
		"success", body.Success,
		"score", a.Score,
		"action", body.Action,
		"hostname", body.Hostname,
		"human", a.Human,
	)
	return a, nil
}
