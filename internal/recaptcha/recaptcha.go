// Package recaptcha decides whether a form submission was made by a human.
//
// Two backends are supported: the classic v3 siteverify endpoint, keyed by a
// secret, and reCAPTCHA Enterprise assessments, keyed by a Google Cloud
// project. When neither is configured a pass-through verifier is used.
package recaptcha

import (
	"context"
	"fmt"

	"bookingform/pkg/logger"

	"google.golang.org/api/option"
)

const (
	ModeEnterprise = "enterprise"
	ModeSiteverify = "siteverify"
	ModeDisabled   = "disabled"

	DefaultThreshold = 0.5
	DefaultAction    = "submit"
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
)

// Rejection reasons reported in Assessment.Reason.
const (
	ReasonMissingToken   = "missing_token"
	ReasonActionMismatch = "action_mismatch"
	ReasonLowScore       = "low_score"
	ReasonNotSuccessful  = "verification_failed"
	ReasonAPIError       = "api_error"
	ReasonDisabled       = "disabled"
)

// Assessment is the outcome of one verification.
type Assessment struct {
	Human   bool
	Score   float64
	Action  string
	Reason  string
	Reasons []string
	// Name identifies an Enterprise assessment for later annotation.
	Name string
}

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (Assessment, error)
	Mode() string
}

type Config struct {
	SiteKey         string
	SecretKey       string
	ProjectID       string
	APIKey          string
	CredentialsFile string
	Threshold       float64
	Action          string
	VerifyURL       string
	// Endpoint overrides the Enterprise API base URL.
	Endpoint string

	// ClientOptions are appended to the Enterprise API client options.
	ClientOptions []option.ClientOption
}

// Mode reports which verifier New builds for cfg.
func (cfg Config) Mode() string {
	switch {
	case cfg.ProjectID != "" && cfg.SiteKey != "":
		return ModeEnterprise
	case cfg.SecretKey != "":
		return ModeSiteverify
	default:
		return ModeDisabled
	}
}

func (cfg Config) withDefaults() Config {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Action == "" {
		cfg.Action = DefaultAction
	}
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	return cfg
}

// New picks Enterprise when a project and site key are configured, siteverify
// when a secret key is configured and the pass-through verifier otherwise.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Verifier, error) {
	cfg = cfg.withDefaults()

	switch cfg.Mode() {
	case ModeEnterprise:
		v, err := NewEnterprise(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create reCAPTCHA Enterprise client: %w", err)
		}
		log.Info("reCAPTCHA Enterprise verification enabled", "project_id", cfg.ProjectID, "threshold", cfg.Threshold)
		return v, nil
	case ModeSiteverify:
		log.Info("reCAPTCHA siteverify verification enabled", "threshold", cfg.Threshold)
		return NewSiteverify(cfg, log), nil
	default:
		log.Warn("reCAPTCHA is not configured, submissions are not verified")
		return NewDisabled(log), nil
	}
}
