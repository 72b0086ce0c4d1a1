package recaptcha

import (
	"context"
	"errors"

	"bookingform/pkg/logger"

	"google.golang.org/api/option"
	"google.golang.org/api/recaptchaenterprise/v1"
)

// Annotations accepted by Enterprise.Annotate.
const (
	AnnotationLegitimate = "LEGITIMATE"
	AnnotationFraudulent = "FRAUDULENT"
)

// Enterprise creates reCAPTCHA Enterprise assessments for each token.
type Enterprise struct {
	service   *recaptchaenterprise.Service
	parent    string
	siteKey   string
	action    string
	threshold float64
	logger    *logger.Logger
}

func NewEnterprise(ctx context.Context, cfg Config, log *logger.Logger) (*Enterprise, error) {
	cfg = cfg.withDefaults()
	if cfg.ProjectID == "" || cfg.SiteKey == "" {
		return nil, errors.New("project id and site key are required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := recaptchaenterprise.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Enterprise{
		service:   svc,
		parent:    "projects/" + cfg.ProjectID,
		siteKey:   cfg.SiteKey,
		action:    cfg.Action,
		threshold: cfg.Threshold,
		logger:    log,
	}, nil
}

func (e *Enterprise) Mode() string {
	return ModeEnterprise
}

func (e *Enterprise) Verify(ctx context.Context, token, remoteIP string) (Assessment, error) {
	if token == "" {
		e.logger.Warn("reCAPTCHA token is missing")
		return Assessment{Reason: ReasonMissingToken}, nil
	}

	req := &recaptchaenterprise.GoogleCloudRecaptchaenterpriseV1Assessment{
		Event: &recaptchaenterprise.GoogleCloudRecaptchaenterpriseV1Event{
			Token:          token,
			SiteKey:        e.siteKey,
			ExpectedAction: e.action,
			UserIpAddress:  remoteIP,
		},
	}

	resp, err := e.service.Projects.Assessments.Create(e.parent, req).Context(ctx).Do()
	if err != nil {
		e.logger.Error("reCAPTCHA Enterprise assessment failed", "error", err)
		return Assessment{Reason: ReasonAPIError}, err
	}

	a := Assessment{Name: resp.Name}

	props := resp.TokenProperties
	if props == nil || !props.Valid {
		if props != nil {
			a.Reason = props.InvalidReason
		}
		e.logger.Warn("reCAPTCHA token is invalid", "reason", a.Reason)
		return a, nil
	}

	a.Action = props.Action
	if props.Action != e.action {
		a.Reason = ReasonActionMismatch
		e.logger.Warn("reCAPTCHA action mismatch", "expected", e.action, "received", props.Action)
		return a, nil
	}

	if resp.RiskAnalysis != nil {
		a.Score = resp.RiskAnalysis.Score
		a.Reasons = resp.RiskAnalysis.Reasons
	}
	a.Human = a.Score >= e.threshold
	if !a.Human {
		a.Reason = ReasonLowScore
	}

	e.logger.Info("reCAPTCHA Enterprise assessment",
		"score", a.Score,
		"threshold", e.threshold,
		"human", a.Human,
		"reasons", a.Reasons,
		"assessment", a.Name,
	)
	return a, nil
}

// Annotate reports whether an assessed interaction turned out legitimate or
// fraudulent. Errors are logged and returned.
func (e *Enterprise) Annotate(ctx context.Context, name, annotation string) error {
	req := &recaptchaenterprise.GoogleCloudRecaptchaenterpriseV1AnnotateAssessmentRequest{
		Annotation: annotation,
	}
	if _, err := e.service.Projects.Assessments.Annotate(name, req).Context(ctx).Do(); err != nil {
		e.logger.Error("Failed to annotate reCAPTCHA assessment", "assessment", name, "error", err)
		return err
	}
	e.logger.Info("reCAPTCHA assessment annotated", "assessment", name, "annotation", annotation)
	return nil
}
