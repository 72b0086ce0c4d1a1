package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bookingserrors "bookingform/internal/bookings/errors"
	"bookingform/internal/bookings/pipeline"
	"bookingform/internal/bookings/validator"
	"bookingform/internal/recaptcha"
	"bookingform/internal/sheets"
	"bookingform/internal/telegram"
	apperrors "bookingform/pkg/errors"
	"bookingform/pkg/logger"
	"bookingform/pkg/middleware"
	"bookingform/pkg/model"

	"github.com/google/uuid"
)

const (
	FlowSubmit = "submit_booking"

	processAssessment = "assessment"
	processSheetRows  = "sheet_rows"

	DefaultSinkTimeout = 20 * time.Second
)

type BookingService interface {
	// Submit runs a form submission through captcha verification,
	// validation, sanitization and the sinks. It returns the stored record,
	// or an *apperrors.AppError describing why the submission was refused.
	Submit(ctx context.Context, req *model.BookingRequest, remoteIP string) (*model.Booking, error)
}

type SheetRecorder interface {
	AppendBooking(ctx context.Context, booking *model.Booking) (int64, error)
}

type Notifier interface {
	SendBookingNotification(ctx context.Context, booking *model.Booking) error
}

type EventPublisher interface {
	PublishBookingSubmitted(ctx context.Context, booking *model.Booking, correlationID string) error
}

type Dependencies struct {
	Validator *validator.BookingValidator
	Verifier  recaptcha.Verifier
	Sheets    SheetRecorder
	Notifier  Notifier
	// Events is optional.
	Events EventPublisher
	Log    *logger.Logger
	// SinkTimeout bounds the sheet, chat and event steps, which run on a
	// context detached from the request. Defaults to DefaultSinkTimeout.
	SinkTimeout time.Duration
}

type bookingService struct {
	deps   Dependencies
	engine *pipeline.Engine
	log    *logger.Logger
	newID  func() string
}

func NewBookingService(deps Dependencies) BookingService {
	if deps.SinkTimeout <= 0 {
		deps.SinkTimeout = DefaultSinkTimeout
	}
	s := &bookingService{
		deps:  deps,
		log:   deps.Log,
		newID: uuid.NewString,
	}

	steps := []*pipeline.Step{
		pipeline.NewStep(pipeline.StepVerifyCaptcha, s.verifyCaptcha),
		pipeline.NewStep(pipeline.StepValidate, s.validate),
		pipeline.NewStep(pipeline.StepSanitize, s.sanitize),
	}
	if deps.Sheets != nil {
		steps = append(steps, pipeline.NewBestEffortStep(pipeline.StepRecordSheet, s.recordSheet))
	}
	if deps.Notifier != nil {
		steps = append(steps, pipeline.NewBestEffortStep(pipeline.StepNotifyOperator, s.notifyOperator))
	}
	if deps.Events != nil {
		steps = append(steps, pipeline.NewBestEffortStep(pipeline.StepPublishEvent, s.publishEvent))
	}

	s.engine = pipeline.NewEngine(deps.Log, pipeline.NewFlow(FlowSubmit, steps...))
	return s
}

func (s *bookingService) Submit(ctx context.Context, req *model.BookingRequest, remoteIP string) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput(bookingserrors.MsgMalformedRequest)
	}

	s.log.Info("Processing booking request", "ip", remoteIP, "request_id", middleware.GetRequestID(ctx))

	sc := pipeline.NewSubmissionContext(ctx, req, remoteIP)
	defer sc.Release()
	if err := s.engine.Run(FlowSubmit, sc); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.log.Error("Unexpected error processing booking", "ip", remoteIP, "error", err)
		return nil, apperrors.Internal(bookingserrors.MsgSubmitFailed, err)
	}

	assessment, _ := sc.Process[processAssessment].(recaptcha.Assessment)
	sheetRows, _ := sc.Process[processSheetRows].(int64)
	s.log.Info("Booking processed successfully",
		"booking_id", sc.Booking.ID,
		"name", sc.Booking.Name,
		"email", sc.Booking.Email,
		"date", sc.Booking.Date,
		"recaptcha_score", assessment.Score,
		"recaptcha_assessment", assessment.Name,
		"sheet_rows", sheetRows,
		"failed_steps", failedSteps(sc),
	)
	return sc.Booking, nil
}

func (s *bookingService) verifyCaptcha(sc *pipeline.SubmissionContext) error {
	assessment, err := s.deps.Verifier.Verify(sc.Ctx, sc.Request.RecaptchaToken.String(), sc.RemoteIP)
	sc.Process[processAssessment] = assessment
	if err != nil {
		s.log.Warn("reCAPTCHA verification errored", "ip", sc.RemoteIP, "error", err)
		return apperrors.Captcha(bookingserrors.MsgCaptchaFailed, fmt.Errorf("%w: %v", bookingserrors.ErrCaptchaFailed, err))
	}
	if !assessment.Human {
		s.log.Warn("reCAPTCHA verification failed", "ip", sc.RemoteIP, "reason", assessment.Reason, "score", assessment.Score)
		return apperrors.Captcha(bookingserrors.MsgCaptchaFailed, fmt.Errorf("%w: %s", bookingserrors.ErrCaptchaFailed, assessment.Reason))
	}
	return nil
}

func (s *bookingService) validate(sc *pipeline.SubmissionContext) error {
	violations := s.deps.Validator.ValidateBookingData(sc.Request)
	if len(violations) == 0 {
		return nil
	}

	s.log.Warn("Validation failed", "errors", []string(violations), "ip", sc.RemoteIP)
	return apperrors.Validation(
		bookingserrors.MsgValidationFailed,
		[]string(violations),
		fmt.Errorf("%w: %w", bookingserrors.ErrValidationFailed, violations),
	)
}

func (s *bookingService) sanitize(sc *pipeline.SubmissionContext) error {
	booking := s.deps.Validator.SanitizeData(sc.Request)
	booking.ID = s.newID()
	booking.IPAddress = sc.RemoteIP
	sc.Booking = booking

	// the booking is accepted from here on; a client that goes away must not
	// stop the operator from hearing about it
	sc.Detach(s.deps.SinkTimeout)

	s.log.Info("Booking data validated and sanitized", "booking_id", booking.ID, "email", booking.Email)
	return nil
}

func (s *bookingService) recordSheet(sc *pipeline.SubmissionContext) error {
	rows, err := s.deps.Sheets.AppendBooking(sc.Ctx, sc.Booking)
	if errors.Is(err, sheets.ErrDisabled) {
		return nil
	}
	if err != nil {
		return err
	}
	sc.Process[processSheetRows] = rows
	return nil
}

func (s *bookingService) notifyOperator(sc *pipeline.SubmissionContext) error {
	err := s.deps.Notifier.SendBookingNotification(sc.Ctx, sc.Booking)
	if errors.Is(err, telegram.ErrDisabled) {
		return nil
	}
	return err
}

func (s *bookingService) publishEvent(sc *pipeline.SubmissionContext) error {
	return s.deps.Events.PublishBookingSubmitted(sc.Ctx, sc.Booking, middleware.GetRequestID(sc.Ctx))
}

func failedSteps(sc *pipeline.SubmissionContext) []string {
	names := make([]string, 0, len(sc.Failures))
	for name := range sc.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
