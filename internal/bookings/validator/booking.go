package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"bookingform/pkg/locale"
	"bookingform/pkg/logger"
	"bookingform/pkg/model"
	"bookingform/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const (
	MinNameLength  = 2
	MaxNameLength  = 100
	MaxEmailLength = 254

	tagPersonName = "person_name"
	tagRuMobile   = "ru_mobile"
)

const (
	MsgNameRequired    = "Имя обязательно для заполнения"
	MsgNameTooShort    = "Имя должно содержать минимум 2 символа"
	MsgNameTooLong     = "Имя не должно превышать 100 символов"
	MsgNameCharacters  = "Имя может содержать только буквы, пробелы и дефисы"
	MsgPhoneRequired   = "Телефон обязателен для заполнения"
	MsgPhoneFormat     = "Неверный формат телефона. Ожидается: +7XXXXXXXXXX или 8XXXXXXXXXX"
	MsgEmailRequired   = "Email обязателен для заполнения"
	MsgEmailFormat     = "Неверный формат email"
	MsgEmailTooLong    = "Email слишком длинный"
	MsgDateRequired    = "Дата обязательна для заполнения"
	MsgDateFormat      = "Неверный формат даты"
	MsgDateInPast      = "Дата не может быть в прошлом"
	MsgDateTooFar      = "Дата не может быть более чем на год вперед"
	MsgConsentRequired = "Необходимо согласие на обработку персональных данных"
)

var (
	personNameRegex = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z\s\-]+$`)
	ruMobileRegex   = regexp.MustCompile(`^[78]\d{10}$`)
)

// Violations is the ordered list of reasons a submission was rejected.
// An empty list means the submission is acceptable.
type Violations []string

func (v Violations) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(v, "; "))
}

type Clock func() time.Time

type Option func(*BookingValidator)

// WithClock replaces time.Now, which decides what "today" is.
func WithClock(now Clock) Option {
	return func(v *BookingValidator) {
		v.now = now
	}
}

// BookingValidator checks and sanitizes booking form submissions. It keeps no
// per-call state and is safe for concurrent use.
type BookingValidator struct {
	validate *validator.Validate
	location *time.Location
	now      Clock
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, location *time.Location, opts ...Option) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation(tagPersonName, validatePersonName); err != nil {
		log.Fatal("Failed to register 'person_name' validator", "error", err)
	}
	if err := v.RegisterValidation(tagRuMobile, validateRuMobile); err != nil {
		log.Fatal("Failed to register 'ru_mobile' validator", "error", err)
	}

	if location == nil {
		location = time.Local
	}

	bv := &BookingValidator{
		validate: v,
		location: location,
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(bv)
	}

	log.Info("Booking validator initialized successfully", "timezone", location.String())
	return bv
}

func validatePersonName(fl validator.FieldLevel) bool {
	return personNameRegex.MatchString(fl.Field().String())
}

func validateRuMobile(fl validator.FieldLevel) bool {
	return ruMobileRegex.MatchString(fl.Field().String())
}

func (v *BookingValidator) ValidateName(name string) Violations {
	if name == "" {
		return Violations{MsgNameRequired}
	}

	var errs Violations
	trimmed := strings.TrimSpace(name)
	length := utf8.RuneCountInString(trimmed)

	if length < MinNameLength {
		errs = append(errs, MsgNameTooShort)
	}
	if length > MaxNameLength {
		errs = append(errs, MsgNameTooLong)
	}
	if v.validate.Var(trimmed, tagPersonName) != nil {
		errs = append(errs, MsgNameCharacters)
	}
	return errs
}

func (v *BookingValidator) ValidatePhone(phone string) Violations {
	if phone == "" {
		return Violations{MsgPhoneRequired}
	}

	if v.validate.Var(sanitizer.DigitsOnly(phone), tagRuMobile) != nil {
		return Violations{MsgPhoneFormat}
	}
	return nil
}

func (v *BookingValidator) ValidateEmail(email string) Violations {
	if email == "" {
		return Violations{MsgEmailRequired}
	}

	var errs Violations
	trimmed := strings.TrimSpace(email)

	if v.validate.Var(trimmed, "required,email") != nil {
		errs = append(errs, MsgEmailFormat)
	}
	if len(trimmed) > MaxEmailLength {
		errs = append(errs, MsgEmailTooLong)
	}
	return errs
}

func (v *BookingValidator) ValidateDate(date string) Violations {
	if date == "" {
		return Violations{MsgDateRequired}
	}

	selected, err := locale.ParseDate(date, v.location)
	if err != nil {
		return Violations{MsgDateFormat}
	}

	var errs Violations
	today := locale.StartOfDay(v.now(), v.location)

	if selected.Before(today) {
		errs = append(errs, MsgDateInPast)
	}
	if selected.After(today.AddDate(1, 0, 0)) {
		errs = append(errs, MsgDateTooFar)
	}
	return errs
}

func (v *BookingValidator) ValidateConsent(consent model.Consent) Violations {
	if !consent.Given() {
		return Violations{MsgConsentRequired}
	}
	return nil
}

// ValidateBookingData runs every field check in form order (name, phone,
// email, date, consent) and returns all violations found.
func (v *BookingValidator) ValidateBookingData(data *model.BookingRequest) Violations {
	if data == nil {
		data = &model.BookingRequest{}
	}

	errs := Violations{}
	errs = append(errs, v.ValidateName(data.Name.String())...)
	errs = append(errs, v.ValidatePhone(data.Phone.String())...)
	errs = append(errs, v.ValidateEmail(data.Email.String())...)
	errs = append(errs, v.ValidateDate(data.Date.String())...)
	errs = append(errs, v.ValidateConsent(data.Consent)...)
	return errs
}

// Validate is ValidateBookingData as an error: nil when the submission is
// acceptable, Violations otherwise.
func (v *BookingValidator) Validate(data *model.BookingRequest) error {
	if errs := v.ValidateBookingData(data); len(errs) > 0 {
		return errs
	}
	return nil
}

// SanitizeData produces the record that is stored and displayed. It does not
// re-validate; call it only after Validate succeeded.
func (v *BookingValidator) SanitizeData(data *model.BookingRequest) *model.Booking {
	if data == nil {
		data = &model.BookingRequest{}
	}

	return &model.Booking{
		Name:      sanitizer.SanitizeName(data.Name.String()),
		Phone:     sanitizer.DigitsOnly(strings.TrimSpace(data.Phone.String())),
		Email:     sanitizer.SanitizeEmail(data.Email.String()),
		Date:      sanitizer.SanitizeDate(data.Date.String()),
		Consent:   data.Consent.Bool(),
		Timestamp: v.now().UTC(),
	}
}
