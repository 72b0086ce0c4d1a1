package errors

import "errors"

var (
	ErrCaptchaFailed = errors.New("captcha verification failed")

	ErrValidationFailed = errors.New("booking validation failed")

	ErrMalformedRequest = errors.New("malformed booking request")
)

// Messages shown to the person filling in the form.
const (
	MsgCaptchaFailed    = "Проверка reCAPTCHA не пройдена. Попробуйте еще раз."
	MsgValidationFailed = "Проверьте правильность заполнения формы"
	MsgMalformedRequest = "Некорректный формат запроса"
	MsgSubmitted        = "Заявка успешно отправлена! Мы свяжемся с вами в ближайшее время."
	MsgSubmitFailed     = "Произошла ошибка при обработке заявки. Пожалуйста, попробуйте позже."
	MsgRateLimited      = "Слишком много запросов. Попробуйте позже."
	MsgEndpointNotFound = "Endpoint not found"
)
