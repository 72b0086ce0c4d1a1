package config

const (
	EnvEnvironment = "APP_ENV"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvFrontendURL = "FRONTEND_URL"
	EnvStaticDir   = "STATIC_DIR"
	EnvTrustProxy  = "TRUST_PROXY"
	EnvTimezone    = "BOOKING_TIMEZONE"

	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"
	EnvTelegramAPIURL   = "TELEGRAM_API_ENDPOINT"

	EnvGoogleSheetID         = "GOOGLE_SHEET_ID"
	EnvGoogleSheetRange      = "GOOGLE_SHEET_RANGE"
	EnvGoogleCredentialsFile = "GOOGLE_CREDENTIALS_FILE"

	EnvRecaptchaSiteKey         = "RECAPTCHA_SITE_KEY"
	EnvRecaptchaSecretKey       = "RECAPTCHA_SECRET_KEY"
	EnvRecaptchaProjectID       = "RECAPTCHA_PROJECT_ID"
	EnvRecaptchaAPIKey          = "RECAPTCHA_API_KEY"
	EnvRecaptchaCredentialsFile = "RECAPTCHA_CREDENTIALS_FILE"
	EnvRecaptchaScoreThreshold  = "RECAPTCHA_SCORE_THRESHOLD"
	EnvRecaptchaAction          = "RECAPTCHA_ACTION"
	EnvRecaptchaVerifyURL       = "RECAPTCHA_VERIFY_URL"
	EnvRecaptchaEndpoint        = "RECAPTCHA_ENTERPRISE_ENDPOINT"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_BOOKINGS_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvSinkTimeout    = "SINK_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

// RequiredIntegrationVars are reported at startup when unset. The server
// still starts; the matching integration runs disabled.
var RequiredIntegrationVars = []string{
	EnvTelegramBotToken,
	EnvTelegramChatID,
	EnvGoogleSheetID,
	EnvRecaptchaSiteKey,
	EnvRecaptchaSecretKey,
}
