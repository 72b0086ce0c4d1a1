package config

import "time"

const (
	DefaultEnvironment = "development"
	DefaultPort        = "3000"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultFrontendURL = "http://localhost:3000"
	DefaultTimezone    = "Europe/Moscow"

	DefaultGoogleSheetRange      = "Лист1!A:G"
	DefaultGoogleCredentialsFile = "config/google-credentials.json"

	DefaultRecaptchaScoreThreshold = 0.5
	DefaultRecaptchaAction         = "submit"
	DefaultRecaptchaVerifyURL      = "https://www.google.com/recaptcha/api/siteverify"

	DefaultKafkaTopic = "bookings.submitted"

	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = 15 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultSinkTimeout    = 20 * time.Second
	DefaultMaxRequestSize = 100 * 1024 // 100KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	ProductionEnvironment = "production"
)
