package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"bookingform/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    string
	LogFormat   string
	FrontendURL string
	StaticDir   string
	TrustProxy  bool
	Timezone    string
	Location    *time.Location

	TelegramBotToken string
	TelegramChatID   string
	// TelegramAPIEndpoint overrides the Bot API URL format, for a local Bot
	// API server.
	TelegramAPIEndpoint string

	GoogleSheetID         string
	GoogleSheetRange      string
	GoogleCredentialsFile string

	RecaptchaSiteKey         string
	RecaptchaSecretKey       string
	RecaptchaProjectID       string
	RecaptchaAPIKey          string
	RecaptchaCredentialsFile string
	RecaptchaScoreThreshold  float64
	RecaptchaAction          string
	RecaptchaVerifyURL       string
	RecaptchaEndpoint        string

	KafkaBrokers []string
	KafkaTopic   string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	SinkTimeout    time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

// Load reads .env (when present) and the process environment, exits on an
// invalid configuration and logs the effective values.
func Load(serviceName string) *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env file: %v\n", err)
	}

	cfg := FromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	cfg.WarnMissingIntegrations()
	return cfg
}

// FromEnv builds a Config from the process environment without validating it.
func FromEnv(serviceName string) *Config {
	cfg := &Config{
		Environment: getEnvStr(EnvEnvironment, DefaultEnvironment),
		Port:        getEnvStr(EnvPort, DefaultPort),
		LogLevel:    getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat:   getEnvStr(EnvLogFormat, DefaultLogFormat),
		FrontendURL: getEnvStr(EnvFrontendURL, DefaultFrontendURL),
		StaticDir:   getEnvStr(EnvStaticDir, ""),
		TrustProxy:  getEnvBool(EnvTrustProxy, false),
		Timezone:    getEnvStr(EnvTimezone, DefaultTimezone),

		TelegramBotToken: getEnvStr(EnvTelegramBotToken, ""),
		TelegramChatID:   getEnvStr(EnvTelegramChatID, ""),

		TelegramAPIEndpoint: getEnvStr(EnvTelegramAPIURL, ""),

		GoogleSheetID:         getEnvStr(EnvGoogleSheetID, ""),
		GoogleSheetRange:      getEnvStr(EnvGoogleSheetRange, DefaultGoogleSheetRange),
		GoogleCredentialsFile: getEnvStr(EnvGoogleCredentialsFile, DefaultGoogleCredentialsFile),

		RecaptchaSiteKey:         getEnvStr(EnvRecaptchaSiteKey, ""),
		RecaptchaSecretKey:       getEnvStr(EnvRecaptchaSecretKey, ""),
		RecaptchaProjectID:       getEnvStr(EnvRecaptchaProjectID, ""),
		RecaptchaAPIKey:          getEnvStr(EnvRecaptchaAPIKey, ""),
		RecaptchaCredentialsFile: getEnvStr(EnvRecaptchaCredentialsFile, ""),
		RecaptchaScoreThreshold:  getEnvFloat(EnvRecaptchaScoreThreshold, DefaultRecaptchaScoreThreshold),
		RecaptchaAction:          getEnvStr(EnvRecaptchaAction, DefaultRecaptchaAction),
		RecaptchaVerifyURL:       getEnvStr(EnvRecaptchaVerifyURL, DefaultRecaptchaVerifyURL),
		RecaptchaEndpoint:        getEnvStr(EnvRecaptchaEndpoint, ""),

		KafkaBrokers: getEnvList(EnvKafkaBrokers),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		SinkTimeout:    getEnvDuration(EnvSinkTimeout, DefaultSinkTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
	}

	cfg.Log = logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		AddSource:   !cfg.IsProduction(),
		Service:     serviceName,
		Environment: cfg.Environment,
	})

	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		cfg.Location = loc
	}

	return cfg
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == ProductionEnvironment
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.Location == nil {
		errors = append(errors, fmt.Sprintf("BookingTimezone must be a valid IANA time zone, got: %s", cfg.Timezone))
	}

	if cfg.FrontendURL == "" {
		errors = append(errors, "FrontendURL cannot be empty")
	}

	if cfg.TelegramChatID != "" && !strings.HasPrefix(cfg.TelegramChatID, "@") {
		if _, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64); err != nil {
			errors = append(errors, fmt.Sprintf("TelegramChatID must be numeric or an @channel name, got: %s", cfg.TelegramChatID))
		}
	}

	if cfg.RecaptchaScoreThreshold < 0 || cfg.RecaptchaScoreThreshold > 1 {
		errors = append(errors, fmt.Sprintf("RecaptchaScoreThreshold must be between 0 and 1, got: %v", cfg.RecaptchaScoreThreshold))
	}
	if cfg.RecaptchaAction == "" {
		errors = append(errors, "RecaptchaAction cannot be empty")
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		errors = append(errors, "KafkaTopic cannot be empty when KafkaBrokers are set")
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.SinkTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SinkTimeout must be positive, got: %s", cfg.SinkTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// MissingIntegrations lists the integration variables that are not set.
func (cfg *Config) MissingIntegrations() []string {
	values := map[string]string{
		EnvTelegramBotToken:   cfg.TelegramBotToken,
		EnvTelegramChatID:     cfg.TelegramChatID,
		EnvGoogleSheetID:      cfg.GoogleSheetID,
		EnvRecaptchaSiteKey:   cfg.RecaptchaSiteKey,
		EnvRecaptchaSecretKey: cfg.RecaptchaSecretKey,
	}

	var missing []string
	for _, key := range RequiredIntegrationVars {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func (cfg *Config) WarnMissingIntegrations() {
	if missing := cfg.MissingIntegrations(); len(missing) > 0 {
		cfg.Log.Warn("Missing environment variables, application may not function correctly",
			"missing", strings.Join(missing, ", "),
		)
	}
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"frontend_url", cfg.FrontendURL,
		"static_dir", cfg.StaticDir,
		"trust_proxy", cfg.TrustProxy,
		"timezone", cfg.Timezone,
		"telegram_token", redactToken(cfg.TelegramBotToken),
		"telegram_chat_id", cfg.TelegramChatID,
		"google_sheet_id", cfg.GoogleSheetID,
		"google_sheet_range", cfg.GoogleSheetRange,
		"google_credentials_file", cfg.GoogleCredentialsFile,
		"recaptcha_site_key_set", cfg.RecaptchaSiteKey != "",
		"recaptcha_secret_set", cfg.RecaptchaSecretKey != "",
		"recaptcha_project_id", cfg.RecaptchaProjectID,
		"recaptcha_score_threshold", cfg.RecaptchaScoreThreshold,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_topic", cfg.KafkaTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"sink_timeout", cfg.SinkTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// redactToken keeps the bot id part of a Telegram token ("123456:***").
func redactToken(token string) string {
	if token == "" {
		return ""
	}
	id, _, found := strings.Cut(token, ":")
	if !found {
		return "***"
	}
	return id + ":***"
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
