package main

import (
	"context"
	"net/http"
	"time"

	"bookingform/internal/bookings/events"
	"bookingform/internal/bookings/handler"
	"bookingform/internal/bookings/service"
	"bookingform/internal/bookings/validator"
	"bookingform/internal/recaptcha"
	"bookingform/internal/sheets"
	"bookingform/internal/telegram"
	"bookingform/pkg/app"
	"bookingform/pkg/config"
	httputil "bookingform/pkg/http"
	"bookingform/pkg/kafka"
	kafka_config "bookingform/pkg/kafka/config"
	kafka_middleware "bookingform/pkg/kafka/middleware"
)

const (
	ServiceName = "bookings"

	startupCheckTimeout = 10 * time.Second
)

type integrations struct {
	verifier recaptcha.Verifier
	sheets   *sheets.Recorder
	notifier *telegram.Notifier
	producer *kafka.Producer
	metrics  *kafka_middleware.Metrics
}

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	deps := initIntegrations(cfg)
	bookingService := initServices(cfg, deps)

	serverApp := app.NewApplication(cfg, app.Route{Method: http.MethodPost, Path: handler.SubmitPath})
	serverApp.SetApp(newHealthHandler(cfg, deps), handler.NewBookingHandler(bookingService, cfg.Log, handler.Options{
		Environment:      cfg.Environment,
		RecaptchaSiteKey: cfg.RecaptchaSiteKey,
		ClientIP: func(r *http.Request) string {
			return httputil.ClientIP(r, cfg.TrustProxy)
		},
		Static: staticHandler(cfg),
	}))
	if deps.producer != nil {
		serverApp.OnShutdown("kafka producer", deps.producer.Close)
	}
	serverApp.Run()
}

func initIntegrations(cfg *config.Config) integrations {
	ctx, cancel := context.WithTimeout(context.Background(), startupCheckTimeout)
	defer cancel()

	var deps integrations
	var err error

	deps.verifier, err = recaptcha.New(ctx, recaptcha.Config{
		SiteKey:         cfg.RecaptchaSiteKey,
		SecretKey:       cfg.RecaptchaSecretKey,
		ProjectID:       cfg.RecaptchaProjectID,
		APIKey:          cfg.RecaptchaAPIKey,
		CredentialsFile: cfg.RecaptchaCredentialsFile,
		Threshold:       cfg.RecaptchaScoreThreshold,
		Action:          cfg.RecaptchaAction,
		VerifyURL:       cfg.RecaptchaVerifyURL,
		Endpoint:        cfg.RecaptchaEndpoint,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize reCAPTCHA", "error", err)
	}

	deps.sheets, err = sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.GoogleSheetID,
		Range:           cfg.GoogleSheetRange,
		CredentialsFile: cfg.GoogleCredentialsFile,
		Location:        cfg.Location,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Google Sheets", "error", err)
	}
	if deps.sheets.Enabled() {
		if title, err := deps.sheets.TestConnection(ctx); err != nil {
			cfg.Log.Error("Google Sheets connection check failed", "error", err)
		} else {
			cfg.Log.Info("Connected to spreadsheet", "title", title)
		}
	}

	deps.notifier, err = telegram.New(telegram.Config{
		Token:       cfg.TelegramBotToken,
		ChatID:      cfg.TelegramChatID,
		Location:    cfg.Location,
		APIEndpoint: cfg.TelegramAPIEndpoint,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Telegram notifier", "error", err)
	}

	if len(cfg.KafkaBrokers) > 0 {
		deps.producer, deps.metrics = initProducer(cfg)
	} else {
		cfg.Log.Info("Kafka brokers not configured, booking events will not be published")
	}

	return deps
}

func initProducer(cfg *config.Config) (*kafka.Producer, *kafka_middleware.Metrics) {
	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	producer.Use(metrics.ProducerMiddleware())

	cfg.Log.Info("Kafka producer initialized", "topic", producer.Topic())
	return producer, metrics
}

func initServices(cfg *config.Config, deps integrations) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.Location)

	serviceDeps := service.Dependencies{
		Validator: bookingValidator,
		Verifier:  deps.verifier,
		Sheets:    deps.sheets,
		Notifier:  deps.notifier,
		Log:       cfg.Log,

		SinkTimeout: cfg.SinkTimeout,
	}
	if deps.producer != nil {
		serviceDeps.Events = events.NewPublisher(deps.producer, ServiceName)
	}

	bookingService := service.NewBookingService(serviceDeps)
	cfg.Log.Info("Booking service initialized",
		"recaptcha", deps.verifier.Mode(),
		"sheets", deps.sheets.Enabled(),
		"telegram", deps.notifier.Enabled(),
		"events", serviceDeps.Events != nil,
	)
	return bookingService
}

func newHealthHandler(cfg *config.Config, deps integrations) *handler.HealthHandler {
	var eventStats func() any
	if deps.metrics != nil {
		eventStats = func() any { return deps.metrics.Snapshot() }
	}

	return handler.NewHealthHandler(cfg.Log, eventStats,
		handler.Integration{Name: "recaptcha", Status: deps.verifier.Mode},
		handler.Integration{Name: "sheets", Status: handler.EnabledStatus(deps.sheets.Enabled)},
		handler.Integration{Name: "telegram", Status: handler.EnabledStatus(deps.notifier.Enabled)},
		handler.Integration{Name: "kafka", Status: handler.EnabledStatus(func() bool { return deps.producer != nil })},
	)
}

func staticHandler(cfg *config.Config) http.Handler {
	if cfg.StaticDir == "" {
		return nil
	}
	cfg.Log.Info("Serving static files", "dir", cfg.StaticDir)
	return http.FileServer(http.Dir(cfg.StaticDir))
}
