package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	bookingserrors "bookingform/internal/bookings/errors"
	"bookingform/pkg/config"
	"bookingform/pkg/contracts"
	httputil "bookingform/pkg/http"
	"bookingform/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Route identifies a single endpoint by method and exact path.
type Route struct {
	Method string
	Path   string
}

type closer struct {
	name string
	fn   func() error
}

type Application struct {
	cfg            *config.Config
	limitedRoute   Route
	server         *http.Server
	rateLimiter    *middleware.RateLimiter
	healthHandler  http.Handler
	appHttpHandler http.Handler
	closers        []closer
}

// NewApplication prepares the server. Requests to limited are counted per
// client IP against the configured rate limit.
func NewApplication(cfg *config.Config, limited Route) *Application {
	return &Application{
		cfg:          cfg,
		limitedRoute: limited,
	}
}

func (a *Application) SetApp(healthHandler, appHandler contracts.Handler) {
	a.setHealthHandler(healthHandler)
	a.setAppHandler(appHandler)
	a.setAppServer()
}

// OnShutdown registers fn to run after the server stopped accepting
// requests. Closers run in registration order.
func (a *Application) OnShutdown(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Handler returns the fully wrapped root handler.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) clientIP(r *http.Request) string {
	return httputil.ClientIP(r, a.cfg.TrustProxy)
}

func (a *Application) setHealthHandler(healthHandler contracts.Handler) {
	healthRouter := httprouter.New()
	healthHandler.RegisterRoutes(healthRouter)

	a.healthHandler = middleware.Chain(healthRouter,
		middleware.Recovery(a.cfg.Log, bookingserrors.MsgSubmitFailed),
		middleware.RequestLogging(a.cfg.Log, a.clientIP),
	)
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	a.rateLimiter = middleware.NewRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		a.clientIP,
		a.cfg.Log,
	)

	mws := []func(http.Handler) http.Handler{
		middleware.Recovery(a.cfg.Log, bookingserrors.MsgSubmitFailed),
		middleware.RequestLogging(a.cfg.Log, a.clientIP),
		middleware.SecurityHeaders(),
		middleware.CORS(a.cfg.FrontendURL),
	}
	if a.cfg.IsProduction() {
		mws = append(mws, middleware.HTTPSRedirect(a.cfg.TrustProxy))
		a.cfg.Log.Info("HTTPS redirect enabled")
	}
	mws = append(mws,
		middleware.MaxBodySize(int64(a.cfg.MaxRequestSize)),
		middleware.ContentTypeValidation(a.cfg.Log),
		middleware.OnlyFor(a.limitedRoute.Method, a.limitedRoute.Path,
			middleware.RateLimit(a.rateLimiter, bookingserrors.MsgRateLimited)),
		middleware.RequestTimeout(a.cfg.RequestTimeout, bookingserrors.MsgSubmitFailed),
	)

	a.appHttpHandler = middleware.Chain(appRouter, mws...)
	a.cfg.Log.Info("Application endpoints configured with full security middleware stack",
		"rate_limited_route", a.limitedRoute.Method+" "+a.limitedRoute.Path,
	)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.rateLimiter.Stop()
	for _, c := range a.closers {
		if err := c.fn(); err != nil {
			a.cfg.Log.Error("Failed to close resource", "resource", c.name, "error", err)
		}
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Log.Info("Server stopped gracefully")
}
