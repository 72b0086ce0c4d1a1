package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	bookingserrors "bookingform/internal/bookings/errors"
	"bookingform/internal/bookings/service"
	apperrors "bookingform/pkg/errors"
	httputil "bookingform/pkg/http"
	"bookingform/pkg/logger"
	"bookingform/pkg/middleware"
	"bookingform/pkg/model"

	"github.com/julienschmidt/httprouter"
)

var errNotJSONObject = errors.New("request body must be a JSON object")

const (
	APIPrefix  = "/api/"
	SubmitPath = "/api/submit"
)

type APIHealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

type ConfigResponse struct {
	RecaptchaSiteKey string `json:"recaptchaSiteKey"`
}

type Options struct {
	Environment      string
	RecaptchaSiteKey string
	// ClientIP resolves the submitter address. Defaults to the socket peer.
	ClientIP func(*http.Request) string
	// Static serves every non-API path when set.
	Static http.Handler
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
	opts    Options
	now     func() time.Time
}

func NewBookingHandler(service service.BookingService, log *logger.Logger, opts Options) *BookingHandler {
	if opts.ClientIP == nil {
		opts.ClientIP = func(r *http.Request) string { return httputil.ClientIP(r, false) }
	}
	return &BookingHandler{
		service: service,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

func (h *BookingHandler) APIHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteData(w, APIHealthResponse{
		Status:      "ok",
		Timestamp:   h.now().UTC().Format(time.RFC3339Nano),
		Environment: h.opts.Environment,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "APIHealth", "operation", "WriteData", "error", err)
	}
}

func (h *BookingHandler) Config(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteData(w, ConfigResponse{
		RecaptchaSiteKey: h.opts.RecaptchaSiteKey,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Config", "operation", "WriteData", "error", err)
	}
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := decodeBookingRequest(r)
	if err != nil {
		h.log.Warn("Failed to decode booking request",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		h.writeError(w, "Submit", err)
		return
	}

	if _, err := h.service.Submit(r.Context(), req, h.opts.ClientIP(r)); err != nil {
		h.writeError(w, "Submit", apperrors.AsAppError(err, bookingserrors.MsgSubmitFailed))
		return
	}

	if err := httputil.WriteSuccess(w, bookingserrors.MsgSubmitted); err != nil {
		h.log.Error("failed to write success response", "handler", "Submit", "operation", "WriteSuccess", "error", err)
	}
}

// NotFound answers unknown API paths with JSON and hands everything else to
// the static file server, when there is one.
func (h *BookingHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if h.opts.Static != nil && !strings.HasPrefix(r.URL.Path, APIPrefix) {
		h.opts.Static.ServeHTTP(w, r)
		return
	}
	h.writeError(w, "NotFound", apperrors.NotFound(bookingserrors.MsgEndpointNotFound))
}

func (h *BookingHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, "MethodNotAllowed", apperrors.New(apperrors.CodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed))
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/health", h.APIHealth)
	router.GET("/api/config", h.Config)
	router.POST(SubmitPath, h.Submit)
	router.NotFound = http.HandlerFunc(h.NotFound)
	router.MethodNotAllowed = http.HandlerFunc(h.MethodNotAllowed)
}

// decodeBookingRequest reads a JSON or url-encoded form body.
func decodeBookingRequest(r *http.Request) (*model.BookingRequest, error) {
	var req model.BookingRequest

	if middleware.ExtractContentType(r.Header.Get("Content-Type")) == middleware.ContentTypeForm {
		if err := r.ParseForm(); err != nil {
			return nil, requestError(err)
		}
		req = model.BookingRequest{
			Name:           model.LooseString(r.PostForm.Get("name")),
			Phone:          model.LooseString(r.PostForm.Get("phone")),
			Email:          model.LooseString(r.PostForm.Get("email")),
			Date:           model.LooseString(r.PostForm.Get("date")),
			RecaptchaToken: model.LooseString(r.PostForm.Get("recaptchaToken")),
		}
		if r.PostForm.Has("consent") {
			req.Consent = model.StringConsent(r.PostForm.Get("consent"))
		}
		return &req, nil
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &req, nil
		}
		return nil, requestError(err)
	}

	switch raw[0] {
	case '{':
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, requestError(err)
		}
	case '[':
		// an array carries none of the fields, so every one is reported missing
	default:
		return nil, requestError(errNotJSONObject)
	}
	return &req, nil
}

func requestError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.Wrap(err, apperrors.CodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge)
	}
	return apperrors.Wrap(err, apperrors.CodeInvalidInput, bookingserrors.MsgMalformedRequest, http.StatusBadRequest)
}
