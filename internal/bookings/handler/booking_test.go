package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bookingserrors "bookingform/internal/bookings/errors"
	apperrors "bookingform/pkg/errors"
	"bookingform/pkg/logger"
	"bookingform/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock service for testing
type mockBookingService struct {
	submitFunc func(ctx context.Context, req *model.BookingRequest, remoteIP string) (*model.Booking, error)
	received   *model.BookingRequest
	remoteIP   string
}

func (m *mockBookingService) Submit(ctx context.Context, req *model.BookingRequest, remoteIP string) (*model.Booking, error) {
	m.received = req
	m.remoteIP = remoteIP
	if m.submitFunc != nil {
		return m.submitFunc(ctx, req, remoteIP)
	}
	return &model.Booking{ID: "b-1"}, nil
}

type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
}

func newRouter(svc *mockBookingService, opts Options) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard(), opts).RegisterRoutes(router)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestSubmit_JSON(t *testing.T) {
	svc := &mockBookingService{}
	router := newRouter(svc, Options{})

	body := `{"name":"Ann","phone":"89001234567","email":"a@b.com","date":"2025-06-16","consent":true,"recaptchaToken":"tok"}`
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, bookingserrors.MsgSubmitted, resp.Message)

	require.NotNil(t, svc.received)
	assert.Equal(t, "Ann", svc.received.Name.String())
	assert.Equal(t, "tok", svc.received.RecaptchaToken.String())
	assert.True(t, svc.received.Consent.Given())
	assert.Equal(t, "10.0.0.1", svc.remoteIP)
}

func TestSubmit_Form(t *testing.T) {
	svc := &mockBookingService{}
	router := newRouter(svc, Options{ClientIP: func(*http.Request) string { return "1.2.3.4" }})

	form := "name=Ann&phone=89001234567&email=a%40b.com&date=2025-06-16&consent=true&recaptchaToken=tok"
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.received)
	assert.Equal(t, "a@b.com", svc.received.Email.String())
	assert.True(t, svc.received.Consent.Given())
	assert.Equal(t, "1.2.3.4", svc.remoteIP)
}

func TestSubmit_MalformedJSON(t *testing.T) {
	svc := &mockBookingService{}
	router := newRouter(svc, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)
	assert.Nil(t, svc.received)
}

func TestSubmit_EmptyBodyReachesValidation(t *testing.T) {
	svc := &mockBookingService{}
	router := newRouter(svc, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.NotNil(t, svc.received)
	assert.Equal(t, "", svc.received.Name.String())
}

func TestSubmit_NonObjectJSON(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantReceived bool
	}{
		{"array reaches validation", `[]`, http.StatusOK, true},
		{"array with values", ` [1, "x"] `, http.StatusOK, true},
		{"string", `"hello"`, http.StatusBadRequest, false},
		{"number", `42`, http.StatusBadRequest, false},
		{"null", `null`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{}
			router := newRouter(svc, Options{})

			req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if !tt.wantReceived {
				assert.Nil(t, svc.received)
				return
			}
			require.NotNil(t, svc.received)
			assert.Equal(t, model.BookingRequest{}, *svc.received)
		})
	}
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	svc := &mockBookingService{}
	router := newRouter(svc, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(`{"name":"`+strings.Repeat("a", 200)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 16)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.received)
}

func TestSubmit_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantErrors []string
	}{
		{
			name:       "captcha",
			err:        apperrors.Captcha(bookingserrors.MsgCaptchaFailed, bookingserrors.ErrCaptchaFailed),
			wantStatus: http.StatusBadRequest,
			wantError:  bookingserrors.MsgCaptchaFailed,
		},
		{
			name:       "validation",
			err:        apperrors.Validation(bookingserrors.MsgValidationFailed, []string{"a", "b"}, nil),
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"a", "b"},
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  bookingserrors.MsgSubmitFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				submitFunc: func(ctx context.Context, req *model.BookingRequest, remoteIP string) (*model.Booking, error) {
					return nil, tt.err
				},
			}
			router := newRouter(svc, Options{})

			req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantErrors, resp.Errors)
		})
	}
}

func TestAPIHealth(t *testing.T) {
	h := NewBookingHandler(&mockBookingService{}, logger.Discard(), Options{Environment: "production"})
	h.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	router := httprouter.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2025-06-15T12:00:00Z","environment":"production"}`, w.Body.String())
}

func TestConfig(t *testing.T) {
	router := newRouter(&mockBookingService{}, Options{RecaptchaSiteKey: "site-key"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recaptchaSiteKey":"site-key"}`, w.Body.String())
}

func TestUnknownAPIPath(t *testing.T) {
	static := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("static"))
	})
	router := newRouter(&mockBookingService{}, Options{Static: static})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Endpoint not found", resp.Error)
}

func TestStaticFallback(t *testing.T) {
	static := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("index"))
	})
	router := newRouter(&mockBookingService{}, Options{Static: static})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "index", w.Body.String())
}

func TestNoStaticConfigured(t *testing.T) {
	router := newRouter(&mockBookingService{}, Options{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitWrongMethod(t *testing.T) {
	router := newRouter(&mockBookingService{}, Options{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/submit", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.False(t, decode(t, w).Success)
}
