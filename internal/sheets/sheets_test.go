package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookingform/pkg/logger"
	"bookingform/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:        "b-1",
		Name:      "Анна",
		Phone:     "89001234567",
		Email:     "ann@example.com",
		Date:      "2025-12-15",
		Consent:   true,
		Timestamp: time.Date(2025, 12, 1, 9, 30, 15, 0, time.UTC),
	}
}

func newTestRecorder(t *testing.T, handler http.HandlerFunc) *Recorder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := New(context.Background(), Config{
		SpreadsheetID: "sheet-1",
		Location:      moscow(t),
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
		},
	}, logger.Discard())
	require.NoError(t, err)
	return r
}

func TestRow(t *testing.T) {
	r, err := New(context.Background(), Config{Location: moscow(t)}, logger.Discard())
	require.NoError(t, err)

	got := r.Row(sampleBooking())
	want := []any{"01.12.2025, 12:30:15", "Анна", "89001234567", "ann@example.com", "15.12.2025", "", ""}
	assert.Equal(t, want, got)
}

func TestRowKeepsUnparsableDate(t *testing.T) {
	r, err := New(context.Background(), Config{Location: time.UTC}, logger.Discard())
	require.NoError(t, err)

	b := sampleBooking()
	b.Date = "someday"
	assert.Equal(t, "someday", r.Row(b)[4])
}

func TestAppendBooking(t *testing.T) {
	var body struct {
		Values [][]any `json:"values"`
	}

	r := newTestRecorder(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.True(t, strings.HasPrefix(req.URL.Path, "/v4/spreadsheets/sheet-1/values/"))
		assert.True(t, strings.HasSuffix(req.URL.Path, ":append"))
		assert.Equal(t, "RAW", req.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", req.URL.Query().Get("insertDataOption"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRows":1}}`))
	})

	rows, err := r.AppendBooking(context.Background(), sampleBooking())
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)
	require.Len(t, body.Values, 1)
	assert.Equal(t, "Анна", body.Values[0][1])
	assert.Equal(t, "15.12.2025", body.Values[0][4])
}

func TestAppendBookingAPIError(t *testing.T) {
	r := newTestRecorder(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	})

	_, err := r.AppendBooking(context.Background(), sampleBooking())
	assert.Error(t, err)
}

func TestDisabledRecorder(t *testing.T) {
	r, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"}, logger.Discard())
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	_, err = r.AppendBooking(context.Background(), sampleBooking())
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = r.TestConnection(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTestConnection(t *testing.T) {
	r := newTestRecorder(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v4/spreadsheets/sheet-1", req.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","properties":{"title":"Заявки"}}`))
	})

	title, err := r.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Заявки", title)
}
