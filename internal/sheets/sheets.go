// Package sheets records accepted bookings as rows of a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookingform/pkg/locale"
	"bookingform/pkg/logger"
	"bookingform/pkg/model"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	DefaultRange = "Лист1!A:G"

	valueInputRaw    = "RAW"
	insertDataOption = "INSERT_ROWS"
)

var ErrDisabled = errors.New("google sheets integration is not configured")

type Config struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
	Location        *time.Location

	// ClientOptions replace the credentials file option when set.
	ClientOptions []option.ClientOption
}

func (cfg Config) Enabled() bool {
	return cfg.SpreadsheetID != "" && (cfg.CredentialsFile != "" || len(cfg.ClientOptions) > 0)
}

// Recorder appends booking rows. A Recorder built without a spreadsheet id or
// credentials is disabled: every call logs a warning and returns ErrDisabled.
type Recorder struct {
	service       *sheets.Service
	spreadsheetID string
	valueRange    string
	location      *time.Location
	logger        *logger.Logger
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*Recorder, error) {
	r := &Recorder{
		spreadsheetID: cfg.SpreadsheetID,
		valueRange:    cfg.Range,
		location:      cfg.Location,
		logger:        log,
	}
	if r.valueRange == "" {
		r.valueRange = DefaultRange
	}
	if r.location == nil {
		r.location = time.Local
	}

	if !cfg.Enabled() {
		log.Warn("Google Sheets is not configured, bookings will not be recorded")
		return r, nil
	}

	opts := cfg.ClientOptions
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	r.service = svc

	log.Info("Google Sheets client initialized", "spreadsheet_id", cfg.SpreadsheetID, "range", r.valueRange)
	return r, nil
}

func (r *Recorder) Enabled() bool {
	return r.service != nil
}

// Row renders a booking as the spreadsheet columns: received at, name, phone,
// email, booking date, time and message. The last two are kept empty for the
// operator.
func (r *Recorder) Row(booking *model.Booking) []any {
	return []any{
		locale.FormatDateTime(booking.Timestamp.In(r.location)),
		booking.Name,
		booking.Phone,
		booking.Email,
		locale.DisplayDate(booking.Date, r.location, locale.FormatDate),
		"",
		"",
	}
}

// AppendBooking appends one row for booking and returns the number of rows
// the API reports as added.
func (r *Recorder) AppendBooking(ctx context.Context, booking *model.Booking) (int64, error) {
	if !r.Enabled() {
		r.logger.Warn("Google Sheets not configured, skipping booking record", "email", booking.Email)
		return 0, ErrDisabled
	}

	values := &sheets.ValueRange{
		Values: [][]any{r.Row(booking)},
	}

	resp, err := r.service.Spreadsheets.Values.
		Append(r.spreadsheetID, r.valueRange, values).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		r.logger.Error("Failed to append booking to Google Sheets", "email", booking.Email, "error", err)
		return 0, fmt.Errorf("failed to append row: %w", err)
	}

	var rows int64
	if resp.Updates != nil {
		rows = resp.Updates.UpdatedRows
	}
	r.logger.Info("Booking recorded in Google Sheets", "booking_id", booking.ID, "rows", rows)
	return rows, nil
}

// TestConnection fetches the spreadsheet title to prove access.
func (r *Recorder) TestConnection(ctx context.Context) (string, error) {
	if !r.Enabled() {
		return "", ErrDisabled
	}

	sheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	var title string
	if sheet.Properties != nil {
		title = sheet.Properties.Title
	}
	r.logger.Info("Google Sheets connection verified", "title", title)
	return title, nil
}
