// Package telegram notifies the operator chat about new bookings.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookingform/pkg/locale"
	"bookingform/pkg/logger"
	"bookingform/pkg/model"
	"bookingform/pkg/sanitizer"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	DefaultTimeout = 10 * time.Second
	updatesBuffer  = 100
)

var ErrDisabled = errors.New("telegram notifications are disabled")

type Config struct {
	Token    string
	ChatID   string
	Location *time.Location
	// APIEndpoint overrides tgbotapi.APIEndpoint.
	APIEndpoint string
	HTTPClient  *http.Client
}

// Notifier sends booking notifications with the Bot API. A Notifier built
// without a token or chat id is disabled.
type Notifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	channel  string
	location *time.Location
	logger   *logger.Logger
}

func New(cfg Config, log *logger.Logger) (*Notifier, error) {
	n := &Notifier{
		location: cfg.Location,
		logger:   log,
	}
	if n.location == nil {
		n.location = time.Local
	}

	if cfg.Token == "" || cfg.ChatID == "" {
		log.Warn("Telegram credentials not provided, notifications will be disabled")
		return n, nil
	}

	chatID, channel, err := ParseChatID(cfg.ChatID)
	if err != nil {
		return nil, err
	}
	n.chatID = chatID
	n.channel = channel
	n.bot = NewBot(cfg.Token, cfg.APIEndpoint, cfg.HTTPClient)

	log.Info("Telegram notifier initialized")
	return n, nil
}

// NewBot builds a Bot API client without the getMe round trip that
// tgbotapi.NewBotAPI performs.
func NewBot(token, endpoint string, httpClient *http.Client) *tgbotapi.BotAPI {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: httpClient,
		Buffer: updatesBuffer,
	}
	bot.SetAPIEndpoint(endpoint)
	return bot
}

// ParseChatID accepts a numeric chat id or a public @channel username.
func ParseChatID(raw string) (int64, string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "@") && len(raw) > 1 {
		return 0, raw, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid telegram chat id %q: expected a number or @channel", raw)
	}
	return id, "", nil
}

func (n *Notifier) Enabled() bool {
	return n.bot != nil
}

func (n *Notifier) newMessage(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if n.channel != "" {
		msg = tgbotapi.NewMessageToChannel(n.channel, text)
	} else {
		msg = tgbotapi.NewMessage(n.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// FormatBooking renders the operator message for booking.
func (n *Notifier) FormatBooking(booking *model.Booking) string {
	var b strings.Builder
	b.WriteString("🆕 <b>Новая заявка на бронирование</b>\n\n")
	fmt.Fprintf(&b, "👤 <b>Имя:</b> %s\n", escape(booking.Name))
	fmt.Fprintf(&b, "📱 <b>Телефон:</b> %s\n", escape(sanitizer.FormatInternational(booking.Phone, sanitizer.DefaultRegion)))
	fmt.Fprintf(&b, "📧 <b>Email:</b> %s\n", escape(booking.Email))
	fmt.Fprintf(&b, "📅 <b>Дата:</b> %s\n\n", escape(locale.DisplayDate(booking.Date, n.location, locale.FormatDateLong)))
	fmt.Fprintf(&b, "⏰ <b>Получено:</b> %s", locale.FormatDateTimeShort(booking.Timestamp.In(n.location)))
	return b.String()
}

// escape undoes the form sanitizer's entities before applying the escaping
// Telegram's HTML mode expects, so text is not escaped twice.
func escape(s string) string {
	return sanitizer.EscapeTelegramHTML(html.UnescapeString(s))
}

func (n *Notifier) SendBookingNotification(ctx context.Context, booking *model.Booking) error {
	if !n.Enabled() {
		n.logger.Warn("Telegram notifications are disabled", "email", booking.Email)
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := n.bot.Send(n.newMessage(n.FormatBooking(booking))); err != nil {
		n.logger.Error("Telegram notification failed", "email", booking.Email, "error", err)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Info("Telegram notification sent", "booking_id", booking.ID, "email", booking.Email)
	return nil
}

// SendText sends a plain HTML message to the configured chat.
func (n *Notifier) SendText(ctx context.Context, text string) error {
	if !n.Enabled() {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Send(n.newMessage(text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Identity returns the bot's username, proving the token works.
func (n *Notifier) Identity() (string, error) {
	if !n.Enabled() {
		return "", ErrDisabled
	}
	me, err := n.bot.GetMe()
	if err != nil {
		return "", fmt.Errorf("telegram getMe failed: %w", err)
	}
	return me.UserName, nil
}
