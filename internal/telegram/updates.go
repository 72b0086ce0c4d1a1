package telegram

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pollTimeoutSeconds = 30

// Chat identifies a conversation the bot received a message from.
type Chat struct {
	ID       int64
	Type     string
	Title    string
	Username string
}

var ErrNoUpdates = errors.New("no messages received")

// Connect logs the bot in with getMe. Bots that poll for updates must be
// created this way.
func Connect(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	httpClient := &http.Client{Timeout: pollTimeoutSeconds*time.Second + DefaultTimeout}
	return tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
}

// WaitForChat long-polls updates until a message arrives or ctx ends, and
// returns the chat of that message. Used to discover the operator chat id.
// bot must come from Connect.
func WaitForChat(ctx context.Context, bot *tgbotapi.BotAPI) (Chat, error) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds

	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return Chat{}, ErrNoUpdates
		case update, ok := <-updates:
			if !ok {
				return Chat{}, ErrNoUpdates
			}
			msg := update.Message
			if msg == nil {
				msg = update.ChannelPost
			}
			if msg == nil || msg.Chat == nil {
				continue
			}
			return Chat{
				ID:       msg.Chat.ID,
				Type:     msg.Chat.Type,
				Title:    msg.Chat.Title,
				Username: msg.Chat.UserName,
			}, nil
		}
	}
}
