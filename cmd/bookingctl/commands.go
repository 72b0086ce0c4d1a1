package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bookingform/internal/recaptcha"
	"bookingform/internal/sheets"
	"bookingform/internal/telegram"
	"bookingform/pkg/client"
	"bookingform/pkg/config"
	"bookingform/pkg/model"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

const defaultServerURL = "http://localhost:3000"

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "report which integrations are configured and reachable",
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			cfg := config.Load(ServiceName)
			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()

			failed := 0
			report := func(name string, err error, ok string) {
				switch {
				case err == nil:
					fmt.Fprintf(out, "✅ %-10s %s\n", name, ok)
				case errors.Is(err, telegram.ErrDisabled), errors.Is(err, sheets.ErrDisabled):
					fmt.Fprintf(out, "⚠️  %-10s not configured\n", name)
				default:
					failed++
					fmt.Fprintf(out, "❌ %-10s %v\n", name, err)
				}
			}

			if missing := cfg.MissingIntegrations(); len(missing) > 0 {
				fmt.Fprintf(out, "⚠️  missing variables: %s\n", strings.Join(missing, ", "))
			}

			notifier, err := telegram.New(telegram.Config{
				Token:       cfg.TelegramBotToken,
				ChatID:      cfg.TelegramChatID,
				APIEndpoint: cfg.TelegramAPIEndpoint,
			}, cfg.Log)
			if err == nil {
				var username string
				username, err = notifier.Identity()
				report("telegram", err, "bot @"+username)
			} else {
				report("telegram", err, "")
			}

			recorder, err := sheets.New(ctx, sheets.Config{
				SpreadsheetID:   cfg.GoogleSheetID,
				Range:           cfg.GoogleSheetRange,
				CredentialsFile: cfg.GoogleCredentialsFile,
			}, cfg.Log)
			if err == nil {
				var title string
				title, err = recorder.TestConnection(ctx)
				report("sheets", err, "spreadsheet "+title)
			} else {
				report("sheets", err, "")
			}

			mode := recaptcha.Config{
				SiteKey:   cfg.RecaptchaSiteKey,
				SecretKey: cfg.RecaptchaSecretKey,
				ProjectID: cfg.RecaptchaProjectID,
			}.Mode()
			if mode == recaptcha.ModeDisabled {
				fmt.Fprintf(out, "⚠️  %-10s not configured, submissions are not verified\n", "recaptcha")
			} else {
				fmt.Fprintf(out, "✅ %-10s %s\n", "recaptcha", mode)
			}

			if len(cfg.KafkaBrokers) > 0 {
				fmt.Fprintf(out, "✅ %-10s %s -> %s\n", "kafka", strings.Join(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
			} else {
				fmt.Fprintf(out, "⚠️  %-10s not configured\n", "kafka")
			}

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d integration(s) failed", failed), 1)
			}
			return nil
		},
	}
}

func chatIDCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat-id",
		Usage: "wait for a message to the bot and print the chat id to use as TELEGRAM_CHAT_ID",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "wait", Value: 2 * time.Minute, Usage: "how long to wait for a message"},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			cfg := config.Load(ServiceName)
			if cfg.TelegramBotToken == "" {
				return cli.Exit(config.EnvTelegramBotToken+" is not set", 1)
			}

			bot, err := telegram.Connect(cfg.TelegramBotToken, cfg.TelegramAPIEndpoint)
			if err != nil {
				return fmt.Errorf("failed to connect bot: %w", err)
			}

			fmt.Fprintf(out, "Send any message to @%s (or add it to a group) ...\n", bot.Self.UserName)

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("wait"))
			defer cancel()

			chat, err := telegram.WaitForChat(ctx, bot)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Chat id:   %d\n", chat.ID)
			fmt.Fprintf(out, "Chat type: %s\n", chat.Type)
			if chat.Title != "" {
				fmt.Fprintf(out, "Title:     %s\n", chat.Title)
			}
			if chat.Username != "" {
				fmt.Fprintf(out, "Username:  @%s\n", chat.Username)
			}
			fmt.Fprintf(out, "\n%s=%d\n", config.EnvTelegramChatID, chat.ID)
			return nil
		},
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "send a valid and an invalid booking to a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: defaultServerURL, EnvVars: []string{"BOOKING_SERVER_URL"}, Usage: "server base url"},
			&cli.StringFlag{Name: "token", Usage: "reCAPTCHA token to send with the valid booking"},
			&cli.BoolFlag{Name: "form", Usage: "send url-encoded forms instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			bookingClient := client.NewBookingClient(c.String("url"))
			ctx := c.Context

			if err := bookingClient.WaitForHealthy(ctx, 5*time.Second); err != nil {
				return fmt.Errorf("server is not reachable: %w", err)
			}

			valid := sampleForm(time.Now().AddDate(0, 0, 7), c.String("token"))
			invalid := url.Values{
				"name":    {"A"},
				"phone":   {"123"},
				"email":   {"not-an-email"},
				"date":    {"2000-01-01"},
				"consent": {"false"},
			}

			for _, tc := range []struct {
				label string
				form  url.Values
			}{
				{"valid booking", valid},
				{"invalid booking", invalid},
			} {
				var (
					resp *client.Response
					err  error
				)
				if c.Bool("form") {
					resp, err = bookingClient.SubmitForm(ctx, tc.form)
				} else {
					resp, err = bookingClient.Submit(ctx, formToJSON(tc.form))
				}
				if err != nil {
					return fmt.Errorf("%s: %w", tc.label, err)
				}

				result, err := bookingClient.DecodeSubmitResult(resp)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: HTTP %d success=%t\n", tc.label, resp.StatusCode, result.Success)
				if result.Message != "" {
					fmt.Fprintln(out, "  ", result.Message)
				}
				if result.Error != "" {
					fmt.Fprintln(out, "  ", result.Error)
				}
				for _, e := range result.Errors {
					fmt.Fprintln(out, "   -", e)
				}
			}
			return nil
		},
	}
}

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "send a sample booking notification to the configured chat",
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			cfg := config.Load(ServiceName)

			notifier, err := telegram.New(telegram.Config{
				Token:       cfg.TelegramBotToken,
				ChatID:      cfg.TelegramChatID,
				Location:    cfg.Location,
				APIEndpoint: cfg.TelegramAPIEndpoint,
			}, cfg.Log)
			if err != nil {
				return err
			}

			booking := sampleBooking(time.Now())
			if err := notifier.SendBookingNotification(c.Context, booking); err != nil {
				return err
			}
			fmt.Fprintln(out, "Notification sent to", cfg.TelegramChatID)
			return nil
		},
	}
}

func annotateCommand() *cli.Command {
	return &cli.Command{
		Name:      "annotate",
		Usage:     "tell reCAPTCHA Enterprise whether an assessed booking was legitimate or fraudulent",
		ArgsUsage: "<assessment> LEGITIMATE|FRAUDULENT",
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			if c.NArg() != 2 {
				return cli.Exit("usage: annotate <assessment> LEGITIMATE|FRAUDULENT", 2)
			}
			annotation := strings.ToUpper(c.Args().Get(1))
			if annotation != recaptcha.AnnotationLegitimate && annotation != recaptcha.AnnotationFraudulent {
				return cli.Exit(fmt.Sprintf("annotation must be %s or %s, got %q",
					recaptcha.AnnotationLegitimate, recaptcha.AnnotationFraudulent, c.Args().Get(1)), 2)
			}

			cfg := config.Load(ServiceName)
			enterprise, err := recaptcha.NewEnterprise(c.Context, recaptcha.Config{
				SiteKey:         cfg.RecaptchaSiteKey,
				ProjectID:       cfg.RecaptchaProjectID,
				APIKey:          cfg.RecaptchaAPIKey,
				CredentialsFile: cfg.RecaptchaCredentialsFile,
				Endpoint:        cfg.RecaptchaEndpoint,
			}, cfg.Log)
			if err != nil {
				return cli.Exit("reCAPTCHA Enterprise is not configured: "+err.Error(), 1)
			}

			name := assessmentName(cfg.RecaptchaProjectID, c.Args().Get(0))
			if err := enterprise.Annotate(c.Context, name, annotation); err != nil {
				return fmt.Errorf("annotate %s: %w", name, err)
			}
			fmt.Fprintf(out, "%s annotated as %s\n", name, annotation)
			return nil
		},
	}
}

// assessmentName accepts either the full resource name logged by the server
// or a bare assessment id.
func assessmentName(projectID, arg string) string {
	if strings.HasPrefix(arg, "projects/") {
		return arg
	}
	return "projects/" + projectID + "/assessments/" + arg
}

func sampleForm(date time.Time, token string) url.Values {
	form := url.Values{
		"name":    {"Тестовый Пользователь"},
		"phone":   {"+7 (900) 123-45-67"},
		"email":   {"test@example.com"},
		"date":    {date.Format("2006-01-02")},
		"consent": {"true"},
	}
	if token != "" {
		form.Set("recaptchaToken", token)
	}
	return form
}

// formToJSON turns a form into the JSON body the form page posts.
func formToJSON(form url.Values) map[string]any {
	body := make(map[string]any, len(form))
	for key := range form {
		body[key] = form.Get(key)
	}
	if consent, ok := body["consent"]; ok {
		body["consent"] = consent == "true"
	}
	return body
}

func sampleBooking(now time.Time) *model.Booking {
	return &model.Booking{
		ID:        uuid.NewString(),
		Name:      "Тестовый Пользователь",
		Phone:     "79001234567",
		Email:     "test@example.com",
		Date:      now.AddDate(0, 0, 7).Format("2006-01-02"),
		Consent:   true,
		Timestamp: now.UTC(),
	}
}
