package sanitizer

import "strings"

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"'", "&#x27;",
		"<", "&lt;",
		">", "&gt;",
		"/", "&#x2F;",
		`\`, "&#x5C;",
		"`", "&#96;",
	)

	telegramEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

// EscapeHTML replaces characters that can open markup or script context.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// EscapeTelegramHTML escapes the subset the Telegram HTML parse mode requires.
func EscapeTelegramHTML(s string) string {
	return telegramEscaper.Replace(s)
}
