package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	namePipeline = Pipeline{strings.TrimSpace, EscapeHTML}
	datePipeline = Pipeline{strings.TrimSpace}
)

func SanitizeName(name string) string {
	return namePipeline.Apply(name)
}

func SanitizeDate(date string) string {
	return datePipeline.Apply(date)
}

// SanitizeEmail trims and normalizes the address, keeping the raw input when
// it cannot be normalized.
func SanitizeEmail(email string) string {
	if normalized, ok := NormalizeEmail(strings.TrimSpace(email)); ok {
		return normalized
	}
	return email
}
