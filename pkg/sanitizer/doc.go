// Package sanitizer makes booking form input safe to store and display.
//
// All functions are idempotent on their own output, so a sanitized record can
// be run through the same pipeline again without changing. Invalid input is
// handled by returning it unchanged or empty rather than an error; callers
// validate first.
//
// Normalization includes:
//   - Text: trim surrounding whitespace, escape HTML-significant characters
//   - Phone numbers: keep digits only; render in international format for display
//   - Email: lower-case, apply provider rules (gmail dots, sub-addresses, yandex aliases)
package sanitizer
