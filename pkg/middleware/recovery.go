package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "bookingform/pkg/errors"
	"bookingform/pkg/logger"
)

// Recovery turns a panic into the form's 500 response. message is the text
// shown to the submitter.
func Recovery(log *logger.Logger, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered",
						"request_id", GetRequestID(r.Context()),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					_ = apperrors.WriteError(w, apperrors.Internal(message, fmt.Errorf("panic: %v", err)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
