package http

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the submitter. With trustProxy set the
// last X-Forwarded-For entry (or X-Real-IP) wins over the socket address.
// The last entry is the one our proxy appended; earlier ones come from the
// client and can be forged.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := lastForwardedFor(r.Header.Values("X-Forwarded-For")); ip != "" {
			return ip
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IsHTTPS reports whether the request reached us over TLS, directly or
// through a proxy that sets X-Forwarded-Proto.
func IsHTTPS(r *http.Request, trustProxy bool) bool {
	if r.TLS != nil {
		return true
	}
	return trustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func lastForwardedFor(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		entries := strings.Split(values[i], ",")
		for j := len(entries) - 1; j >= 0; j-- {
			if ip := strings.TrimSpace(entries[j]); ip != "" {
				return ip
			}
		}
	}
	return ""
}
