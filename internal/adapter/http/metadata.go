package http

import (
	"net"
	"net/http"
	"strings"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/mssola/useragent"
)

// clientMetadata captures who submitted a request.
func clientMetadata(r *http.Request) domain.SubmissionMetadata {
	raw := r.Header.Get("User-Agent")
	md := domain.SubmissionMetadata{
		UserAgent: raw,
		IPAddress: clientIP(r),
	}
	if raw == "" {
		return md
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()
	md.Browser = strings.TrimSpace(name + " " + version)
	md.OS = ua.OS()
	md.Mobile = ua.Mobile()
	return md
}

// clientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// remote address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
