package handler

import (
	"net/http"
	"strings"
)

// baseURL prefers the configured public URL and falls back to the request host.
func baseURL(r *http.Request, appURL string) string {
	if appURL != "" {
		return strings.TrimRight(appURL, "/")
	}

	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
