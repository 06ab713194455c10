package oauth

import (
	"net/url"
	"strings"
)

// SafeNext returns raw when it is a same-site absolute path, else "".
func SafeNext(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return ""
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	if strings.ContainsAny(raw, "\\\r\n\t") {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.User != nil {
		return ""
	}
	return raw
}

// Destination picks where to send a user after sign-in: a safe next path,
// else their profile, else the create form.
func Destination(next, username string) string {
	if safe := SafeNext(next); safe != "" {
		return safe
	}
	if username = strings.TrimSpace(username); username != "" {
		return "/profile/" + url.PathEscape(username)
	}
	return "/profile/create"
}
