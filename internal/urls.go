package internal

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// requestBaseURL derives scheme://host from the incoming request.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// resolveURL resolves ref against base. Absolute refs are returned as is.
func resolveURL(base, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	if !strings.HasPrefix(u.Path, "/") && u.Host == "" {
		// Relative paths hang off the base path, which is treated as a directory.
		if !strings.HasSuffix(b.Path, "/") {
			b.Path += "/"
		}
	}
	return b.ResolveReference(u).String()
}

// withQuery appends key=value to rawURL, preserving any existing query.
func withQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// redirectPolicy decides which "next" targets may be followed after login.
type redirectPolicy struct {
	allowedHosts []string
}

// allowed reports whether target is a relative URL, points at the
// application host, or at one of the allow-listed hosts.
func (p redirectPolicy) allowed(target, appBase string) bool {
	if target == "" || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if !u.IsAbs() && u.Host == "" {
		return strings.HasPrefix(u.Path, "/")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if base, err := url.Parse(appBase); err == nil && strings.EqualFold(base.Hostname(), host) {
		return true
	}
	return slices.ContainsFunc(p.allowedHosts, func(h string) bool {
		return strings.EqualFold(h, host)
	})
}
