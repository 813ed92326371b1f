package domain

import (
	"net/url"
	"strings"
)

// ValidateUntrustedURL checks a URL received from an untrusted source (e.g. a
// RelayState on an unsolicited response) before it may be used as a redirect
// target. Trusted URLs (from local configuration) bypass this check; that
// distinction is a security boundary, not a convenience.
//
// A URL is accepted if it is a safe relative path, or an absolute http(s) URL
// whose host is listed in allowedHosts (exact match, or suffix match for
// entries starting with "."). Everything else is rejected.
func ValidateUntrustedURL(raw string, allowedHosts []string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", AssertionError("", "empty redirect URL")
	}

	// Reject control characters outright (header injection).
	if strings.ContainsAny(raw, "\r\n\x00") {
		return "", AssertionError("", "redirect URL contains control characters")
	}

	// Relative paths: must start with a single "/". Protocol-relative URLs
	// ("//evil.example") smuggle a host and are rejected.
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme != "" || parsed.Host != "" {
			return "", AssertionError("", "malformed relative redirect URL")
		}
		decoded, err := url.QueryUnescape(raw)
		if err == nil && strings.HasPrefix(decoded, "//") {
			return "", AssertionError("", "redirect URL decodes to a protocol-relative URL")
		}
		return raw, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", AssertionError("", "malformed redirect URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", AssertionError("", "redirect URL has disallowed scheme %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	for _, allowed := range allowedHosts {
		if allowed == "" {
			continue
		}
		if strings.HasPrefix(allowed, ".") {
			if strings.HasSuffix(host, allowed) || host == strings.TrimPrefix(allowed, ".") {
				return raw, nil
			}
			continue
		}
		if host == allowed {
			return raw, nil
		}
	}

	return "", AssertionError("", "redirect URL host %q is not in the allow-list", host)
}
